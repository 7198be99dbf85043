// Package github fetches the most-starred repositories for a language from
// the GitHub search API.
//
// The client compiles for both the server and the js/wasm browser build;
// in the browser net/http is backed by fetch.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the GitHub REST API root.
const DefaultBaseURL = "https://api.github.com"

// AllLanguages is the language value that searches every language.
const AllLanguages = "all"

// Owner is the account that owns a repository.
type Owner struct {
	Login string `json:"login"`
}

// Repo is one search result.
type Repo struct {
	Name  string `json:"name"`
	Owner Owner  `json:"owner"`
	Stars int    `json:"stargazers_count"`
	URL   string `json:"html_url"`
}

// searchResponse is the subset of the search payload we read.
// Items is a pointer so a missing field can be told apart from an empty list.
type searchResponse struct {
	Items *[]Repo `json:"items"`
}

// SearchURL builds the repository search URL for lang under base.
// An empty language searches all languages.
func SearchURL(base, lang string) string {
	if lang == "" {
		lang = AllLanguages
	}
	base = strings.TrimRight(base, "/")
	return base + "/search/repositories?q=stars:%3E1+language:" + url.QueryEscape(lang) +
		"&sort=stars&order=desc&type=Repositories"
}

// Config configures a Client.
type Config struct {
	// BaseURL is the API root. Defaults to DefaultBaseURL.
	BaseURL string

	// Token is sent as a bearer token when set.
	Token string

	// UserAgent is sent on every request when set.
	UserAgent string

	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration

	// HTTPClient overrides the transport. Defaults to a new http.Client.
	HTTPClient *http.Client

	// Logger receives failure warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client fetches popular repositories.
type Client struct {
	base      string
	token     string
	userAgent string
	timeout   time.Duration
	http      *http.Client
	logger    *slog.Logger
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) *Client {
	c := &Client{
		base:      cfg.BaseURL,
		token:     cfg.Token,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		http:      cfg.HTTPClient,
		logger:    cfg.Logger,
	}
	if c.base == "" {
		c.base = DefaultBaseURL
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// PopularRepos returns the most-starred repositories for lang in the order
// the API returned them. Any failure is logged and yields nil; callers treat
// nil as "no data". An empty result is a non-nil empty slice.
func (c *Client) PopularRepos(ctx context.Context, lang string) []Repo {
	repos, err := c.fetch(ctx, lang)
	if err != nil {
		c.logger.Warn("popular repos fetch failed", "language", lang, "error", err)
		return nil
	}
	return repos
}

func (c *Client) fetch(ctx context.Context, lang string) ([]Repo, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, SearchURL(c.base, lang), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little of the body so the message says why.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if body.Items == nil {
		return nil, fmt.Errorf("search response has no items")
	}
	if *body.Items == nil {
		return []Repo{}, nil
	}
	return *body.Items, nil
}
