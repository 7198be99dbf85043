package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/vango-dev/popular/internal/app"
	"github.com/vango-dev/popular/internal/assets"
	"github.com/vango-dev/popular/internal/github"
	"github.com/vango-dev/popular/pkg/render"
	"github.com/vango-dev/popular/pkg/router"
	"github.com/vango-dev/popular/pkg/vdom"
)

type fakeSource struct {
	mu    sync.Mutex
	calls []string
	repos []github.Repo
}

func (f *fakeSource) PopularRepos(_ context.Context, lang string) []github.Repo {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, lang)
	return f.repos
}

func (f *fakeSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

var sampleRepos = []github.Repo{
	{Name: "react", Owner: github.Owner{Login: "facebook"}, Stars: 220000, URL: "https://github.com/facebook/react"},
	{Name: "vue", Owner: github.Owner{Login: "vuejs"}, Stars: 207000, URL: "https://github.com/vuejs/vue"},
}

type testServer struct {
	*Server
	src  *fakeSource
	page *app.Page
}

func newTestServer(t *testing.T, repos []github.Repo, mutate func(*Options)) *testServer {
	t.Helper()

	src := &fakeSource{repos: repos}
	page := app.NewPage(app.NewRegistry(src))
	opts := Options{
		Page:  page,
		Table: app.NewTable(),
		Document: render.Document{
			Title:   "Popular",
			Bundles: []string{"/static/bundle.js"},
		},
		Static: assets.NewHandler(assets.HandlerConfig{
			Origin: assets.NewFSOrigin(fstest.MapFS{"bundle.js": {Data: []byte("// loader")}}),
			Prefix: "/static/",
		}),
		StaticPrefix: "/static/",
		Metrics:      NewMetrics("popular"),
		MetricsPath:  "/metrics",
		Logger:       discardLogger(),
	}
	if mutate != nil {
		mutate(&opts)
	}
	return &testServer{Server: New(opts), src: src, page: page}
}

func (s *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (s *testServer) expectedMarkup(t *testing.T, path string, repos []github.Repo) string {
	t.Helper()
	markup, _, err := s.page.Markup(app.NewTable().Match(path), repos)
	if err != nil {
		t.Fatalf("Markup: %v", err)
	}
	return markup
}

func TestPageGrid(t *testing.T) {
	s := newTestServer(t, sampleRepos, nil)

	rec := s.get(t, "/popular/javascript")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}

	body := rec.Body.String()
	wantMount := `<div id="app">` + s.expectedMarkup(t, "/popular/javascript", sampleRepos) + `</div>`
	if !strings.Contains(body, wantMount) {
		t.Errorf("body lacks server markup\nwant: %s\nbody: %s", wantMount, body)
	}

	payload, _ := render.EncodePayload(sampleRepos)
	if !strings.Contains(body, "window.__INITIAL_DATA__ = "+string(payload)+";") {
		t.Errorf("body lacks payload %s", payload)
	}
	if !strings.Contains(body, `<script src="/static/bundle.js" defer></script>`) {
		t.Errorf("body lacks deferred bundle:\n%s", body)
	}
	if calls := s.src.Calls(); len(calls) != 1 || calls[0] != "javascript" {
		t.Errorf("loader calls = %v, want [javascript]", calls)
	}
}

func TestPageRoutes(t *testing.T) {
	tests := []struct {
		path    string
		text    string
		calls   []string
		payload string
	}{
		{"/", "Select a Language", nil, "null"},
		{"/nonexistent", "Four Oh Four", nil, "null"},
		{"/popular", "react", []string{"all"}, ""},
		{"/popular/ruby?page=2", "react", []string{"ruby"}, ""},
		{"/popular/c%23", "react", []string{"c#"}, ""},
		{"/popular/c%252B", "react", []string{"c%2B"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			s := newTestServer(t, sampleRepos, nil)
			rec := s.get(t, tt.path)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			body := rec.Body.String()
			if !strings.Contains(body, tt.text) {
				t.Errorf("body lacks %q", tt.text)
			}
			if tt.payload != "" && !strings.Contains(body, "window.__INITIAL_DATA__ = "+tt.payload+";") {
				t.Errorf("payload is not %s", tt.payload)
			}

			calls := s.src.Calls()
			if len(calls) != len(tt.calls) {
				t.Fatalf("loader calls = %v, want %v", calls, tt.calls)
			}
			for i := range calls {
				if calls[i] != tt.calls[i] {
					t.Errorf("loader calls = %v, want %v", calls, tt.calls)
				}
			}
		})
	}
}

func TestPageLoaderFailure(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := s.get(t, "/popular/java")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "LOADING") {
		t.Errorf("body lacks Loading grid:\n%s", body)
	}
	if !strings.Contains(body, "window.__INITIAL_DATA__ = null;") {
		t.Errorf("payload should be null")
	}
}

func TestPageEmptyResult(t *testing.T) {
	s := newTestServer(t, []github.Repo{}, nil)

	body := s.get(t, "/popular/cobol").Body.String()
	if !strings.Contains(body, "window.__INITIAL_DATA__ = [];") {
		t.Errorf("payload should be []")
	}
	if strings.Contains(body, "LOADING") {
		t.Errorf("empty result should render Ready, not Loading")
	}
}

func TestPagePayloadEscaping(t *testing.T) {
	evil := []github.Repo{{Name: "</script><script>alert(1)</script>", Owner: github.Owner{Login: "x"}}}
	s := newTestServer(t, evil, nil)

	body := s.get(t, "/popular/javascript").Body.String()
	if strings.Count(body, "<script>alert(1)") != 0 {
		t.Errorf("payload broke out of its script element:\n%s", body)
	}
	if !strings.Contains(body, `\u003c/script\u003e`) {
		t.Errorf("payload not escaped:\n%s", body)
	}
}

func TestPageRenderPanic(t *testing.T) {
	s := newTestServer(t, sampleRepos, nil)
	s.page.Registry.RegisterView(app.ViewGrid, func(app.ViewProps) *vdom.VNode {
		panic("boom")
	})

	rec := s.get(t, "/popular/go")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
	if body := rec.Body.String(); strings.Contains(body, "<") {
		t.Errorf("500 body should be plain text with nothing partial, got %q", body)
	}
}

func TestPageRenderError(t *testing.T) {
	s := newTestServer(t, sampleRepos, func(o *Options) {
		o.Table = router.MustTable(router.Route{Path: "/", Exact: true, View: "missing"})
	})

	rec := s.get(t, "/")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body := rec.Body.String(); body != "Internal Server Error\n" {
		t.Errorf("body = %q", body)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := s.get(t, "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestStaticMounted(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := s.get(t, "/static/bundle.js")
	if rec.Code != http.StatusOK || rec.Body.String() != "// loader" {
		t.Errorf("static = %d %q", rec.Code, rec.Body.String())
	}
	if calls := s.src.Calls(); len(calls) != 0 {
		t.Errorf("static request reached the loader: %v", calls)
	}
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, sampleRepos, nil)
	s.get(t, "/popular/javascript")
	s.get(t, "/nonexistent")
	s.get(t, "/healthz")

	rec := s.get(t, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()

	for _, want := range []string{
		`popular_loader_calls_total{loader="popular",outcome="ok"} 1`,
		`popular_http_requests_total{route="/popular/:id",status="200"} 1`,
		`popular_http_requests_total{route="notfound",status="200"} 1`,
		`popular_http_requests_total{route="/healthz",status="200"} 1`,
		`popular_http_request_duration_seconds_count{route="/popular/:id"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics lack %s", want)
		}
	}
}

func TestMetricsDisabled(t *testing.T) {
	s := newTestServer(t, sampleRepos, func(o *Options) { o.Metrics = nil })

	// /metrics falls through to the page handler.
	rec := s.get(t, "/metrics")
	if !strings.Contains(rec.Body.String(), "Four Oh Four") {
		t.Errorf("expected not-found page, got %q", rec.Body.String())
	}
}

func TestLoaderOutcome(t *testing.T) {
	tests := []struct {
		repos []github.Repo
		want  string
	}{
		{nil, OutcomeError},
		{[]github.Repo{}, OutcomeEmpty},
		{sampleRepos, OutcomeOK},
	}
	for _, tt := range tests {
		if got := LoaderOutcome(tt.repos); got != tt.want {
			t.Errorf("LoaderOutcome(%v) = %q, want %q", tt.repos, got, tt.want)
		}
	}
}

func TestServeShutdown(t *testing.T) {
	s := newTestServer(t, sampleRepos, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("healthz body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
