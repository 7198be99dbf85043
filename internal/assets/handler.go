package assets

import (
	stderrors "errors"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// Content types the browser is strict about. application/wasm is required
// for WebAssembly.instantiateStreaming.
var contentTypes = map[string]string{
	".wasm": "application/wasm",
	".js":   "text/javascript; charset=utf-8",
	".json": "application/json",
}

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	Origin Origin

	// Prefix is the URL prefix stripped before the origin lookup, e.g. "/static/".
	Prefix string

	// NoCache disables caching, for dev mode.
	NoCache bool

	Logger *slog.Logger
}

// Handler serves static files from an Origin.
type Handler struct {
	origin  Origin
	prefix  string
	noCache bool
	logger  *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		origin:  cfg.Origin,
		prefix:  cfg.Prefix,
		noCache: cfg.NoCache,
		logger:  cfg.Logger,
	}
	if !strings.HasSuffix(h.prefix, "/") {
		h.prefix += "/"
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	rel, ok := relPath(h.prefix, r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	obj, err := h.origin.Open(r.Context(), rel)
	if stderrors.Is(err, ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("static asset unavailable", "path", rel, "error", err)
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
		return
	}
	defer obj.Close()

	if ct := contentType(rel, obj.ContentType); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	h.applyCacheHeaders(w, rel)

	http.ServeContent(w, r, rel, obj.ModTime, obj.Content)
}

func contentType(name, reported string) string {
	ext := path.Ext(name)
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	if reported != "" && reported != "binary/octet-stream" {
		return reported
	}
	return mime.TypeByExtension(ext)
}

func (h *Handler) applyCacheHeaders(w http.ResponseWriter, name string) {
	switch {
	case h.noCache:
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	case IsFingerprinted(name):
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	default:
		w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
	}
}

// relPath strips prefix from urlPath and returns a clean relative path.
// Traversal, absolute paths, backslashes and NUL bytes are rejected.
func relPath(prefix, urlPath string) (string, bool) {
	if !strings.HasPrefix(urlPath, prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(urlPath, prefix)
	if rel == "" {
		return "", false
	}

	// NUL can arrive as %00.
	if strings.IndexByte(rel, 0) != -1 {
		return "", false
	}
	if strings.Contains(rel, "\\") {
		return "", false
	}

	// "/static//etc/passwd" leaves "/etc/passwd".
	if strings.HasPrefix(rel, "/") {
		return "", false
	}

	// Check dot-segments before cleaning, which would hide them.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
		return "", false
	}

	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}

	return clean, true
}

// IsFingerprinted reports whether name carries a content hash, as in
// "app.3f9a0c12.wasm".
func IsFingerprinted(name string) bool {
	parts := strings.Split(path.Base(name), ".")
	if len(parts) < 3 {
		return false
	}

	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
