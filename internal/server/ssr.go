package server

import (
	"bytes"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/popular/internal/app"
	"github.com/vango-dev/popular/internal/errors"
	"github.com/vango-dev/popular/internal/github"
	"github.com/vango-dev/popular/pkg/router"
)

// notFoundRoute labels requests no route matched.
const notFoundRoute = "notfound"

// handlePage server-renders the page for the request path: match, load,
// render, then send the buffered document. Nothing reaches the client
// unless the whole document rendered.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "ssr.page",
		trace.WithAttributes(attribute.String("http.path", r.URL.Path)),
	)
	defer span.End()

	// The table decodes the path itself, the same way the browser runtime
	// matches location.pathname, so it gets the escaped form.
	m := s.table.Match(r.URL.EscapedPath())
	route := notFoundRoute
	if m.Found() {
		route = m.Route.Path
	}
	setRoute(ctx, route)
	span.SetAttributes(
		attribute.String("route", route),
		attribute.String("language", app.Language(m)),
	)

	var repos []github.Repo
	if s.page.Registry.HasLoader(m) {
		repos = s.page.Registry.Load(ctx, m)
		s.metrics.RecordLoader(m.Loader(), repos)
	}

	body, err := s.renderPage(m, repos)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		s.logger.Error("page render failed", "path", r.URL.Path, "route", route, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := body.WriteTo(w); err != nil {
		s.logger.Debug("write page", "path", r.URL.Path, "error", err)
	}
}

// renderPage renders the document into a buffer. Panics anywhere in view
// or document rendering come back as E300.
func (s *Server) renderPage(m router.Match, repos []github.Repo) (buf *bytes.Buffer, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			buf = nil
			err = errors.New(errors.RenderFailed).
				WithDetailf("path %s", m.Path).
				Wrap(fmt.Errorf("panic: %v", rec))
		}
	}()

	html, _, err := s.page.Markup(m, repos)
	if err != nil {
		return nil, err
	}

	doc := s.doc
	doc.Markup = html
	doc.Payload = repos

	buf = new(bytes.Buffer)
	if err := s.page.Renderer.RenderDocument(buf, doc); err != nil {
		return nil, errors.New(errors.RenderFailed).Wrap(err)
	}
	return buf, nil
}
