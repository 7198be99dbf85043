package app

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/popular/internal/github"
	"github.com/vango-dev/popular/pkg/router"
	"github.com/vango-dev/popular/pkg/vdom"
)

const tracerName = "github.com/vango-dev/popular/internal/app"

// RepoSource supplies repositories for a language. *github.Client is the
// production implementation.
type RepoSource interface {
	PopularRepos(ctx context.Context, lang string) []github.Repo
}

// ViewProps is what a view renders from.
type ViewProps struct {
	Match router.Match
	Repos []github.Repo
}

// View renders the routed part of the page.
type View func(ViewProps) *vdom.VNode

// Loader fetches a route's data. nil means no data.
type Loader func(ctx context.Context, m router.Match) []github.Repo

// Registry resolves the identifiers in the route table.
type Registry struct {
	views   map[string]View
	loaders map[string]Loader
	tracer  trace.Tracer
}

// NewRegistry returns the application registry with its loaders backed by src.
func NewRegistry(src RepoSource) *Registry {
	r := &Registry{
		views:   make(map[string]View),
		loaders: make(map[string]Loader),
		tracer:  otel.Tracer(tracerName),
	}

	r.RegisterView(ViewHome, func(ViewProps) *vdom.VNode { return Home() })
	r.RegisterView(ViewNoMatch, func(ViewProps) *vdom.VNode { return NoMatch() })
	r.RegisterView(ViewGrid, func(p ViewProps) *vdom.VNode { return Grid(NewGridState(p.Repos)) })

	r.RegisterLoader(LoaderPopular, func(ctx context.Context, m router.Match) []github.Repo {
		return src.PopularRepos(ctx, Language(m))
	})

	return r
}

// RegisterView adds or replaces a view.
func (r *Registry) RegisterView(id string, v View) {
	r.views[id] = v
}

// RegisterLoader adds or replaces a loader.
func (r *Registry) RegisterLoader(id string, l Loader) {
	r.loaders[id] = l
}

// View returns the view registered under id.
func (r *Registry) View(id string) (View, bool) {
	v, ok := r.views[id]
	return v, ok
}

// HasLoader reports whether the match has a loader to run.
func (r *Registry) HasLoader(m router.Match) bool {
	_, ok := r.loaders[m.Loader()]
	return ok
}

// Load runs the match's loader inside a span. Unmatched paths and routes
// without a loader resolve to nil without calling anything.
func (r *Registry) Load(ctx context.Context, m router.Match) []github.Repo {
	id := m.Loader()
	loader, ok := r.loaders[id]
	if !ok {
		return nil
	}

	ctx, span := r.tracer.Start(ctx, "loader."+id,
		trace.WithAttributes(
			attribute.String("route", m.Route.Path),
			attribute.String("language", Language(m)),
		),
	)
	defer span.End()

	repos := loader(ctx, m)
	span.SetAttributes(
		attribute.Bool("loader.empty", repos == nil),
		attribute.Int("loader.count", len(repos)),
	)
	return repos
}
