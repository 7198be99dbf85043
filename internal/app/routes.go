package app

import (
	"github.com/vango-dev/popular/internal/github"
	"github.com/vango-dev/popular/pkg/router"
)

// View ids.
const (
	ViewHome    = "home"
	ViewGrid    = "grid"
	ViewNoMatch = "nomatch"
)

// LoaderPopular fetches the popular repositories for the route's language.
const LoaderPopular = "popular"

// Routes is the application route table, in match order.
var Routes = []router.Route{
	{Path: "/", Exact: true, View: ViewHome},
	{Path: "/popular", Exact: true, View: ViewGrid, Loader: LoaderPopular},
	{Path: "/popular/:id", View: ViewGrid, Loader: LoaderPopular},
}

// NewTable compiles Routes.
func NewTable() *router.Table {
	return router.MustTable(Routes...)
}

// Language returns the language a match asks for. Routes without an id
// ask for all languages.
func Language(m router.Match) string {
	if id := m.Params.Get("id"); id != "" {
		return id
	}
	return github.AllLanguages
}
