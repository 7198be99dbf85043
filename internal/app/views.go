package app

import (
	"strings"

	"github.com/vango-dev/popular/internal/github"
	"github.com/vango-dev/popular/pkg/router"
	. "github.com/vango-dev/popular/pkg/vdom"
)

// NavLanguage is one entry of the navigation bar.
type NavLanguage struct {
	Name  string
	Param string
}

// Languages are the navigation bar entries, in display order.
var Languages = []NavLanguage{
	{Name: "All", Param: "all"},
	{Name: "JavaScript", Param: "javascript"},
	{Name: "Ruby", Param: "ruby"},
	{Name: "Java", Param: "java"},
	{Name: "CSS", Param: "css"},
	{Name: "Python", Param: "python"},
}

// Navbar renders the language links. active is the current language
// param, or "" when no language is selected.
func Navbar(active string) *VNode {
	return Nav(
		Ul(Class("nav"),
			Range(Languages, func(lang NavLanguage, _ int) *VNode {
				return Li(
					router.NavLink("/popular/"+lang.Param, strings.EqualFold(lang.Param, active), Text(lang.Name)),
				)
			}),
		),
	)
}

// Home renders the landing view.
func Home() *VNode {
	return Div(Class("home"), Text("Select a Language"))
}

// NoMatch renders the not-found view.
func NoMatch() *VNode {
	return Div(Class("no-match"), Text("Four Oh Four"))
}

// GridState is the Grid's data. Loading is true exactly when Repos is nil.
type GridState struct {
	Repos   []github.Repo
	Loading bool
}

// NewGridState derives the state from a loader result.
func NewGridState(repos []github.Repo) GridState {
	return GridState{Repos: repos, Loading: repos == nil}
}

// Grid renders the repository list, or a loading marker while there is no data.
func Grid(state GridState) *VNode {
	if state.Loading {
		return Div(Class("grid-view"), P(Text("LOADING")))
	}

	return Div(Class("grid-view"),
		Ul(Class("grid"),
			Range(state.Repos, func(repo github.Repo, _ int) *VNode {
				return Li(Key(repo.Name), Class("grid-item"),
					H2(A(Href(repo.URL), Text(repo.Name))),
					P(Textf("@%s", repo.Owner.Login)),
					P(Textf("%d stars", repo.Stars)),
				)
			}),
		),
	)
}

// Root renders the navigation bar above the routed view.
func Root(nav, view *VNode) *VNode {
	return Div(Class("container"), nav, view)
}
