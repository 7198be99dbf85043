package app

import (
	"fmt"

	"github.com/vango-dev/popular/internal/errors"
	"github.com/vango-dev/popular/internal/github"
	"github.com/vango-dev/popular/pkg/render"
	"github.com/vango-dev/popular/pkg/router"
	"github.com/vango-dev/popular/pkg/vdom"
)

// Page turns a match and its data into a view tree and markup. The server
// and the browser runtime both go through Page, which is what keeps the
// first client paint identical to the server's markup.
type Page struct {
	Registry *Registry
	Renderer *render.Renderer
}

// NewPage creates a Page with a compact renderer.
func NewPage(reg *Registry) *Page {
	return &Page{
		Registry: reg,
		Renderer: render.NewRenderer(render.RendererConfig{}),
	}
}

// Build builds the view tree for the match without hydration IDs.
func (p *Page) Build(m router.Match, repos []github.Repo) (*vdom.VNode, error) {
	id := m.View()
	if !m.Found() {
		id = ViewNoMatch
	}

	view, ok := p.Registry.View(id)
	if !ok {
		return nil, errors.New(errors.RenderUnknownView).WithDetailf("no view registered as %q", id)
	}

	active := ""
	if id == ViewGrid {
		active = Language(m)
	}

	return Root(Navbar(active), view(ViewProps{Match: m, Repos: repos})), nil
}

// Tree builds the view tree for the match and assigns hydration IDs in
// pre-order from h1.
func (p *Page) Tree(m router.Match, repos []github.Repo) (*vdom.VNode, error) {
	tree, err := p.Build(m, repos)
	if err != nil {
		return nil, err
	}
	vdom.AssignAllHIDs(tree, vdom.NewHIDGenerator())
	return tree, nil
}

// Markup renders the view tree for the match. The returned tree is the
// one the markup was produced from.
func (p *Page) Markup(m router.Match, repos []github.Repo) (markup string, tree *vdom.VNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.RenderFailed).Wrap(fmt.Errorf("panic: %v", r))
		}
	}()

	tree, err = p.Tree(m, repos)
	if err != nil {
		return "", nil, err
	}

	markup, err = p.Render(tree)
	if err != nil {
		return "", nil, err
	}
	return markup, tree, nil
}

// Render renders an already numbered tree.
func (p *Page) Render(tree *vdom.VNode) (string, error) {
	markup, err := p.Renderer.RenderToString(tree)
	if err != nil {
		return "", errors.New(errors.RenderFailed).Wrap(err)
	}
	return markup, nil
}
