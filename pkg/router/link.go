package router

import (
	"github.com/vango-dev/popular/pkg/vdom"
)

// LinkAttr is the attribute the browser runtime looks for when it
// intercepts clicks. Anchors without it navigate normally.
const LinkAttr = "data-link"

// DataLink creates an anchor attribute that enables client-side navigation.
func DataLink() vdom.Attr {
	return vdom.Data("link", "")
}

// Link creates an anchor element with client-side navigation.
func Link(href string, children ...any) *vdom.VNode {
	return vdom.A(
		vdom.Href(href),
		DataLink(),
		children,
	)
}

// ActiveStyle is applied to the active NavLink.
const ActiveStyle = "font-weight: bold"

// NavLink creates a link that is highlighted when active.
// Active links are bold and carry aria-current="page".
func NavLink(href string, active bool, children ...any) *vdom.VNode {
	return vdom.A(
		vdom.Href(href),
		DataLink(),
		vdom.AttrIf(active, vdom.StyleAttr(ActiveStyle)),
		vdom.AttrIf(active, vdom.AriaCurrent("page")),
		children,
	)
}
