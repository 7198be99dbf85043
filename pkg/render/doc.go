// Package render provides server-side rendering for vdom trees.
//
// The render package converts VNode trees into HTML strings or streams,
// handling all aspects of producing valid, secure HTML output including:
//
//   - HTML5 compliant element rendering
//   - Proper text and attribute escaping
//   - Void element handling (input, br, img, etc.)
//   - Boolean attribute handling (disabled, checked, etc.)
//   - data-hid attributes for nodes that carry a hydration ID
//   - Full document rendering with the initial data payload
//
// # Basic Usage
//
// To render a VNode tree to a string:
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// Attributes are written in sorted order, so equal trees always produce
// byte-identical markup.
//
// # Documents
//
// To render a complete HTML document around pre-rendered markup:
//
//	doc := render.Document{
//	    Title:   "Popular Repos",
//	    Markup:  markup,
//	    Payload: repos,
//	    Bundles: []string{"/static/bundle.js"},
//	}
//	err := renderer.RenderDocument(w, doc)
//
// The payload is assigned to window.__INITIAL_DATA__ (configurable) by an
// inline script placed after the mount element.
//
// # Hydration IDs
//
// The renderer never numbers nodes itself. Callers run vdom.AssignAllHIDs
// before rendering; any element with a HID gets a data-hid attribute.
//
// # Security
//
// All text content is escaped by default. Raw HTML can be inserted using
// KindRaw nodes, but should only be used with trusted content.
package render
