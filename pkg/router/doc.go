// Package router implements ordered route tables.
//
// A Table is a list of Routes scanned in order; the first match wins.
// Patterns are made of static segments and named segments:
//
//	/                 → exact root
//	/popular          → static
//	/popular/:id      → captures one segment as "id"
//	/users/:id?       → "id" may be absent
//
// A route marked Exact only matches paths with the same number of segments.
// Other routes match any path that starts with their segments.
//
// # Usage
//
//	table := router.MustTable(
//	    router.Route{Path: "/", Exact: true, View: "home"},
//	    router.Route{Path: "/popular/:id", View: "grid", Loader: "popular"},
//	)
//
//	m := table.Match("/popular/go")
//	if m.Found() {
//	    // m.Params.Get("id") == "go"
//	}
//
// Routes carry identifiers only. Resolving View and Loader to behavior is
// the application's job, which keeps the table usable from both the server
// and the browser build.
//
// # Links
//
// Link and NavLink build anchors marked with data-link. The browser runtime
// intercepts clicks on those and navigates without a page load.
package router
