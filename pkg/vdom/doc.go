// Package vdom provides the virtual DOM shared by the server renderer and
// the browser runtime.
//
// # Core Types
//
// VNode is the fundamental building block representing elements, text,
// fragments, components, and raw HTML. Props holds attributes. Attr is used
// to build Props.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H2(Text("Title")),
//	    P(Text("Content")),
//	)
//
// # Diffing
//
// The Diff function compares two VNode trees and returns a slice of Patch
// operations. Keyed reconciliation is used when children have keys.
//
// # Hydration
//
// AssignAllHIDs walks the tree in pre-order and gives every element a
// hydration ID. The server and the browser run the same walk over the same
// tree, so the IDs written into the server markup (data-hid) identify the
// DOM nodes the browser reconciles against.
package vdom
