// Package client is the browser runtime.
//
// App owns the mount element after the page loads. Hydrate adopts the
// server markup: it rebuilds the same view tree from the same path and
// data, numbers it the way the server did and checks every data-hid in the
// document against it. Navigate and PopState re-render through vdom.Diff
// and apply the resulting patches, falling back to replacing the mount
// content when a patch can't be applied.
//
// The DOM and history are interfaces so the runtime runs under go test;
// the syscall/js implementations live in dom_js.go and are only built for
// GOOS=js GOARCH=wasm.
package client
