// Package build produces the two bundles of a popular deployment.
//
// The browser bundle is the client entry point compiled with GOOS=js
// GOARCH=wasm, the wasm_exec.js support file from the Go toolchain that
// compiled it, and a small generated loader script that starts both.
// Each file is fingerprinted with the first 8 hex digits of its SHA-256
// and recorded in manifest.json:
//
//	public/
//	├── app.3f9a0c12.wasm
//	├── wasm_exec.91b2d4e0.js
//	├── bundle.c07a55e1.js
//	└── manifest.json
//
// The server resolves the page's bundle name through the manifest, so
// fingerprinted files can be cached forever.
//
// The server bundle is a static binary built from cmd/popular.
//
//	builder := build.New(cfg, build.Options{})
//	result, err := builder.Build(ctx)
package build
