// Package app holds the popular-repositories views, the route table and
// the registry that resolves route identifiers to views and loaders.
//
// Everything here builds for both the server and the js/wasm client.
package app
