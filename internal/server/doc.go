// Package server is the HTTP front end.
//
// Every path not claimed by the static bundle, /healthz, the metrics
// endpoint or the dev reload socket is server-side rendered: the path is
// matched against the route table, the route's loader runs, and the view
// tree is rendered into a document that embeds the loader's result for the
// browser runtime. The document is buffered; a render failure produces a
// plain-text 500 and nothing else.
package server
