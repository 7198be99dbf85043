// Package dev implements `popular serve --dev`: a file watcher on the
// client sources and the bundle directory, a rebuild of the WebAssembly
// bundle when sources change, and a WebSocket endpoint that tells open
// pages to reload when the bundle changes.
//
//	watcher, _ := dev.NewWatcher(dev.WatcherConfig{
//	    Paths:     dev.WatchPaths(".", "public"),
//	    BundleDir: "public",
//	})
//	reload := dev.NewReloadServer(logger)
//	loop := dev.NewLoop(dev.LoopOptions{Changes: watcher.Changes, Notify: reload})
package dev
