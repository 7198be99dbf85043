//go:build js && wasm

// Command client is the browser half of popular. It is built with
// GOOS=js GOARCH=wasm and loaded by public/bundle.js.
package main

import (
	"log/slog"
	"os"
	"syscall/js"

	"github.com/vango-dev/popular/internal/client"
	"github.com/vango-dev/popular/internal/github"
)

// Set with -ldflags -X by `popular build` to match the server's page config.
var (
	mountID    = "app"
	dataGlobal = "__INITIAL_DATA__"
	apiBase    = github.DefaultBaseURL
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	window := js.Global()
	data := ""
	if v := window.Get(dataGlobal); !v.IsUndefined() {
		data = window.Get("JSON").Call("stringify", v).String()
	}
	// The payload is read exactly once.
	window.Delete(dataGlobal)

	payload, err := client.DecodePayload(data)
	if err != nil {
		logger.Warn("initial data ignored", "error", err)
	}

	if _, err := client.Bootstrap(client.Config{
		MountID: mountID,
		BaseURL: apiBase,
		Logger:  logger,
	}, payload); err != nil {
		logger.Error("bootstrap failed", "error", err)
		return
	}

	select {}
}
