// Package errors provides coded, structured errors for popular.
//
// Every error code maps to a registered template with a category, a short
// message, a longer explanation and, where one exists, a hint:
//
//	E040-E059  hydration mismatches detected by the browser runtime
//	E100-E119  configuration
//	E200-E219  bundle builds
//	E300-E319  rendering
//	E400-E419  static assets
//
// # Usage
//
//	err := errors.New(errors.ConfigInvalidPort).
//	    WithDetailf("server.port is %d", port)
//
//	errors.Fprint(os.Stderr, err)
//	// ERROR E101: Invalid port
//	//
//	//   server.port is 0
//	//
//	//   Hint: Set POPULAR_SERVER_PORT or pass --port.
//
// PopularError implements slog.LogValuer, so it can be passed directly as
// a log attribute.
package errors
