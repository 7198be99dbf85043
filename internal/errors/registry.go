package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// Error codes.
const (
	ConfigUnreadable    = "E100"
	ConfigInvalidPort   = "E101"
	ConfigInvalidPrefix = "E102"
	ConfigInvalidLevel  = "E103"

	HydrationTagMismatch    = "E040"
	HydrationCountMismatch  = "E041"
	HydrationPayloadInvalid = "E042"

	BuildClientFailed    = "E200"
	BuildServerFailed    = "E201"
	BuildWasmExecMissing = "E202"

	RenderFailed      = "E300"
	RenderUnknownView = "E301"

	AssetFetchFailed = "E400"
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Hydration (E040-E059)

	HydrationTagMismatch: {
		Category:   CategoryHydration,
		Message:    "Hydration mismatch: element type differs",
		Detail:     "The server-rendered element with this data-hid has a different tag than the tree the browser built. The mount content is replaced with fresh markup.",
		Suggestion: "Make sure views render the same tree for the same path and data on both targets.",
	},
	HydrationCountMismatch: {
		Category:   CategoryHydration,
		Message:    "Hydration mismatch: element count differs",
		Detail:     "The number of data-hid elements under the mount differs from the number of elements in the browser's tree.",
		Suggestion: "Check that the embedded payload matches the data the server rendered with.",
	},
	HydrationPayloadInvalid: {
		Category: CategoryHydration,
		Message:  "Invalid initial data",
		Detail:   "The data embedded in the page is not a JSON list of repositories. The browser starts without data and fetches its own.",
	},

	// Configuration (E100-E119)

	ConfigUnreadable: {
		Category:   CategoryConfig,
		Message:    "Config file unreadable",
		Detail:     "The configuration file exists but could not be read or parsed.",
		Suggestion: "Check the YAML syntax of popular.yaml or pass --config with a valid file.",
	},
	ConfigInvalidPort: {
		Category:   CategoryConfig,
		Message:    "Invalid port",
		Detail:     "server.port must be between 1 and 65535.",
		Suggestion: "Set POPULAR_SERVER_PORT or pass --port.",
	},
	ConfigInvalidPrefix: {
		Category:   CategoryConfig,
		Message:    "Invalid static prefix",
		Detail:     "static.prefix must start and end with a slash and must not be the root.",
		Suggestion: "Use the default /static/.",
	},
	ConfigInvalidLevel: {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "log.level must be one of debug, info, warn or error.",
	},

	// Build (E200-E219)

	BuildClientFailed: {
		Category:   CategoryBuild,
		Message:    "Client bundle build failed",
		Detail:     "go build for GOOS=js GOARCH=wasm returned an error.",
		Suggestion: "Run the same command by hand to see the full compiler output.",
	},
	BuildServerFailed: {
		Category: CategoryBuild,
		Message:  "Server build failed",
		Detail:   "go build for the server binary returned an error.",
	},
	BuildWasmExecMissing: {
		Category:   CategoryBuild,
		Message:    "wasm_exec.js not found",
		Detail:     "The Go installation does not ship wasm_exec.js in lib/wasm or misc/wasm.",
		Suggestion: "Check that `go env GOROOT` points at a complete Go installation.",
	},

	// Rendering (E300-E319)

	RenderFailed: {
		Category: CategoryRender,
		Message:  "Render failed",
		Detail:   "The view tree could not be rendered to HTML.",
	},
	RenderUnknownView: {
		Category:   CategoryRender,
		Message:    "Unknown view",
		Detail:     "A route refers to a view id that is not registered.",
		Suggestion: "Register the view in the application registry.",
	},

	// Assets (E400-E419)

	AssetFetchFailed: {
		Category: CategoryAssets,
		Message:  "Asset fetch failed",
		Detail:   "The static asset could not be read from its origin.",
	},
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered codes in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
