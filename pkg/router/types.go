package router

// Route is one entry of a route table. View and Loader are identifiers
// resolved by the application; the table itself holds no behavior.
type Route struct {
	// Path is the URL pattern (e.g., "/popular/:id").
	// Named segments are written ":name", optional ones ":name?".
	Path string

	// Exact requires the path to have exactly as many segments as the pattern.
	// A non-exact route also matches longer paths that share its segments.
	Exact bool

	// View identifies the view rendered for this route.
	View string

	// Loader identifies the data loader for this route. Empty means none.
	Loader string
}

// Params holds the values captured by named segments.
type Params map[string]string

// Get returns the named parameter, or "" if it wasn't captured.
func (p Params) Get(name string) string {
	return p[name]
}

// Match is the result of matching a path against a Table.
type Match struct {
	// Route is the first route that matched, or nil.
	Route *Route

	// Path is the cleaned path that was matched.
	Path string

	// Params are the captured named segments.
	Params Params
}

// Found reports whether a route matched.
func (m Match) Found() bool {
	return m.Route != nil
}

// View returns the matched route's view id, or "" when nothing matched.
func (m Match) View() string {
	if m.Route == nil {
		return ""
	}
	return m.Route.View
}

// Loader returns the matched route's loader id, or "" when there is none.
func (m Match) Loader() string {
	if m.Route == nil {
		return ""
	}
	return m.Route.Loader
}
