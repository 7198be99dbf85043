package router

import (
	"fmt"
	"strings"
)

// segment is one compiled piece of a route pattern.
type segment struct {
	// literal is the static text; empty for named segments
	literal string

	// param is the parameter name (without : or ?)
	param string

	// optional marks ":name?" segments
	optional bool
}

type compiledRoute struct {
	route    Route
	segments []segment
	// required is the number of segments that must be present
	required int
}

// Table is an ordered list of routes matched linearly. The first route
// that matches wins.
type Table struct {
	routes []compiledRoute
}

// NewTable compiles the given routes in order.
// It returns an error for malformed patterns.
func NewTable(routes ...Route) (*Table, error) {
	t := &Table{routes: make([]compiledRoute, 0, len(routes))}
	for _, r := range routes {
		segs, err := compilePattern(r.Path)
		if err != nil {
			return nil, err
		}

		required := 0
		for _, s := range segs {
			if !s.optional {
				required++
			}
		}

		t.routes = append(t.routes, compiledRoute{route: r, segments: segs, required: required})
	}
	return t, nil
}

// MustTable is like NewTable but panics on error. It is meant for
// package-level tables whose patterns are constants.
func MustTable(routes ...Route) *Table {
	t, err := NewTable(routes...)
	if err != nil {
		panic(err)
	}
	return t
}

// Routes returns a copy of the table's routes in match order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	for i, r := range t.routes {
		out[i] = r.route
	}
	return out
}

// Match finds the first route matching path. Query strings and fragments
// are ignored. An unmatched path yields a Match with a nil Route.
func (t *Table) Match(path string) Match {
	clean := CleanPath(path)
	parts := splitPath(clean)

	for i := range t.routes {
		cr := &t.routes[i]
		if params, ok := cr.match(parts); ok {
			return Match{Route: &cr.route, Path: clean, Params: params}
		}
	}

	return Match{Path: clean}
}

func (cr *compiledRoute) match(parts []string) (Params, bool) {
	if len(parts) < cr.required {
		return nil, false
	}
	if cr.route.Exact && len(parts) > len(cr.segments) {
		return nil, false
	}

	params := Params{}
	for i, seg := range cr.segments {
		if i >= len(parts) {
			// Only optional segments may be missing.
			if !seg.optional {
				return nil, false
			}
			continue
		}

		part := parts[i]
		switch {
		case seg.param != "":
			params[seg.param] = part
		case seg.literal != part:
			return nil, false
		}
	}

	return params, true
}

// compilePattern parses a route pattern into segments.
func compilePattern(pattern string) ([]segment, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("route pattern %q must start with /", pattern)
	}

	var segs []segment
	seenOptional := false
	for _, raw := range splitPath(pattern) {
		if !strings.HasPrefix(raw, ":") {
			if seenOptional {
				return nil, fmt.Errorf("route pattern %q: static segment after optional parameter", pattern)
			}
			segs = append(segs, segment{literal: raw})
			continue
		}

		name, optional := parseParamSegment(raw)
		if name == "" {
			return nil, fmt.Errorf("route pattern %q: empty parameter name", pattern)
		}
		if seenOptional && !optional {
			return nil, fmt.Errorf("route pattern %q: required parameter after optional parameter", pattern)
		}
		seenOptional = seenOptional || optional
		segs = append(segs, segment{param: name, optional: optional})
	}
	return segs, nil
}

// parseParamSegment extracts the name from a parameter segment.
// Input: ":id" or ":id?" -> name="id", optional=false or true
func parseParamSegment(seg string) (name string, optional bool) {
	seg = seg[1:] // Remove leading :
	if strings.HasSuffix(seg, "?") {
		return seg[:len(seg)-1], true
	}
	return seg, false
}

// splitPath splits a path into non-empty segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
