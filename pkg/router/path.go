package router

import (
	"net/url"
	"strings"
)

// SplitPathAndQuery splits a URL into path and query components.
// The query is returned without the leading "?", and any fragment is dropped.
func SplitPathAndQuery(input string) (path, query string) {
	if i := strings.IndexByte(input, '#'); i >= 0 {
		input = input[:i]
	}
	if i := strings.IndexByte(input, '?'); i >= 0 {
		return input[:i], input[i+1:]
	}
	return input, ""
}

// CleanPath returns the path component of input with a leading slash.
// Segments are percent-decoded where possible; a malformed escape is left
// as written.
func CleanPath(input string) string {
	p, _ := SplitPathAndQuery(input)
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
