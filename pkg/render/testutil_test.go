package render

import (
	"strings"
	"testing"

	"github.com/vango-dev/popular/pkg/vdom"
)

func extractAttrValue(t *testing.T, s string, attr string) string {
	t.Helper()

	needle := attr + "="
	idx := strings.Index(s, needle)
	if idx == -1 {
		t.Fatalf("expected %q in %q", needle, s)
	}

	start := idx + len(needle)
	if start >= len(s) {
		t.Fatalf("malformed attribute %q in %q", attr, s)
	}

	quote := s[start]
	if quote != '"' && quote != '\'' {
		t.Fatalf("expected quote for %q in %q", attr, s)
	}
	start++

	endRel := strings.IndexByte(s[start:], quote)
	if endRel == -1 {
		t.Fatalf("unterminated attribute %q in %q", attr, s)
	}

	return s[start : start+endRel]
}

// element builds an element the views never use, for renderer cases.
func element(tag string, props vdom.Props) *vdom.VNode {
	if props == nil {
		props = vdom.Props{}
	}
	return &vdom.VNode{Kind: vdom.KindElement, Tag: tag, Props: props}
}

func fragment(children ...*vdom.VNode) *vdom.VNode {
	return &vdom.VNode{Kind: vdom.KindFragment, Children: children}
}
