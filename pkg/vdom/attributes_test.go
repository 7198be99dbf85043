package vdom

import "testing"

func TestAttributes(t *testing.T) {
	tests := []struct {
		name  string
		attr  Attr
		key   string
		value any
	}{
		{"ID", ID("app"), "id", "app"},
		{"Class", Class("a", "b"), "class", "a b"},
		{"StyleAttr", StyleAttr("font-weight: bold"), "style", "font-weight: bold"},
		{"Data", Data("link", "x"), "data-link", "x"},
		{"AriaCurrent", AriaCurrent("page"), "aria-current", "page"},
		{"AriaBusy", AriaBusy(true), "aria-busy", true},
		{"Href", Href("/popular/go"), "href", "/popular/go"},
		{"Target", Target("_blank"), "target", "_blank"},
		{"Rel", Rel("noopener"), "rel", "noopener"},
		{"Src", Src("/static/bundle.js"), "src", "/static/bundle.js"},
		{"Defer", Defer_(), "defer", true},
		{"Width", Width(10), "width", 10},
		{"Hidden", Hidden(), "hidden", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.key {
				t.Errorf("Key = %q, want %q", tt.attr.Key, tt.key)
			}
			if tt.attr.Value != tt.value {
				t.Errorf("Value = %v, want %v", tt.attr.Value, tt.value)
			}
		})
	}
}

func TestConditionalAttributes(t *testing.T) {
	if got := ClassIf(true, "active"); got.Value != "active" {
		t.Errorf("ClassIf(true) = %+v", got)
	}
	if got := ClassIf(false, "active"); !got.IsEmpty() {
		t.Errorf("ClassIf(false) = %+v, want empty", got)
	}
	if got := AttrIf(false, AriaCurrent("page")); !got.IsEmpty() {
		t.Errorf("AttrIf(false) = %+v, want empty", got)
	}
	if got := AttrIf(true, AriaCurrent("page")); got.Key != "aria-current" {
		t.Errorf("AttrIf(true) = %+v", got)
	}
}
