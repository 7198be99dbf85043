package render

import "testing"

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"Select a Language", "Select a Language"},
		{"Tom & Jerry", "Tom &amp; Jerry"},
		{"<script>alert('x')</script>", "&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;"},
		{`say "hi"`, "say &quot;hi&quot;"},
		{"&amp;", "&amp;amp;"},
		{"日本語 ✓", "日本語 ✓"},
	}

	for _, tt := range tests {
		if got := escapeHTML(tt.input); got != tt.want {
			t.Errorf("escapeHTML(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestEscapeAttr(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/popular/c++", "/popular/c++"},
		{`x" onmouseover="y`, "x&quot; onmouseover=&quot;y"},
		{"a\nb\tc\r", "a&#10;b&#9;c&#13;"},
		{"?a=1&b=2", "?a=1&amp;b=2"},
	}

	for _, tt := range tests {
		if got := escapeAttr(tt.input); got != tt.want {
			t.Errorf("escapeAttr(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
