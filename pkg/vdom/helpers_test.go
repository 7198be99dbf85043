package vdom

import "testing"

func TestTextHelpers(t *testing.T) {
	if n := Text("hi"); n.Kind != KindText || n.Text != "hi" {
		t.Errorf("Text() = %+v", n)
	}
	if n := Textf("%d stars", 42); n.Text != "42 stars" {
		t.Errorf("Textf() = %q", n.Text)
	}
}

func TestRange(t *testing.T) {
	names := []string{"react", "", "vue"}

	nodes := Range(names, func(name string, i int) *VNode {
		if name == "" {
			return nil
		}
		return Li(Key(name), Textf("%d:%s", i, name))
	})

	if len(nodes) != 2 {
		t.Fatalf("len = %d, want 2", len(nodes))
	}
	if nodes[0].Key != "react" || nodes[1].Key != "vue" {
		t.Errorf("keys = %q %q", nodes[0].Key, nodes[1].Key)
	}
	if nodes[1].Children[0].Text != "2:vue" {
		t.Errorf("index not passed: %q", nodes[1].Children[0].Text)
	}
}

func TestKey(t *testing.T) {
	if k := Key(7); k.Key != "key" || k.Value != "7" {
		t.Errorf("Key(7) = %+v", k)
	}
}
