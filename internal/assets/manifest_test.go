package assets

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestManifestResolve(t *testing.T) {
	m := NewManifest()
	m.Set("app.wasm", "app.3f9a0c12.wasm")
	m.Set("bundle.js", "bundle.77e1b2d0.js")

	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{"wasm", "app.wasm", "app.3f9a0c12.wasm"},
		{"loader", "bundle.js", "bundle.77e1b2d0.js"},
		{"missing entry returns original", "wasm_exec.js", "wasm_exec.js"},
		{"empty string returns empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Resolve(tt.source); got != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.source, got, tt.expected)
			}
		})
	}
}

func TestManifestAllIsCopy(t *testing.T) {
	m := NewManifest()
	m.Set("a.js", "a.12345678.js")

	all := m.All()
	all["b.js"] = "b.js"
	if m.Has("b.js") || m.Len() != 1 {
		t.Error("All() should return a copy")
	}
}

func TestManifestWriteAndLoad(t *testing.T) {
	dir := t.TempDir()

	m := NewManifest()
	m.Set("app.wasm", "app.3f9a0c12.wasm")
	if err := m.WriteFile(filepath.Join(dir, ManifestName)); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loaded, err := LoadManifest(context.Background(), NewDirOrigin(dir))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if got := loaded.Resolve("app.wasm"); got != "app.3f9a0c12.wasm" {
		t.Errorf("Resolve(app.wasm) = %q", got)
	}
}

func TestLoadManifestMissing(t *testing.T) {
	m, err := LoadManifest(context.Background(), NewFSOrigin(fstest.MapFS{}))
	if err != nil {
		t.Fatalf("missing manifest should not be an error: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestLoadManifestMalformed(t *testing.T) {
	fsys := fstest.MapFS{ManifestName: {Data: []byte("{not json")}}
	if _, err := LoadManifest(context.Background(), NewFSOrigin(fsys)); err == nil {
		t.Error("expected error for malformed manifest")
	}
}

func TestResolver(t *testing.T) {
	m := NewManifest()
	m.Set("bundle.js", "bundle.77e1b2d0.js")

	if got := NewResolver(m, "/static/").Asset("bundle.js"); got != "/static/bundle.77e1b2d0.js" {
		t.Errorf("Asset = %q", got)
	}
	if got := NewResolver(nil, "/static/").Asset("bundle.js"); got != "/static/bundle.js" {
		t.Errorf("nil manifest Asset = %q", got)
	}
}
