package assets

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// ManifestName is the file the build writes next to the bundles.
const ManifestName = "manifest.json"

// Manifest maps asset names to their fingerprinted names:
//
//	{"app.wasm": "app.3f9a0c12.wasm", "bundle.js": "bundle.77e1b2d0.js"}
//
// It is safe for concurrent use.
type Manifest struct {
	entries map[string]string
	mu      sync.RWMutex
}

// NewManifest creates an empty manifest. An empty manifest resolves every
// name to itself.
func NewManifest() *Manifest {
	return &Manifest{
		entries: make(map[string]string),
	}
}

// ParseManifest decodes manifest JSON.
func ParseManifest(data []byte) (*Manifest, error) {
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if entries == nil {
		entries = make(map[string]string)
	}
	return &Manifest{entries: entries}, nil
}

// LoadManifest reads the manifest from origin. A missing manifest is not an
// error: unbuilt and dev setups serve assets under their plain names.
func LoadManifest(ctx context.Context, origin Origin) (*Manifest, error) {
	obj, err := origin.Open(ctx, ManifestName)
	if stderrors.Is(err, ErrNotFound) {
		return NewManifest(), nil
	}
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj.Content)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// Resolve returns the fingerprinted name for source, or source itself.
func (m *Manifest) Resolve(source string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if resolved, ok := m.entries[source]; ok {
		return resolved
	}
	return source
}

// Has reports whether source has an entry.
func (m *Manifest) Has(source string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.entries[source]
	return ok
}

// Set adds or updates an entry.
func (m *Manifest) Set(source, resolved string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[source] = resolved
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// All returns a copy of all entries.
func (m *Manifest) All() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		result[k] = v
	}
	return result
}

// WriteFile writes the manifest as indented JSON.
func (m *Manifest) WriteFile(path string) error {
	data, err := json.MarshalIndent(m.All(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Resolver turns asset names into URL paths.
type Resolver struct {
	manifest *Manifest
	prefix   string
}

// NewResolver creates a Resolver that prefixes manifest-resolved names.
// A nil manifest resolves every name to itself.
//
//	r := assets.NewResolver(m, "/static/")
//	r.Asset("bundle.js") // "/static/bundle.77e1b2d0.js"
func NewResolver(m *Manifest, prefix string) *Resolver {
	if m == nil {
		m = NewManifest()
	}
	return &Resolver{manifest: m, prefix: prefix}
}

// Asset returns the URL path for source.
func (r *Resolver) Asset(source string) string {
	return r.prefix + r.manifest.Resolve(source)
}
