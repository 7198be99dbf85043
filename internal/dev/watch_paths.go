package dev

import (
	"path/filepath"
)

// sourceDirs hold the code compiled into the client bundle.
var sourceDirs = []string{"cmd/client", "internal", "pkg"}

// WatchPaths returns the directories dev mode watches under projectDir:
// the client sources and the bundle directory.
func WatchPaths(projectDir, bundleDir string) []string {
	paths := make([]string, 0, len(sourceDirs)+1)
	for _, dir := range sourceDirs {
		paths = append(paths, filepath.Join(projectDir, dir))
	}
	paths = append(paths, resolvePath(projectDir, bundleDir))

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}
	return unique
}

func resolvePath(projectDir, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectDir, path)
}
