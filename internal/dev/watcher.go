package dev

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	// ChangeSource is a Go source file; the client bundle needs rebuilding.
	ChangeSource ChangeType = iota
	// ChangeBundle is a file in the built bundle directory.
	ChangeBundle
)

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the directories to watch, recursively.
	Paths []string

	// BundleDir is the build output. Changes under it are ChangeBundle.
	BundleDir string

	// Ignore holds base-name glob patterns to skip.
	Ignore []string

	// Debounce is how long a file must be quiet before it is reported.
	Debounce time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	"*_test.go",
	".git",
	"node_modules",
	"tmp",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher reports batches of changed files using fsnotify.
type Watcher struct {
	Changes <-chan []Change

	config  WatcherConfig
	changes chan []Change
	stop    chan struct{}
	done    chan struct{}
	fw      *fsnotify.Watcher
	once    sync.Once
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	if config.Debounce == 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if config.Ignore == nil {
		config.Ignore = DefaultIgnore
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan []Change, 16)
	return &Watcher{
		Changes: ch,
		config:  config,
		changes: ch,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		fw:      fw,
	}, nil
}

// Start adds every configured directory and begins reporting changes.
// Paths that don't exist yet are skipped.
func (w *Watcher) Start() error {
	for _, p := range w.config.Paths {
		if err := w.addTree(p); err != nil {
			return err
		}
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.stop)
		w.fw.Close()
		<-w.done
		close(w.changes)
	})
}

// addTree watches root and every directory under it.
func (w *Watcher) addTree(root string) error {
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.fw.Add(root)
	}

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && w.shouldIgnore(p) {
			return filepath.SkipDir
		}
		return w.fw.Add(p)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.config.Debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.shouldIgnore(event.Name) {
					w.addTree(event.Name)
					continue
				}
			}

			if w.shouldIgnore(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[event.Name] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			var batch []Change
			for file, t := range pending {
				if now.Sub(t) < w.config.Debounce {
					continue
				}
				delete(pending, file)
				if typ, ok := w.classify(file); ok {
					batch = append(batch, Change{Path: file, Type: typ})
				}
			}
			if len(batch) > 0 {
				select {
				case w.changes <- batch:
				case <-w.stop:
					return
				}
			}

		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) classify(path string) (ChangeType, bool) {
	if w.config.BundleDir != "" && isWithinDir(path, w.config.BundleDir) {
		return ChangeBundle, true
	}
	if strings.HasSuffix(path, ".go") {
		return ChangeSource, true
	}
	return 0, false
}

func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.config.Ignore {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

func isWithinDir(path, dir string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	absDir = filepath.Clean(absDir)
	if absPath == absDir {
		return true
	}
	if !strings.HasSuffix(absDir, string(os.PathSeparator)) {
		absDir += string(os.PathSeparator)
	}
	return strings.HasPrefix(absPath, absDir)
}
