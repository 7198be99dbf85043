package client

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/vango-dev/popular/internal/app"
	"github.com/vango-dev/popular/internal/errors"
	"github.com/vango-dev/popular/internal/github"
	"github.com/vango-dev/popular/pkg/router"
	"github.com/vango-dev/popular/pkg/vdom"
)

// DOM is the part of the document the runtime touches: the mount element
// and everything under it.
type DOM interface {
	// Tags returns the lower-case tag name of every element under the mount
	// that carries a data-hid, keyed by that id.
	Tags() map[string]string

	// Replace sets the mount's content to markup.
	Replace(markup string)

	// Apply applies patches in order. Inserted and replaced nodes are
	// already numbered. An error means the DOM may be out of sync.
	Apply(patches []vdom.Patch) error
}

// History records client-side navigations.
type History interface {
	Push(path string)
}

// State is a snapshot of what the runtime is showing. Loading is only set
// on routes that have a loader.
type State struct {
	Path    string
	View    string
	Loading bool
	Repos   []github.Repo
}

// Options configures an App.
type Options struct {
	Page    *app.Page
	Table   *router.Table
	DOM     DOM
	History History
	Logger  *slog.Logger

	// Spawn runs a loader off the caller's goroutine. Defaults to `go f()`.
	Spawn func(f func())

	// OnCommit is called after every commit with the committed state.
	OnCommit func(State)
}

// App is the browser runtime: it hydrates the server markup, then owns the
// mount and re-renders it on navigation and when data arrives.
type App struct {
	page     *app.Page
	table    *router.Table
	dom      DOM
	history  History
	logger   *slog.Logger
	spawn    func(func())
	onCommit func(State)

	mu    sync.Mutex
	path  string
	match router.Match
	repos []github.Repo
	tree  *vdom.VNode
	gen   *vdom.HIDGenerator

	// fetchID increments per visit; a loader result is only applied while
	// its id is still current.
	fetchID uint64
}

// New creates an App.
func New(opts Options) *App {
	a := &App{
		page:     opts.Page,
		table:    opts.Table,
		dom:      opts.DOM,
		history:  opts.History,
		logger:   opts.Logger,
		spawn:    opts.Spawn,
		onCommit: opts.OnCommit,
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.spawn == nil {
		a.spawn = func(f func()) { go f() }
	}
	return a
}

// Hydrate adopts the server-rendered DOM for path. payload is the data the
// server rendered with. If the DOM doesn't match the tree built from the
// same inputs, the mismatch is logged and the mount content is replaced.
// A Grid that arrives without data starts its own fetch.
func (a *App) Hydrate(path string, payload []github.Repo) {
	a.mu.Lock()

	m := a.table.Match(path)
	markup, tree, err := a.page.Markup(m, payload)
	if err != nil {
		a.mu.Unlock()
		a.logger.Error("hydrate failed", "path", path, "error", err)
		return
	}

	gen := vdom.NewHIDGenerator()
	vdom.AssignAllHIDs(tree, gen)

	if err := verify(a.dom.Tags(), tree); err != nil {
		a.logger.Warn("hydration mismatch, replacing mount content", "path", path, "error", err)
		a.dom.Replace(markup)
	}

	a.path = m.Path
	a.match = m
	a.repos = payload
	a.tree = tree
	a.gen = gen
	state := a.stateLocked()

	var id uint64
	needsData := payload == nil && a.page.Registry.HasLoader(m)
	if needsData {
		a.fetchID++
		id = a.fetchID
	}
	a.mu.Unlock()

	a.notify(state)

	if needsData {
		a.spawn(func() { a.load(id, m) })
	}
}

// Navigate handles a click on a client-side link: it records path in the
// history and visits it.
func (a *App) Navigate(path string) {
	if a.history != nil {
		a.history.Push(path)
	}
	a.visit(path)
}

// PopState handles back/forward navigation to path.
func (a *App) PopState(path string) {
	a.visit(path)
}

// State returns the current state.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateLocked()
}

func (a *App) stateLocked() State {
	return State{
		Path:    a.path,
		View:    a.match.View(),
		Loading: a.repos == nil && a.page.Registry.HasLoader(a.match),
		Repos:   a.repos,
	}
}

func (a *App) visit(path string) {
	a.mu.Lock()

	m := a.table.Match(path)
	a.path = m.Path
	a.match = m
	a.repos = nil

	// Any fetch still in flight belongs to the previous visit.
	a.fetchID++
	id := a.fetchID
	hasLoader := a.page.Registry.HasLoader(m)

	a.commitLocked()
	state := a.stateLocked()
	a.mu.Unlock()

	a.notify(state)

	if hasLoader {
		a.spawn(func() { a.load(id, m) })
	}
}

func (a *App) load(id uint64, m router.Match) {
	repos := a.page.Registry.Load(context.Background(), m)

	a.mu.Lock()
	if id != a.fetchID {
		a.mu.Unlock()
		a.logger.Debug("stale loader response discarded", "path", m.Path, "language", app.Language(m))
		return
	}
	a.repos = repos
	a.commitLocked()
	state := a.stateLocked()
	a.mu.Unlock()

	a.notify(state)
}

func (a *App) notify(s State) {
	if a.onCommit != nil {
		a.onCommit(s)
	}
}

// commitLocked re-renders the mount from the current state: build the
// tree, diff it against the previous one, number new elements and patch
// the DOM. When patching fails the mount is replaced wholesale.
func (a *App) commitLocked() {
	next, err := a.build()
	if err != nil {
		a.logger.Error("commit failed", "path", a.path, "error", err)
		return
	}

	if a.gen == nil {
		a.gen = vdom.NewHIDGenerator()
	}

	var patches []vdom.Patch
	if a.tree != nil {
		patches = vdom.Diff(a.tree, next)
	}
	vdom.AssignMissingHIDs(next, a.gen)
	a.tree = next

	if a.dom == nil {
		return
	}
	if len(patches) > 0 {
		if err := a.dom.Apply(patches); err != nil {
			a.logger.Debug("patch failed, replacing mount content", "error", err)
			a.replaceLocked()
			return
		}
	}

	if err := verify(a.dom.Tags(), a.tree); err != nil {
		a.logger.Debug("DOM drifted from tree, replacing mount content", "error", err)
		a.replaceLocked()
	}
}

func (a *App) replaceLocked() {
	markup, err := a.page.Render(a.tree)
	if err != nil {
		a.logger.Error("render failed", "path", a.path, "error", err)
		return
	}
	a.dom.Replace(markup)
}

// build recovers from view panics so one bad render doesn't kill the runtime.
func (a *App) build() (tree *vdom.VNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.RenderFailed).Wrap(fmt.Errorf("panic: %v", r))
		}
	}()
	return a.page.Build(a.match, a.repos)
}

// verify compares the DOM's data-hid elements against tree.
func verify(tags map[string]string, tree *vdom.VNode) error {
	nodes := vdom.CollectHIDs(tree)

	for hid, node := range nodes {
		if !node.IsElement() {
			continue
		}
		got, ok := tags[hid]
		if !ok || got != strings.ToLower(node.Tag) {
			return errors.New(errors.HydrationTagMismatch).
				WithDetailf("element %s: server has <%s>, client expects <%s>", hid, got, node.Tag)
		}
	}

	if want := vdom.CountElements(tree); len(tags) != want {
		return errors.New(errors.HydrationCountMismatch).
			WithDetailf("server has %d elements, client expects %d", len(tags), want)
	}
	return nil
}
