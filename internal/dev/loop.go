package dev

import (
	"context"
	"log/slog"
	"time"
)

// Notifier is what the loop tells browsers. *ReloadServer implements it.
type Notifier interface {
	NotifyReload()
	NotifyError(errMsg string)
	ClearError()
	ClientCount() int
}

// LoopOptions configures a Loop.
type LoopOptions struct {
	Changes <-chan []Change
	Notify  Notifier

	// Rebuild rebuilds the client bundle after a source change. Nil
	// leaves source changes to an external build.
	Rebuild func(ctx context.Context) error

	Logger *slog.Logger
}

// Loop reacts to file changes: source changes rebuild the bundle, bundle
// changes reload the browsers.
type Loop struct {
	changes <-chan []Change
	notify  Notifier
	rebuild func(ctx context.Context) error
	logger  *slog.Logger
}

// NewLoop creates a Loop.
func NewLoop(opts LoopOptions) *Loop {
	l := &Loop{
		changes: opts.Changes,
		notify:  opts.Notify,
		rebuild: opts.Rebuild,
		logger:  opts.Logger,
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Run handles changes until ctx is done or the channel closes.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-l.changes:
			if !ok {
				return
			}
			l.handle(ctx, batch)
		}
	}
}

func (l *Loop) handle(ctx context.Context, changes []Change) {
	var source, bundle bool
	for _, c := range changes {
		l.logger.Debug("changed", "path", c.Path)
		switch c.Type {
		case ChangeSource:
			source = true
		case ChangeBundle:
			bundle = true
		}
	}

	// A rebuild rewrites the bundle, which arrives as its own batch.
	if source && l.rebuild != nil {
		l.logger.Info("rebuilding client bundle")
		start := time.Now()
		if err := l.rebuild(ctx); err != nil {
			l.logger.Error("client build failed", "error", err)
			l.notify.NotifyError(err.Error())
			return
		}
		l.logger.Info("client bundle built", "duration", time.Since(start).Round(time.Millisecond))
		l.notify.ClearError()
	}

	if bundle {
		l.notify.NotifyReload()
		l.logger.Info("reloaded browsers", "clients", l.notify.ClientCount())
	}
}
