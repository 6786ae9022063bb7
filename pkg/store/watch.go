package store

import (
	"context"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithWatchLogger sets the watcher logger.
func WithWatchLogger(logger *zap.Logger) WatchOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// OnReload registers a callback run after every successful reload, typically
// Cache.Purge.
func OnReload(fn func()) WatchOption {
	return func(w *Watcher) {
		if fn != nil {
			w.onReload = append(w.onReload, fn)
		}
	}
}

// Watcher reloads a directory of schema documents into a MemoryStore whenever
// a file in it changes.
type Watcher struct {
	dir      string
	target   *MemoryStore
	logger   *zap.Logger
	onReload []func()
}

// NewWatcher builds a watcher for dir feeding target.
func NewWatcher(dir string, target *MemoryStore, opts ...WatchOption) *Watcher {
	w := &Watcher{dir: dir, target: target, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(w)
	}
	return w
}

// Reload loads the directory once and swaps it into the target. A directory
// that fails to parse leaves the previous content in place.
func (w *Watcher) Reload() error {
	loaded, err := LoadFS(os.DirFS(w.dir))
	if err != nil {
		return err
	}
	w.target.Replace(loaded)
	for _, fn := range w.onReload {
		fn()
	}
	w.logger.Info("store: schemas reloaded", zap.String("dir", w.dir), zap.Int("count", loaded.Len()))
	return nil
}

// Run watches the directory until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("store: watch %s: %w", w.dir, err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("store: watch %s: %w", w.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !IsSchemaFile(event.Name) {
				continue
			}
			w.logger.Debug("store: schema file changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			if err := w.Reload(); err != nil {
				w.logger.Error("store: reload failed", zap.String("dir", w.dir), zap.Error(err))
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("store: watcher error", zap.Error(err))
		}
	}
}
