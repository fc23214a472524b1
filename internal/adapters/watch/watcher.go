// Package watch triggers a callback when files under a package root change
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when none is configured
const DefaultDebounce = 500 * time.Millisecond

// IgnoreFunc reports whether a slash-separated path relative to the root
// should not be watched
type IgnoreFunc func(relPath string, isDir bool) bool

// Watcher monitors a directory tree and calls onChange once per burst of
// events. Calls never overlap.
type Watcher struct {
	root     string
	debounce time.Duration
	ignore   IgnoreFunc
	logger   *slog.Logger
	onChange func(ctx context.Context) error

	watcher *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets the quiet period after the last event
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithIgnore skips paths matched by fn
func WithIgnore(fn IgnoreFunc) Option {
	return func(w *Watcher) {
		w.ignore = fn
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// New creates a watcher for root
func New(root string, onChange func(ctx context.Context) error, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		root:     root,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		onChange: onChange,
		watcher:  fw,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run watches until ctx is cancelled. The watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.addTree(w.root); err != nil {
		return err
	}

	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.skip(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				// New directories need their own watch
				w.addTree(event.Name)
			}
			w.logger.Debug("File event", "path", event.Name, "op", event.Op.String())
			w.schedule(fire)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watch error", "error", err)

		case <-fire:
			if err := w.onChange(ctx); err != nil {
				w.logger.Error("Change handler failed", "error", err)
			}
		}
	}
}

// schedule restarts the debounce timer
func (w *Watcher) schedule(fire chan<- struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// addTree watches path and every directory below it
func (w *Watcher) addTree(path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == path {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && w.skip(p) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) skip(path string) bool {
	if w.ignore == nil {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	isDir := false
	if info, err := os.Stat(path); err == nil {
		isDir = info.IsDir()
	}
	return w.ignore(filepath.ToSlash(rel), isDir)
}
