// Package watch re-runs an action when watched files change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of events, e.g. an editor writing a
// temp file and renaming it over the original.
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches directories recursively and single files.
type Watcher struct {
	paths    []string
	debounce time.Duration
	logger   *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period after the last event before the
// action runs.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher over paths. Empty paths are ignored.
func New(paths []string, opts ...Option) *Watcher {
	w := &Watcher{
		debounce: DefaultDebounce,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, p := range paths {
		if p != "" {
			w.paths = append(w.paths, p)
		}
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run calls onChange after each debounced batch of changes until ctx is
// done. Errors from onChange are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Single files are watched through their directory so that
	// rename-over-write saves are still seen.
	files := make(map[string]struct{})
	for _, p := range w.paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		if info.IsDir() {
			if err := watchDirRecursive(watcher, p); err != nil {
				return fmt.Errorf("watch %s: %w", p, err)
			}
			continue
		}
		files[filepath.Clean(p)] = struct{}{}
		if err := watcher.Add(filepath.Dir(p)); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}

	w.logger.Info("watching for changes", "paths", w.paths)

	trigger := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !w.relevant(event.Name, files) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchDirRecursive(watcher, event.Name)
				}
			}

			w.logger.Debug("file changed", "file", event.Name, "op", event.Op.String())

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case <-trigger:
			if err := onChange(ctx); err != nil {
				w.logger.Error("rebuild failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// relevant reports whether an event on name concerns a watched path.
// Events in a directory watched only for a single file are filtered to
// that file.
func (w *Watcher) relevant(name string, files map[string]struct{}) bool {
	name = filepath.Clean(name)
	if _, ok := files[name]; ok {
		return true
	}
	for _, p := range w.paths {
		p = filepath.Clean(p)
		if _, isFile := files[p]; isFile {
			continue
		}
		rel, err := filepath.Rel(p, name)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
