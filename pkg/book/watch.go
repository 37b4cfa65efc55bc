package book

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to a book on disk.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	isDir   bool
}

// NewWatcher watches the book at path. For a file the parent directory is
// watched, so editors that replace the file are still seen.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat book: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	dir := abs
	if !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("add path to watcher: %w", err)
	}

	return &Watcher{watcher: w, path: abs, isDir: info.IsDir()}, nil
}

// Run calls onChange for every content change until ctx is done or the
// watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) {
	for {
		select {
		case <-ctx.Done():
			return

		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !w.matches(evt) {
				continue
			}

			slog.DebugContext(ctx, "book changed",
				slog.String("event", evt.String()),
			)

			onChange(w.path)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			slog.ErrorContext(ctx, "watch book", slog.Any("error", err))
		}
	}
}

func (w *Watcher) matches(evt fsnotify.Event) bool {
	// Ignore events that are not related to file content changes.
	if evt.Has(fsnotify.Chmod) {
		return false
	}

	if w.isDir {
		_, err := DetectFormat(evt.Name)
		return err == nil
	}

	return filepath.Clean(evt.Name) == w.path
}

func (w *Watcher) Close() error {
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}

	return nil
}
