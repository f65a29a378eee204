package messages

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a Catalog whenever its backing file changes. A file that
// fails validation is logged and the previous entries stay in place.
type Watcher struct {
	path    string
	catalog *Catalog
	logger  *slog.Logger
	fsw     *fsnotify.Watcher

	// OnReload, when set, is called after every reload attempt.
	OnReload func(err error)
}

// NewWatcher starts watching the directory containing path.
func NewWatcher(path string, catalog *Catalog, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving catalog path %q: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating catalog watcher: %w", err)
	}
	// Watch the directory: editors often replace the file instead of writing it.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close() //nolint:errcheck
		return nil, fmt.Errorf("watching %q: %w", filepath.Dir(abs), err)
	}
	return &Watcher{path: abs, catalog: catalog, logger: logger, fsw: fsw}, nil
}

// Run processes file events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close() //nolint:errcheck
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("catalog watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	entries, err := ParseFile(w.path)
	if err != nil {
		w.logger.Warn("keeping previous message catalog", "path", w.path, "error", err)
	} else {
		w.catalog.Replace(entries)
		w.logger.Info("message catalog reloaded", "path", w.path, "messages", len(entries))
	}
	if w.OnReload != nil {
		w.OnReload(err)
	}
}
