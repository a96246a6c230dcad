package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 150 * time.Millisecond

// fileWatcher reports debounced changes to a single file. Editors that
// replace files on save are handled by watching the parent directory.
type fileWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	changes chan struct{}
}

func newFileWatcher(path string) (*fileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return &fileWatcher{
		path:    abs,
		watcher: fw,
		changes: make(chan struct{}, 1),
	}, nil
}

// run forwards changes until ctx is done, then closes the watcher.
func (w *fileWatcher) run(ctx context.Context) {
	defer close(w.changes)
	defer func() { _ = w.watcher.Close() }()

	ticker := time.NewTicker(watchDebounce)
	defer ticker.Stop()

	var pending time.Time
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < watchDebounce {
				continue
			}
			pending = time.Time{}
			select {
			case w.changes <- struct{}{}:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if logger != nil {
				logger.Warn("file watch error", "error", err)
			}
		}
	}
}
