package content

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vukan322/devfolio/internal/logfields"
)

const reloadDebounce = 300 * time.Millisecond

// Watch reloads c from dir whenever a file under dir changes, until ctx is
// done. A failed reload keeps the previous posts.
func Watch(ctx context.Context, dir string, c *Collection, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("content: fsnotify: %w", err)
	}
	defer watcher.Close()

	if err := addDirsRecursive(watcher, dir, logger); err != nil {
		return err
	}

	reload := make(chan struct{}, 1)
	trigger := debounce(reloadDebounce, func() {
		select {
		case reload <- struct{}{}:
		default:
		}
	})

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ignoreEvent(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				_ = addDirsRecursive(watcher, ev.Name, logger)
			}
			logger.Debug("Content change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Content watcher error", logfields.Error(err))
		case <-reload:
			posts, err := readDir(dir)
			if err != nil {
				logger.Warn("Content reload failed; keeping previous posts", logfields.Error(err))
				continue
			}
			c.Replace(posts)
			logger.Info("Content reloaded", slog.Int("posts", len(posts)))
		}
	}
}

func debounce(wait time.Duration, fn func()) func() {
	var mu sync.Mutex
	var timer *time.Timer
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(wait, fn)
	}
}

func ignoreEvent(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp")
}

func addDirsRecursive(w *fsnotify.Watcher, root string, logger *slog.Logger) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}
