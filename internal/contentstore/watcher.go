package contentstore

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/oikos/internal/storage"
)

// Watch starts an fsnotify watcher on the library directory and reloads unit
// content files until ctx is cancelled. Events are debounced into a single
// reload pass; cb (if non-nil) runs after each successful reload so callers
// can reindex and broadcast.
//
// New directories created at runtime are added to the watch list. Reloads
// only upsert: deleting a library file does not remove its unit, since units
// may also originate from imports and manual entry.
func Watch(ctx context.Context, store *Store, provider storage.Provider, libraryRoot string, logger *slog.Logger, cb func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, libraryRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", libraryRoot))

	// reloadTimer debounces bursts of file events into one reload.
	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reloadCh:
			if err := LoadLibrary(store, provider, logger); err != nil {
				logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
				continue
			}
			logger.Debug("watcher: library reloaded")
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if addErr := addDirIfDir(w, ev.Name); addErr != nil {
					logger.Warn("watcher: add new dir failed",
						slog.String("path", ev.Name),
						slog.String("error", addErr.Error()))
				}
			}

			if !strings.HasSuffix(ev.Name, ".json") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirIfDir adds path (and its subdirectories) to the watcher when it is a
// directory; files are ignored.
func addDirIfDir(w *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil
	}
	return addDirsRecursive(w, path)
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
