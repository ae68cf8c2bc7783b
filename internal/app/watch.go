package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jgivc/pageindex/internal/common"
	"github.com/spf13/afero"
)

// Watch builds once, then rebuilds the index after page changes settle
// for the configured debounce interval.
func (a *App) Watch(ctx context.Context) error {
	if _, err := a.Build(ctx); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create watcher: %w", err)
	}
	defer w.Close()

	dirs := make(map[string]struct{})
	if err := a.addTree(w, dirs, a.root); err != nil {
		return err
	}

	log := a.log.With(slog.String("item", "Watcher"))
	log.Info("Watch", slog.String("root", a.root), slog.Int("dirs", len(dirs)))

	debounce := a.cfg.Watch.Debounce
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if !a.isRelevant(ev, dirs) {
				continue
			}

			if ev.Has(fsnotify.Create) && a.isDir(ev.Name) {
				if err := a.addTree(w, dirs, filepath.Clean(ev.Name)); err != nil {
					log.Warn("Cannot watch directory", slog.String("path", ev.Name), slog.Any("error", err))
				}
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				delete(dirs, filepath.Clean(ev.Name))
			}

			log.Debug("Change detected", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watcher error", slog.Any("error", err))
		case <-timer.C:
			if _, err := a.Build(ctx); err != nil {
				if errors.Is(err, common.ErrBuildInProgress) {
					timer.Reset(debounce)
					continue
				}
				log.Error("Cannot rebuild index", slog.Any("error", err))
			}
		}
	}
}

func (a *App) addTree(w *fsnotify.Watcher, dirs map[string]struct{}, dir string) error {
	return afero.Walk(a.fs, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if path == dir {
				return err
			}

			return filepath.SkipDir
		}

		if !info.IsDir() {
			return nil
		}

		if err := w.Add(path); err != nil {
			return fmt.Errorf("cannot watch %s: %w", path, err)
		}
		dirs[filepath.Clean(path)] = struct{}{}

		return nil
	})
}

func (a *App) isDir(name string) bool {
	ok, err := afero.IsDir(a.fs, name)

	return err == nil && ok
}

// isRelevant reports whether an event can change the set of indexed pages.
// Root-level files never appear in the index, so writes of the output,
// state or metrics files do not retrigger a build.
func (a *App) isRelevant(ev fsnotify.Event, dirs map[string]struct{}) bool {
	name := filepath.Clean(ev.Name)
	if name == a.outputPath || name == a.statePath {
		return false
	}

	if _, ok := dirs[name]; ok {
		return true
	}

	if ev.Has(fsnotify.Create) && a.isDir(name) {
		return true
	}

	return filepath.Dir(name) != a.root && strings.HasSuffix(name, ".html")
}
