package app

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/modfactory/internal/config"
	"github.com/specialistvlad/modfactory/internal/registry"
)

// ManifestExtensions are the file extensions a manifest change is recognised by.
var ManifestExtensions = []string{".hcl", ".yaml", ".yml"}

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

// Watch validates the manifests, then validates them again after every change
// to a manifest file below cfg.ManifestPaths until ctx is done. Each round
// reloads the manifests into a fresh App. A failed round is reported on outW
// and logged; watching continues. With cfg.HealthcheckPort set, the outcome
// of the last round is served over HTTP.
func Watch(ctx context.Context, outW, logW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) error {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	status := newWatchStatus()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := watchDirs(cfg.ManifestPaths)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		// Directories are watched so editors that save atomically are seen.
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch directory %s: %w", dir, err)
		}
	}
	logger.Info("Watching manifests for changes.", "directories", dirs)

	if cfg.HealthcheckPort > 0 {
		stop, err := startHealthcheckServer(logger, cfg.HealthcheckPort, status.router(logger))
		if err != nil {
			return err
		}
		defer stop()
	}

	round := func() {
		a, err := NewApp(outW, logW, cfg, loader, modules...)
		if err != nil {
			status.record(0, err)
			logger.Error("Manifest reload failed.", "error", err)
			fmt.Fprintf(outW, "error   %v\n", err)
			return
		}
		err = a.Validate(ctx)
		status.record(len(a.Model().Entries), err)
		if err != nil {
			logger.Error("Validation failed.", "error", err)
		}
	}
	round()

	var debounce <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					// Manifests may already be inside when the watch is added.
					addWatches(logger, watcher, event.Name)
					debounce = time.After(watchDebounce)
					continue
				}
			}
			if !slices.Contains(ManifestExtensions, filepath.Ext(event.Name)) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("Manifest changed.", "event", event.Op.String(), "file", event.Name)
			debounce = time.After(watchDebounce)

		case <-debounce:
			debounce = nil
			round()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("File watcher error.", "error", err)

		case <-ctx.Done():
			logger.Info("Stopped watching manifests.")
			return nil
		}
	}
}

// addWatches watches dir and every directory below it. dir is added before
// the walk so a subdirectory created meanwhile raises its own event.
func addWatches(logger *slog.Logger, watcher *fsnotify.Watcher, dir string) {
	if err := watcher.Add(dir); err != nil {
		logger.Error("File watcher error.", "directory", dir, "error", err)
		return
	}
	logger.Debug("Watching new directory.", "directory", dir)
	dirs, err := watchDirs([]string{dir})
	if err != nil {
		logger.Error("File watcher error.", "error", err)
		return
	}
	for _, d := range dirs[1:] {
		if err := watcher.Add(d); err != nil {
			logger.Error("File watcher error.", "directory", d, "error", err)
			continue
		}
		logger.Debug("Watching new directory.", "directory", d)
	}
}

// watchDirs returns every directory below the directory paths, plus the
// parent directory of each file path.
func watchDirs(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var dirs []string
	add := func(dir string) {
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", p, err)
		}
		if !info.IsDir() {
			add(filepath.Dir(p))
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", p, err)
		}
	}
	slices.Sort(dirs)
	return dirs, nil
}
