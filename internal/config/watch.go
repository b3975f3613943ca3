package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/okian/drunkyet/pkg/logger"
)

// Watch monitors path and calls onChange with the reloaded Config each time
// the file is written or replaced. It runs until ctx is cancelled.
// A failed reload is logged and onChange is not called.
//
// The parent directory is watched so that editors which save by renaming a
// temporary file over path keep triggering reloads.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	log := logger.Named("config")
	log.Info(ctx, "watching config for changes", logger.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			// A rename over path arrives as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := LoadFile(ctx, path)
			if err != nil {
				log.Error(ctx, "config reload failed, keeping previous config",
					logger.String("path", path), logger.Error(err))
				continue
			}

			log.Info(ctx, "config reloaded", logger.String("path", path))
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error(ctx, "config watcher error", logger.Error(err))
		}
	}
}
