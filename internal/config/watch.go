package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config file at path whenever it is written or replaced and
// hands the validated result to onChange. Reload failures go to onError (if
// set) and leave the previous configuration in force. Watch blocks until ctx is
// done.
func Watch(ctx context.Context, path string, onChange func(*Config), onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors and deploy tools usually replace the file.
	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch config directory for '%s': %w", path, err)
	}

	report := func(err error) {
		if onError != nil {
			onError(err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := LoadConfig(target)
			if err != nil {
				report(fmt.Errorf("config reload ignored: %w", err))
				continue
			}
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			report(fmt.Errorf("config watcher: %w", err))
		}
	}
}
