// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDebounce coalesces bursts of write events; editors commonly emit
// several events per save.
const watchDebounce = 250 * time.Millisecond

// Watch monitors the config file and invokes onReload with each freshly
// loaded configuration. A file that fails to load keeps the previous
// configuration in effect: the failure is logged and reported through
// onReloadErr, which may be nil. Watch blocks until ctx is done; run it on
// its own goroutine.
func Watch(ctx context.Context, path string, logger *zap.Logger, onReload func(*Config), onReloadErr func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files on save,
	// which would silently drop a file-level watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			cfg, err := LoadFrom(path)
			if err != nil {
				logger.Warn("config reload failed, keeping previous configuration",
					zap.String("path", path),
					zap.Error(err))
				if onReloadErr != nil {
					onReloadErr(err)
				}
				continue
			}
			logger.Info("config reloaded", zap.String("path", path))
			onReload(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", zap.Error(err))
		}
	}
}
