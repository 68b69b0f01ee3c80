package config

import (
	"context"
	"fmt"
	"path/filepath"

	"CartoonSea/internal/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads path whenever it is written and passes each config that
// loads and validates to onChange. Broken edits are logged and skipped. It
// blocks until ctx is done.
//
// The parent directory is watched rather than the file so editors that save
// by rename keep triggering reloads.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	logger.Log.Info("Watching config", zap.String("path", abs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			cfg, err := load(abs)
			if err == nil {
				err = cfg.Validate()
			}
			if err != nil {
				logger.Log.Warn("Ignoring config reload", zap.String("path", abs), zap.Error(err))
				continue
			}
			logger.Log.Info("Config reloaded", zap.String("path", abs))
			onChange(cfg)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Log.Warn("Config watcher error", zap.Error(err))
		}
	}
}
