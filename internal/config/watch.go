package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc receives the result of each reload.
type ReloadFunc func(cfg Config, err error)

type watchOptions struct {
	debounce time.Duration
	load     func(path string) (Config, error)
}

// WatchOption configures Watch.
type WatchOption func(*watchOptions)

// WithDebounce sets how long Watch waits after the last change before
// reloading.
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d >= 0 {
			o.debounce = d
		}
	}
}

// WithLoader replaces Load as the function used to reread the file.
func WithLoader(load func(path string) (Config, error)) WatchOption {
	return func(o *watchOptions) {
		if load != nil {
			o.load = load
		}
	}
}

// Watch calls fn with a freshly loaded configuration each time the file
// at path is written or replaced. It blocks until ctx is done.
//
// The parent directory is watched rather than the file, so editors that
// save by renaming a temporary file are seen.
func Watch(ctx context.Context, path string, fn ReloadFunc, opts ...WatchOption) error {
	o := watchOptions{
		debounce: 100 * time.Millisecond,
		load:     Load,
	}
	for _, opt := range opts {
		opt(&o)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if info, err := os.Stat(absPath); err == nil && !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotRegularFile, absPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(absPath), err)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != absPath {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(o.debounce)
			} else {
				timer.Reset(o.debounce)
			}
			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			fn(Config{}, fmt.Errorf("watching %s: %w", absPath, err))

		case <-fire:
			fire = nil
			cfg, err := o.load(absPath)
			fn(cfg, err)
		}
	}
}
