// Package watch reruns a transformation whenever its input files
// change on disk.
//
// The parent directories of the watched files are registered with
// fsnotify rather than the files themselves. Editors and atomic
// writers replace files by renaming a temporary file over them, and a
// directory watch keeps seeing the path after the inode changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// DefaultDebounce is the delay used when Config.Debounce is zero.
const DefaultDebounce = 200 * time.Millisecond

// Config configures Watch.
type Config struct {
	// Debounce is the delay to wait for additional changes before
	// rerunning. This batches rapid successive writes into a single
	// rerun. Default: 200ms.
	Debounce time.Duration

	// OnError is called when a rerun or watcher error occurs. If nil,
	// errors are reported through Logger instead.
	OnError func(error)

	// Logger receives change and error events. If nil, nothing is
	// logged.
	Logger *slog.Logger
}

// Watch blocks watching the given files and invokes run after changes
// settle for the debounce interval. Errors from run do not stop the
// watch; they are handed to OnError (or logged) and the next change
// triggers another rerun. Watch returns when ctx is done, reporting
// nil on plain cancellation.
func Watch(ctx context.Context, paths []string, cfg Config, run func(context.Context) error) error {
	if len(paths) == 0 {
		return errors.New("no files to watch")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer w.Close()

	watched := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve path %q: %w", p, err)
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", dir, err)
		}
	}

	changes := make(chan string, 16)

	g, ctx := errgroup.WithContext(ctx)

	// Event loop: filter directory events down to the watched files.
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case event, ok := <-w.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				abs, err := filepath.Abs(event.Name)
				if err != nil || !watched[abs] {
					continue
				}
				select {
				case changes <- abs:
				case <-ctx.Done():
					return ctx.Err()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				report(cfg, logger, err)
			}
		}
	})

	// Rerun worker: each change resets the debounce timer, and run
	// fires once the burst settles. A nil fire channel blocks forever,
	// so nothing fires until the first change arrives.
	g.Go(func() error {
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return ctx.Err()
			case path := <-changes:
				logger.Debug("change detected", "path", path)
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(cfg.Debounce)
				fire = timer.C
			case <-fire:
				fire = nil
				logger.Debug("rerunning transformation")
				if err := run(ctx); err != nil {
					report(cfg, logger, err)
				}
			}
		}
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func report(cfg Config, logger *slog.Logger, err error) {
	if cfg.OnError != nil {
		cfg.OnError(err)
		return
	}
	logger.Error("watch error", "error", err)
}
