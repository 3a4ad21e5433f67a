package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces editor save bursts into one regeneration.
const watchDebounce = 250 * time.Millisecond

// Watch regenerates on every change to the schema file, debounced. It runs an
// initial generation immediately, then blocks until ctx is cancelled. Failed
// regenerations are logged and watching continues; only watcher setup errors
// are returned.
func (e *Engine) Watch(ctx context.Context, opts GenerateOptions, onResult func(*GenerateResult)) error {
	initial, err := e.Generate(ctx, opts)
	if err != nil {
		return err
	}
	if onResult != nil {
		onResult(initial)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory, not the file: editors replace files on save,
	// which drops a direct file watch.
	dir := filepath.Dir(opts.SchemaPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target, err := filepath.Abs(opts.SchemaPath)
	if err != nil {
		return err
	}

	e.logger.Info("watching schema", "path", opts.SchemaPath)

	var debounce *time.Timer
	regen := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != target {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case regen <- struct{}{}:
				default:
				}
			})

		case <-regen:
			e.logger.Info("schema changed, regenerating", "path", opts.SchemaPath)
			result, err := e.Generate(ctx, opts)
			if err != nil {
				e.logger.Error("regeneration failed", "error", err.Error())
				continue
			}
			if onResult != nil {
				onResult(result)
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Warn("watcher error", "error", werr.Error())
		}
	}
}
