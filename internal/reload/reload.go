// Package reload reports when a guest module file is rewritten.
package reload

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last change before a
// notification is sent.
const DefaultDebounce = 100 * time.Millisecond

// Watch watches path and sends it on the returned channel once writes to it
// have settled for debounce. The parent directory is watched so that
// editors and build tools that replace the file are noticed too.
//
// Both channels close when ctx ends.
func Watch(ctx context.Context, path string, debounce time.Duration) (<-chan string, <-chan error, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, nil, fmt.Errorf("failed to watch %s: %w", filepath.Base(abs), err)
	}

	changes := make(chan string, 1)
	errs := make(chan error, 1)
	go run(ctx, w, abs, debounce, changes, errs)
	return changes, errs, nil
}

func run(ctx context.Context, w *fsnotify.Watcher, path string, debounce time.Duration, changes chan<- string, errs chan<- error) {
	defer close(errs)
	defer close(changes)
	defer w.Close()

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			select {
			case errs <- err:
			default:
			}
		case <-timer.C:
			select {
			case changes <- path:
			default:
				// a notification is already pending
			}
		}
	}
}
