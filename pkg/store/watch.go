package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is emitted by Watch when another process updates the snapshot.
type Event struct {
	// Key is the cache key whose snapshot changed, or empty when the
	// change could not be classified and callers should refresh fully.
	Key string
}

// Watch streams snapshot change events until ctx is cancelled. Callers
// should drain the returned channel to avoid losing events. The channel
// is closed once ctx is done or the watcher fails unrecoverably.
func (s *Store) Watch(ctx context.Context) (<-chan Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "store: watcher close: %v\n", err)
			}
		})
	}

	for _, dir := range []string{s.basePath, filepath.Join(s.basePath, "widget")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: ensure %s: %w", dir, err)
		}
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 64)

	go func() {
		defer close(events)
		defer closeWatcher()

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
				// Drop when the consumer lags; the next refresh picks up
				// the change and the watcher goroutine never stalls.
			}
		}

		// Coalesce bursts of writes into one event per key.
		pending := make(map[string]struct{})
		var timer *time.Timer
		var mu sync.Mutex
		flush := func() {
			mu.Lock()
			keys := pending
			pending = make(map[string]struct{})
			timer = nil
			mu.Unlock()
			for key := range keys {
				send(Event{Key: key})
			}
		}
		enqueue := func(key string) {
			mu.Lock()
			pending[key] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(100*time.Millisecond, flush)
			}
			mu.Unlock()
		}

		for {
			select {
			case <-ctx.Done():
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				mu.Unlock()
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				enqueue("")
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				enqueue(s.keyForPath(evt.Name))
			}
		}
	}()

	return events, nil
}

// keyForPath derives the cache key from a diskv file path.
func (s *Store) keyForPath(path string) string {
	rel, err := filepath.Rel(s.basePath, path)
	if err != nil || rel == "." {
		return ""
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	switch len(parts) {
	case 1:
		return parts[0]
	case 2:
		if parts[0] == "widget" {
			return widgetKeyPrefix + parts[1]
		}
	}
	return ""
}
