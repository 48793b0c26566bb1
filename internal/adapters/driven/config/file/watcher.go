package file

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 500 * time.Millisecond

// reloadAttempts bounds retries when the file is caught mid-write.
const reloadAttempts = 3

// Watcher reloads a ConfigStore when its file changes and then calls
// onChange. The parent directory is watched rather than the file, so
// editors that save by rename are picked up.
type Watcher struct {
	store    *ConfigStore
	onChange func()
	debounce time.Duration
}

// NewWatcher creates a watcher for store. onChange may be nil.
func NewWatcher(store *ConfigStore, onChange func()) *Watcher {
	return &Watcher{
		store:    store,
		onChange: onChange,
		debounce: DefaultDebounce,
	}
}

// WithDebounce overrides DefaultDebounce.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.store.Path())
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	name := filepath.Base(w.store.Path())
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				if ctx.Err() == nil {
					w.reload()
				}
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("config watcher: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	var err error
	for i := range reloadAttempts {
		if i > 0 {
			time.Sleep(100 * time.Millisecond)
		}
		if err = w.store.Load(); err == nil {
			break
		}
	}
	if err != nil {
		log.Printf("config watcher: keeping previous config: %v", err)
		return
	}

	if w.onChange != nil {
		w.onChange()
	}
}
