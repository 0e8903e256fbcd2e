// Package watcher reloads a network document when it changes on disk.
package watcher

import (
	"context"
	"crypto/sha256"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"gasmap/internal/editor"
)

// Watcher watches a file for changes
type Watcher struct {
	path     string
	onChange func()
	debounce time.Duration
	sum      [sha256.Size]byte
}

// New creates a new file watcher
func New(path string, onChange func()) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: 500 * time.Millisecond,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Watch starts watching the file for changes. onChange runs on the calling
// goroutine once the file has been quiet for the debounce interval and its
// content differs from what was last seen.
// It blocks until the context is cancelled or an error occurs
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory containing the file
	// This handles cases where the file is replaced (e.g., by editors)
	dir := filepath.Dir(w.path)
	filename := filepath.Base(w.path)

	if err := watcher.Add(dir); err != nil {
		return err
	}
	w.changed()

	log.Printf("Watching %s for changes", w.path)

	var debounceTimer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Base(event.Name) != filename {
				continue
			}

			// Atomic saves arrive as a create (rename into place)
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounceTimer == nil {
					debounceTimer = time.NewTimer(w.debounce)
				} else {
					debounceTimer.Reset(w.debounce)
				}
				fire = debounceTimer.C
			}

		case <-fire:
			fire = nil
			if !w.changed() {
				continue
			}
			log.Printf("File changed: %s", w.path)
			w.onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// changed records the file's current digest and reports whether it
// differs from the previous one. An unreadable file counts as unchanged.
func (w *Watcher) changed() bool {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return false
	}
	sum := sha256.Sum256(data)
	if sum == w.sum {
		return false
	}
	w.sum = sum
	return true
}

// Poster queues editor events without waiting for them
type Poster interface {
	Post(ctx context.Context, e editor.Event) error
}

// Reload returns a change handler that replaces the network with the
// document at location. The current network is kept when the document
// cannot be read or applied.
func Reload(ctx context.Context, p Poster, location string) func() {
	return func() {
		err := p.Post(ctx, editor.ToolCommand{
			Name:     editor.CmdLoad,
			Location: location,
			Replace:  true,
			Done: func(res editor.JobResult) {
				if res.Err != nil {
					log.Printf("Reload of %s failed, network kept: %v", location, res.Err)
					return
				}
				log.Printf("Reloaded %s: %d node(s), %d pipe(s)", location, res.Nodes, res.Pipes)
			},
		})
		if err != nil {
			log.Printf("Reload of %s skipped: %v", location, err)
		}
	}
}
