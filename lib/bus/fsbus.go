package bus

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/openshelf/shelfd/lib/logging"
)

var fsLogger = logging.GetLogger("bus/fs")

// fsOrigin marks signals synthesized from filesystem events. A store can never
// mistake them for its own publishes.
const fsOrigin = "fs"

// debounceWindow collapses the burst of write/rename events a single atomic
// snapshot write produces into one signal.
const debounceWindow = 50 * time.Millisecond

// fsBus derives change signals from snapshot file writes. It wraps an
// in-process bus for local delivery and adds an fsnotify watcher so snapshot
// writes performed by other processes sharing the directory surface as
// signals too. Publish is delegated to the inner bus; the publishing
// process's own file writes come back as fs-originated signals, which stores
// ignore only if they originated them, so a store in another process reloads.
type fsBus struct {
	inner   IBus
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewFSBus creates a bus watching dir for snapshot changes. The directory must
// be the same one a file storage backend writes to.
func NewFSBus(dir string) (IBus, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fs watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	b := &fsBus{
		inner:   NewMemoryBus(),
		watcher: watcher,
		done:    make(chan struct{}),
	}
	go b.watch()
	return b, nil
}

// SignalTypeForKey maps a storage key to its signal type, e.g. "books" ->
// "BOOKS_CHANGE". Stores use the same mapping when they publish.
func SignalTypeForKey(key string) string {
	return strings.ToUpper(key) + "_CHANGE"
}

// watch translates file events into signals, debounced per key.
func (b *fsBus) watch() {
	pending := make(map[string]*time.Timer)

	for {
		select {
		case <-b.done:
			return
		case event, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Base(event.Name)
			if !strings.HasSuffix(name, ".json") {
				continue
			}
			key := strings.TrimSuffix(name, ".json")

			if timer, ok := pending[key]; ok {
				timer.Reset(debounceWindow)
				continue
			}
			pending[key] = time.AfterFunc(debounceWindow, func() {
				sig := Signal{Type: SignalTypeForKey(key), Origin: fsOrigin}
				if err := b.inner.Publish(sig); err != nil {
					fsLogger.Warnf("failed to publish %s: %v", sig.Type, err)
				}
			})
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			fsLogger.Warnf("watcher error: %v", err)
		}
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (b *fsBus) Publish(sig Signal) error {
	return b.inner.Publish(sig)
}

func (b *fsBus) Subscribe(sigType string, h Handler) func() {
	return b.inner.Subscribe(sigType, h)
}

func (b *fsBus) Close() error {
	close(b.done)
	b.watcher.Close()
	return b.inner.Close()
}
