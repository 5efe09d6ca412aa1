package mirror

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"syskit/internal/logging"
)

// Watcher re-runs a Syncer whenever the source tree changes. Events are
// debounced so a burst of writes triggers a single mirror pass, and passes
// for the same pair never overlap: the event loop runs them inline.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	syncer      *Syncer
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats WatcherStats
}

// WatcherStats tracks watcher activity for tests and debugging.
type WatcherStats struct {
	EventsSeen    int
	SyncsRun      int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
}

// tickInterval is how often settled debounce entries are checked.
const tickInterval = 100 * time.Millisecond

// NewWatcher creates a Watcher for the syncer's source tree. debounce is
// how long a path must stay quiet before a mirror pass runs.
func NewWatcher(syncer *Syncer, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		watcher:     fsw,
		syncer:      syncer,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start performs the initial mirror pass, begins watching the source tree,
// and runs the event loop until ctx is cancelled or Stop is called. The
// initial pass guarantees a backup exists before watching begins.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	log := logging.Get(logging.CategoryMirror)

	if _, err := w.syncer.Sync(); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.mu.Lock()
	w.stats.SyncsRun++
	w.mu.Unlock()

	if err := w.watchTree(w.syncer.Source); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	log.Infof("watching %s -> %s (debounce %v)", w.syncer.Source, w.syncer.Dest, w.debounceDur)

	w.run(ctx)

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	// Close is idempotent, so a Stop that already closed it is harmless.
	_ = w.watcher.Close()
	return nil
}

// Stop terminates the event loop and closes the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	_ = w.watcher.Close()
}

// watchTree registers the directory and all subdirectories with fsnotify.
func (w *Watcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.syncer.excluded(d.Name()) && path != root {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	log := logging.Get(logging.CategoryMirror)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debugf("watcher for %s: context cancelled", w.syncer.Source)
			return

		case <-w.stopCh:
			log.Debugf("watcher for %s: stop requested", w.syncer.Source)
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("watch error on %s: %v", w.syncer.Source, err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			if w.takeSettled() {
				if _, err := w.syncer.Sync(); err != nil {
					log.Errorf("mirror pass failed: %v", err)
					w.mu.Lock()
					w.stats.Errors++
					w.mu.Unlock()
					continue
				}
				w.mu.Lock()
				w.stats.SyncsRun++
				w.mu.Unlock()
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	if w.syncer.excluded(filepath.Base(event.Name)) {
		return
	}

	// New directories must join the watch set or changes inside them
	// would go unseen.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watchTree(event.Name); err != nil {
				logging.Get(logging.CategoryMirror).Warnf("watching new dir %s: %v", event.Name, err)
			}
		}
	}

	w.mu.Lock()
	w.stats.EventsSeen++
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

// takeSettled reports whether any debounced path has been quiet long enough,
// clearing all settled entries. One mirror pass covers every settled path.
func (w *Watcher) takeSettled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	settled := false
	for path, last := range w.debounceMap {
		if now.Sub(last) >= w.debounceDur {
			delete(w.debounceMap, path)
			settled = true
		}
	}
	return settled
}

// Stats returns a snapshot of the watcher statistics.
func (w *Watcher) Stats() WatcherStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// IsWatching reports whether the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
