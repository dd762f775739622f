package catalog

import (
	"os"
	"time"
)

// Watcher polls the catalog files' modification times and invalidates the
// loader cache when one changes, so edits to the YAML go live without a
// restart.
type Watcher struct {
	loader    *Loader
	interval  time.Duration
	onReload  func(string) // called with the path that changed
	stopCh    chan struct{}
	lastMTime map[string]time.Time
}

// NewWatcher creates a watcher over the loader's files. onReload may be nil.
func NewWatcher(l *Loader, interval time.Duration, onReload func(string)) *Watcher {
	return &Watcher{
		loader:    l,
		interval:  interval,
		onReload:  onReload,
		stopCh:    make(chan struct{}),
		lastMTime: make(map[string]time.Time),
	}
}

// Start begins polling in a goroutine.
func (w *Watcher) Start() {
	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		w.scan(true)
		for {
			select {
			case <-ticker.C:
				w.scan(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
}

// scan checks mtimes; on the first change it invalidates the cache once
// and reports every changed path.
func (w *Watcher) scan(prime bool) {
	invalidated := false
	for _, p := range w.loader.watchPaths() {
		fi, err := os.Stat(p)
		if err != nil {
			// the shop override may not exist; keep going
			continue
		}
		mt := fi.ModTime()
		last, ok := w.lastMTime[p]
		if !ok {
			w.lastMTime[p] = mt
			continue
		}
		if mt.After(last) {
			w.lastMTime[p] = mt
			if prime {
				continue
			}
			if !invalidated {
				w.loader.Invalidate()
				invalidated = true
			}
			if w.onReload != nil {
				w.onReload(p)
			}
		}
	}
}
