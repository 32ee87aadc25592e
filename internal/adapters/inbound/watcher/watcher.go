// Package watcher triggers gate runs when supported files are saved.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/choidage/daker/internal/domain"
	"github.com/choidage/daker/internal/logging"
)

// DefaultDebounce coalesces the burst of events most editors emit per save.
const DefaultDebounce = 300 * time.Millisecond

// Handler is called with the absolute path of a saved file. Calls are
// serialized on the watcher's goroutine.
type Handler func(ctx context.Context, path string)

// Watcher observes a workspace tree with fsnotify.
type Watcher struct {
	root     string
	cfg      domain.Config
	debounce time.Duration
	log      *logging.Logger

	fs      *fsnotify.Watcher
	ignored map[string]bool
	pending map[string]time.Time
}

// New prepares a watcher over root. Nothing is watched until Run.
func New(root string, cfg domain.Config, logger *logging.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	ignored := make(map[string]bool, len(cfg.IgnoreDirs))
	for _, d := range cfg.IgnoreDirs {
		ignored[filepath.Clean(d)] = true
	}
	ignored[".git"] = true
	return &Watcher{
		root:     abs,
		cfg:      cfg,
		debounce: DefaultDebounce,
		log:      logger.With("watcher"),
		ignored:  ignored,
		pending:  make(map[string]time.Time),
	}, nil
}

// WithDebounce overrides the save coalescing window.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Run watches until ctx is done. It returns immediately with nil when
// run-on-save is disabled in the configuration.
func (w *Watcher) Run(ctx context.Context, h Handler) error {
	if !w.cfg.RunOnSave() {
		w.log.Infof("auto_run_on_save disabled; not watching")
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w.fs = fw
	defer fw.Close()

	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.log.Infof("watching %s", w.root)

	tick := time.NewTicker(w.debounce / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Errorf("fsnotify error=%v", err)
		case now := <-tick.C:
			w.flush(ctx, now, h)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	w.log.Debugf("fsnotify event=%s file=%s", event.Op, event.Name)

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.log.Warnf("watch %s: %v", event.Name, err)
			}
			return
		}
	}
	if !w.cfg.SupportsFile(event.Name) {
		return
	}
	w.pending[event.Name] = time.Now()
}

// flush hands every path that has been quiet for the debounce window to h,
// in path order.
func (w *Watcher) flush(ctx context.Context, now time.Time, h Handler) {
	var ready []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)
	for _, path := range ready {
		delete(w.pending, path)
		if ctx.Err() != nil {
			return
		}
		h(ctx, path)
	}
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignored[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
