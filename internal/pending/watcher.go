package pending

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces bursts of events, such as a test run writing
// many received files.
const DefaultDebounce = 200 * time.Millisecond

// Watcher signals when received or approved files change under a root
// directory. fsnotify is not recursive, so every directory under the root is
// watched, and directories created later are added as they appear.
type Watcher struct {
	mu       sync.Mutex
	root     string
	debounce time.Duration
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	changes  chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// WatcherOption customizes a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(logger *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher prepares a watcher for root. Call Start to begin watching.
func NewWatcher(root string, opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("pending: create watcher: %w", err)
	}
	w := &Watcher{
		root:     root,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
		watcher:  fw,
		changes:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Changes receives a value after each debounced burst of events. Bursts that
// arrive while a value is still unread are merged into it.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Start watches the tree under root and returns immediately.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.running = true
	go w.run(ctx)
	return nil
}

// Stop ends the watch loop, waits for it to exit and releases the watcher.
// It is safe to call more than once, and without Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("pending: close watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.handle(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("pending: watch error", zap.Error(err))
		case <-fire:
			fire = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}
		}
	}
}

// handle reports whether event concerns an approval file. New directories
// are added to the watch set.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("pending: watch new directory", zap.String("dir", event.Name), zap.Error(err))
			}
			return false
		}
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	return strings.Contains(base, ".received.") || strings.Contains(base, ".approved.")
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("pending: watch %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && (strings.HasPrefix(d.Name(), ".") || skippedDirs[d.Name()]) {
			return fs.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("pending: watch %s: %w", path, err)
		}
		return nil
	})
}
