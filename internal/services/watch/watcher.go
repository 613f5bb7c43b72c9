package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultPollInterval = 2 * time.Second

// Watcher observes the composition document and the background image
// for changes so watch mode can re-render the preview. It watches the
// parent directories rather than the files themselves, because editors
// replace files by rename and a direct watch dies with the old inode.
// Bursts of events settle through a debounce timer before one signal is
// delivered.
type Watcher struct {
	targets  map[string]struct{} // absolute paths that matter
	debounce time.Duration
	logger   *zap.Logger

	events chan struct{}
	done   chan struct{}
	fsw    *fsnotify.Watcher
	once   sync.Once

	polling      bool
	pollInterval time.Duration
}

// New builds a watcher over the given file paths; empty entries are
// skipped. When fsnotify cannot start or a directory cannot be added,
// the watcher falls back to mod-time polling instead of failing.
func New(paths []string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	w := &Watcher{
		targets:      make(map[string]struct{}),
		debounce:     debounce,
		logger:       logger,
		events:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		pollInterval: defaultPollInterval,
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve watch path %q: %w", p, err)
		}
		w.targets[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("fsnotify unavailable, falling back to polling", zap.Error(err))
		w.polling = true
		go w.poll()
		return w, nil
	}

	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			logger.Warn("cannot watch directory, falling back to polling",
				zap.String("dir", dir), zap.Error(err))
			fsw.Close()
			w.polling = true
			go w.poll()
			return w, nil
		}
	}

	w.fsw = fsw
	go w.run()
	return w, nil
}

// Events delivers one signal per settled burst of changes. The channel
// is buffered to 1 so unconsumed signals coalesce.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Polling reports whether the watcher fell back to mod-time polling.
func (w *Watcher) Polling() bool {
	return w.polling
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		if w.fsw != nil {
			if closeErr := w.fsw.Close(); closeErr != nil {
				err = fmt.Errorf("failed to close file watcher: %w", closeErr)
			}
		}
	})
	return err
}

func (w *Watcher) run() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case <-fire:
			timer = nil
			fire = nil
			w.notify()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	_, ok := w.targets[filepath.Clean(event.Name)]
	return ok
}

// poll stats the targets on a fixed interval and signals when any
// modification time advances.
func (w *Watcher) poll() {
	last := w.latestMod()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			if mod := w.latestMod(); mod.After(last) {
				last = mod
				w.notify()
			}
		}
	}
}

func (w *Watcher) latestMod() time.Time {
	var latest time.Time
	for p := range w.targets {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}
	return latest
}

// notify delivers one signal unless one is already pending.
func (w *Watcher) notify() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}
