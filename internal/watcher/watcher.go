package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event represents a file change detected by the watcher.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Watcher reports changes to a run's inputs so the caller can parse again.
type Watcher struct {
	fsw    *fsnotify.Watcher
	Events chan Event
	paths  []string
	ignore map[string]bool
	log    *slog.Logger
}

// New watches the given files and directories. Paths that cannot be watched
// are logged and skipped.
func New(targets []string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:    fsw,
		Events: make(chan Event, 256),
		ignore: make(map[string]bool),
		log:    logger,
	}

	for _, t := range targets {
		abs, _ := filepath.Abs(t)
		if err := fsw.Add(abs); err != nil {
			logger.Warn("cannot watch path", "path", abs, "error", err)
			continue
		}
		w.paths = append(w.paths, abs)
	}

	return w, nil
}

// Ignore drops events for path, e.g. the run's own output file when it lives
// inside a watched directory.
func (w *Watcher) Ignore(path string) {
	abs, _ := filepath.Abs(path)
	w.ignore[abs] = true
}

// Start begins listening for file events. It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	defer w.fsw.Close()
	defer close(w.Events)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			abs, _ := filepath.Abs(ev.Name)
			if w.ignore[abs] {
				continue
			}
			// Forward relevant events (write, create, remove, rename).
			switch {
			case ev.Op&fsnotify.Write != 0,
				ev.Op&fsnotify.Create != 0,
				ev.Op&fsnotify.Remove != 0,
				ev.Op&fsnotify.Rename != 0:
				select {
				case w.Events <- Event{Path: abs, Op: ev.Op}:
				case <-ctx.Done():
					return
				}
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

// Paths returns the list of paths currently being watched.
func (w *Watcher) Paths() []string {
	return w.paths
}

// Debounce coalesces bursts of events: a batch is emitted once no new event
// has arrived for wait. The returned channel closes when in closes.
func Debounce(ctx context.Context, in <-chan Event, wait time.Duration) <-chan []Event {
	out := make(chan []Event)

	go func() {
		defer close(out)

		var (
			pending []Event
			timer   *time.Timer
			fire    <-chan time.Time
		)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-in:
				if !ok {
					return
				}
				pending = append(pending, ev)
				if timer == nil {
					timer = time.NewTimer(wait)
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(wait)
				}
				fire = timer.C
			case <-fire:
				batch := pending
				pending = nil
				fire = nil
				select {
				case out <- batch:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
