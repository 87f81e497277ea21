// Package watch polls files for changes.
//
// It is used by the CLI to re-run a script whenever the script or the data
// it reads changes on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

// Op is the kind of change observed.
type Op int

const (
	// OpWrite indicates the file was modified.
	OpWrite Op = iota

	// OpCreate indicates the file appeared.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove
)

// String returns the operation name.
func (op Op) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Event describes a change to a watched file.
type Event struct {
	// Path is the absolute path of the file.
	Path string
	Op   Op
	Time time.Time
}

// fileState is what a poll compares. A zero modTime means the file did
// not exist at the last poll.
type fileState struct {
	modTime time.Time
	size    int64
}

// Watcher polls a set of files and reports changes.
type Watcher struct {
	mu    sync.Mutex
	files map[string]fileState

	interval time.Duration
	debounce time.Duration
	pending  map[string]Event
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithDebounce sets how long a file must stay unchanged before its event
// is delivered. Zero delivers every change at the poll that sees it.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher with no files.
func New(opts ...Option) *Watcher {
	w := &Watcher{
		files:    make(map[string]fileState),
		interval: 250 * time.Millisecond,
		debounce: 100 * time.Millisecond,
		pending:  make(map[string]Event),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Add starts watching path. A missing file is watched for creation.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "watch: resolving %s", path)
	}
	st, err := stat(abs)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[abs] = st
	return nil
}

// Files returns the watched paths.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	return files
}

// Run polls until ctx is done, calling fn for each change from the
// polling goroutine. It returns nil when ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, fn func(Event)) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			for _, ev := range w.poll(now) {
				fn(ev)
			}
		}
	}
}

// poll checks every file and returns the events ready for delivery.
func (w *Watcher) poll(now time.Time) []Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path, last := range w.files {
		cur, err := stat(path)
		if err != nil {
			continue
		}
		if cur.modTime.Equal(last.modTime) && cur.size == last.size {
			continue
		}
		w.files[path] = cur

		op := OpWrite
		switch {
		case cur.modTime.IsZero():
			op = OpRemove
		case last.modTime.IsZero():
			op = OpCreate
		}
		w.queue(Event{Path: path, Op: op, Time: now})
	}

	var ready []Event
	for path, ev := range w.pending {
		if now.Sub(ev.Time) >= w.debounce {
			ready = append(ready, ev)
			delete(w.pending, path)
		}
	}
	return ready
}

// queue coalesces ev with a pending event for the same file: a removal
// wins, a creation survives later writes, and the time is always
// refreshed.
func (w *Watcher) queue(ev Event) {
	if prev, ok := w.pending[ev.Path]; ok && ev.Op == OpWrite {
		ev.Op = prev.Op
	}
	w.pending[ev.Path] = ev
}

func stat(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileState{}, nil
		}
		return fileState{}, errors.Wrapf(err, "watch: stat %s", path)
	}
	return fileState{modTime: info.ModTime(), size: info.Size()}, nil
}
