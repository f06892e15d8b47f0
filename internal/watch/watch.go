package watch

import (
	"context"
	"os"
	"sync"
	"time"
)

// Op describes what happened to a watched file.
type Op int

const (
	Modified Op = iota
	Created
	Removed
)

// String returns the lowercase name of the operation.
func (o Op) String() string {
	switch o {
	case Modified:
		return "modified"
	case Created:
		return "created"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Change is a detected change to one watched file.
type Change struct {
	Path string
	Op   Op
}

// Config configures a Watcher.
type Config struct {
	// Files are the paths to poll. Missing files are watched for creation.
	Files []string

	// Interval is the polling period (default: 250ms).
	Interval time.Duration
}

type stamp struct {
	mod    time.Time
	size   int64
	exists bool
}

// Watcher polls a fixed set of files and reports changes to their
// modification time or size.
type Watcher struct {
	config   Config
	mu       sync.Mutex
	onChange func(Change)
	running  bool
	stopCh   chan struct{}
	stamps   map[string]stamp
}

// New creates a watcher. It does nothing until Start.
func New(config Config) *Watcher {
	if config.Interval <= 0 {
		config.Interval = 250 * time.Millisecond
	}
	return &Watcher{
		config: config,
		stamps: make(map[string]stamp, len(config.Files)),
	}
}

// OnChange sets the callback for file changes. It is called from the
// goroutine running Start.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start records the current state of every file and polls until ctx is
// cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stop := w.stopCh
	for _, p := range w.config.Files {
		w.stamps[p] = stat(p)
	}
	w.mu.Unlock()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			w.poll()
		}
	}
}

// Stop stops a running watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning reports whether Start is polling.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) poll() {
	var changes []Change

	w.mu.Lock()
	callback := w.onChange
	for _, p := range w.config.Files {
		prev, next := w.stamps[p], stat(p)
		w.stamps[p] = next
		switch {
		case !prev.exists && next.exists:
			changes = append(changes, Change{Path: p, Op: Created})
		case prev.exists && !next.exists:
			changes = append(changes, Change{Path: p, Op: Removed})
		case next.exists && (!next.mod.Equal(prev.mod) || next.size != prev.size):
			changes = append(changes, Change{Path: p, Op: Modified})
		}
	}
	w.mu.Unlock()

	if callback == nil {
		return
	}
	for _, c := range changes {
		callback(c)
	}
}

func stat(p string) stamp {
	info, err := os.Stat(p)
	if err != nil {
		return stamp{}
	}
	return stamp{mod: info.ModTime(), size: info.Size(), exists: true}
}
