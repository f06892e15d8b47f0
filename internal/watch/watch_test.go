package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func startWatcher(t *testing.T, files ...string) (*Watcher, chan Change) {
	t.Helper()
	w := New(Config{Files: files, Interval: 20 * time.Millisecond})
	changes := make(chan Change, 10)
	w.OnChange(func(c Change) { changes <- c })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Start(ctx)

	deadline := time.Now().Add(time.Second)
	for !w.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("watcher did not start")
		}
		time.Sleep(5 * time.Millisecond)
	}
	// Let the initial snapshot settle before touching files.
	time.Sleep(50 * time.Millisecond)
	return w, changes
}

func expect(t *testing.T, changes chan Change, want Change) {
	t.Helper()
	select {
	case got := <-changes:
		if got != want {
			t.Errorf("change = %+v, want %+v", got, want)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for %v of %s", want.Op, want.Path)
	}
}

func TestWatcherLifecycle(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "data.yaml")
	_, changes := startWatcher(t, file)

	if err := os.WriteFile(file, []byte("a: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	expect(t, changes, Change{Path: file, Op: Created})

	if err := os.WriteFile(file, []byte("a: 12\n"), 0644); err != nil {
		t.Fatal(err)
	}
	expect(t, changes, Change{Path: file, Op: Modified})

	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}
	expect(t, changes, Change{Path: file, Op: Removed})
}

func TestWatcherStop(t *testing.T) {
	w, _ := startWatcher(t)
	w.Stop()
	if w.IsRunning() {
		t.Error("watcher still running after Stop")
	}
	w.Stop()
}

func TestOpString(t *testing.T) {
	tests := map[Op]string{Modified: "modified", Created: "created", Removed: "removed", Op(9): "unknown"}
	for op, want := range tests {
		if got := op.String(); got != want {
			t.Errorf("Op(%d).String() = %q, want %q", op, got, want)
		}
	}
}
