package server

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLoopRunsTasksInOrder(t *testing.T) {
	l := NewLoop(4)
	defer l.Close()

	var mu sync.Mutex
	var order []int
	for i := 0; i < 20; i++ {
		if err := l.Do(context.Background(), func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}); err != nil {
			t.Fatalf("Do: %v", err)
		}
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v", order)
		}
	}
}

func TestLoopRecoversPanics(t *testing.T) {
	l := NewLoop(1)
	defer l.Close()

	err := l.Do(context.Background(), func() { panic("boom") })
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("Do error = %v, want panic error", err)
	}
	if err := l.Do(context.Background(), func() {}); err != nil {
		t.Errorf("loop should keep running after a panic: %v", err)
	}
}

func TestLoopClosed(t *testing.T) {
	l := NewLoop(1)
	l.Close()
	l.Close()
	if err := l.Do(context.Background(), func() {}); !errors.Is(err, ErrLoopClosed) {
		t.Errorf("Do after Close = %v, want ErrLoopClosed", err)
	}
}

func TestLoopContextCancel(t *testing.T) {
	l := NewLoop(1)
	defer l.Close()

	release := make(chan struct{})
	go l.Do(context.Background(), func() { <-release })
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Do(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do = %v, want deadline exceeded", err)
	}
}
