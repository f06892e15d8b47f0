package server

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
)

// ErrLoopClosed is returned by Do after Close.
var ErrLoopClosed = errors.New("server: loop closed")

type task struct {
	fn   func()
	done chan error
}

// Loop executes submitted tasks one at a time, in submission order, on a
// single goroutine. Every access to the app and its document goes through it.
type Loop struct {
	tasks  chan task
	quit   chan struct{}
	exited chan struct{}
	once   sync.Once
}

// NewLoop starts a loop whose queue holds up to buffer pending tasks.
func NewLoop(buffer int) *Loop {
	l := &Loop{
		tasks:  make(chan task, buffer),
		quit:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.exited)
	for {
		select {
		case <-l.quit:
			return
		case t := <-l.tasks:
			t.done <- l.exec(t.fn)
		}
	}
}

func (l *Loop) exec(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("server: task panicked: %v\n%s", r, debug.Stack())
		}
	}()
	fn()
	return nil
}

// Do runs fn on the loop and waits for it to finish. It returns early with
// ctx's error if ctx is done first; fn may still run later in that case.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	t := task{fn: fn, done: make(chan error, 1)}
	select {
	case <-l.quit:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	case l.tasks <- t:
	}
	select {
	case err := <-t.done:
		return err
	case <-l.exited:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the loop after the running task, if any. Pending tasks are
// abandoned.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.quit) })
	<-l.exited
}
