// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package screen

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// ErrLoopStarted is returned when Run is called twice on the same Loop.
var ErrLoopStarted = errors.New("screen: loop already started")

// defaultLoopBuffer bounds how many posted closures may wait before Post blocks.
const defaultLoopBuffer = 64

// Loop is the presentation goroutine of a screen. Every closure handed to Post
// runs on the single goroutine executing Run, in posting order, so state owned
// by the screen is never touched concurrently.
type Loop struct {
	tasks    chan func()
	stopping chan struct{}
	done     chan struct{}
	started  atomic.Bool
	gid      atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// NewLoop creates a Loop that has not started yet. Closures posted before Run
// are buffered and executed once it starts.
func NewLoop() *Loop {
	return &Loop{
		tasks:    make(chan func(), defaultLoopBuffer),
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run executes posted closures until ctx is done. Closures that Post accepted
// but that had not run yet are executed before Run returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrLoopStarted
	}
	l.gid.Store(goid.Get())
	defer l.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		}
	}
}

// stop rejects further posts, then runs what is still queued.
func (l *Loop) stop() {
	close(l.stopping)
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	for {
		select {
		case fn := <-l.tasks:
			fn()
		default:
			close(l.done)
			return
		}
	}
}

// Post schedules fn on the loop. It reports whether fn was accepted: an
// accepted closure runs before Run returns, a rejected one never runs.
func (l *Loop) Post(fn func()) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return false
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.stopping:
		return false
	}
}

// OnLoop reports whether the caller is running on the loop goroutine.
func (l *Loop) OnLoop() bool {
	id := l.gid.Load()
	return id != 0 && id == goid.Get()
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }
