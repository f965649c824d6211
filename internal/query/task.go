// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package query

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Task is the handle of one running submission. Cancel stops the underlying
// database call through its context; the outcome is still reported.
type Task struct {
	id     uuid.UUID
	cancel context.CancelFunc

	once   sync.Once
	done   chan struct{}
	result Result
}

func newTask(id uuid.UUID, cancel context.CancelFunc) *Task {
	return &Task{id: id, cancel: cancel, done: make(chan struct{})}
}

// ID returns the request ID the task is executing.
func (t *Task) ID() uuid.UUID { return t.id }

// Cancel asks the running execution to stop.
func (t *Task) Cancel() { t.cancel() }

// Done is closed once the outcome is known.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		return t.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (t *Task) finish(res Result) {
	t.once.Do(func() {
		t.result = res
		close(t.done)
	})
}
