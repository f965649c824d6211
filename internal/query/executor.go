// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package query

import (
	"context"
	"fmt"
	"io"
	"time"

	"sqlselect/cli/internal/logging"

	"github.com/pterm/pterm"
)

// Executor runs each submitted Request on its own goroutine against a
// Database. It holds no per-request state.
type Executor struct {
	db      Database
	timeout time.Duration
	logger  *pterm.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithTimeout bounds every execution. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) { e.timeout = d }
}

// WithLogger sets the logger used for execution traces.
func WithLogger(l *pterm.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExecutor creates an Executor over db.
func NewExecutor(db Database, opts ...Option) *Executor {
	e := &Executor{
		db:     db,
		logger: pterm.DefaultLogger.WithWriter(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit starts executing req and returns immediately. onComplete is called
// exactly once, from the background goroutine, with the outcome. It may be nil
// when the caller only wants the returned Task.
func (e *Executor) Submit(ctx context.Context, req Request, onComplete func(Result)) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := newTask(req.ID, cancel)

	go func() {
		defer cancel()
		res := e.execute(ctx, req)
		t.finish(res)
		if onComplete != nil {
			onComplete(res)
		}
	}()
	return t
}

// execute converts every way the collaborator can fail, panics included, into
// a Failure.
func (e *Executor) execute(ctx context.Context, req Request) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = Failure(req.ID, logging.Mask(fmt.Sprintf("panic: %v", r)))
		}
		e.logger.Debug("query finished", e.logger.Args(
			"request", req.ID.String(),
			"success", res.IsSuccess(),
			"elapsed", time.Since(start).Round(time.Millisecond).String(),
		))
	}()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	e.logger.Debug("query started", e.logger.Args("request", req.ID.String(), "length", len(req.Text)))
	rows, err := e.db.ExecuteSelect(ctx, req.Text)
	if err != nil {
		return Failure(req.ID, describe(err))
	}

	out := make([]Row, 0, len(rows))
	out = append(out, rows...)
	return Success(req.ID, out)
}

// describe renders err as the single message shown to the user.
func describe(err error) string {
	msg := err.Error()
	if msg == "" {
		msg = fmt.Sprintf("%T", err)
	}
	return logging.Mask(msg)
}
