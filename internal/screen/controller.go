// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package screen implements the interactive SELECT screen: a busy/idle state
// machine that accepts one query at a time, hands it to a query.Executor, and
// applies the outcome to the presentation surface from a single loop goroutine.
//
// All state lives on the Loop. Public Controller methods only post closures to
// it, so they are safe to call from any goroutine; completions coming back from
// the executor's goroutine are posted the same way.
package screen

import (
	"context"
	"errors"

	"sqlselect/cli/internal/logging"
	"sqlselect/cli/internal/query"

	"github.com/pterm/pterm"
)

// ErrClosed is returned by Snapshot once the controller's loop has stopped.
var ErrClosed = errors.New("screen: controller closed")

// Submitter starts a query and reports its outcome exactly once.
// *query.Executor satisfies it.
type Submitter interface {
	Submit(ctx context.Context, req query.Request, onComplete func(query.Result)) *query.Task
}

// Presenter is the surface the controller drives. Every method is called on
// the presentation loop.
type Presenter interface {
	// ShowProgress shows the non-dismissible busy indicator.
	ShowProgress()
	// DismissProgress hides the busy indicator.
	DismissProgress()
	// ShowRows replaces the displayed row collection.
	ShowRows(rows []query.Row)
	// ShowError presents the modal error surface with message.
	ShowError(message string)
	// DismissError hides the modal error surface.
	DismissError()
}

// Navigator leaves the screen.
type Navigator interface {
	ReturnToMain()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

// ReturnToMain calls f.
func (f NavigatorFunc) ReturnToMain() { f() }

// Controller owns the SELECT screen state machine.
type Controller struct {
	loop      *Loop
	exec      Submitter
	view      Presenter
	nav       Navigator
	logger    *pterm.Logger
	observers []Observer

	// Everything below is confined to the loop goroutine.
	ctx           context.Context
	state         SessionState
	inflight      *query.Task
	displayed     []query.Row
	progressShown bool
	errorShown    bool
	idleWaiters   []chan struct{}
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithObserver registers fn to be called after every transition.
func WithObserver(fn Observer) ControllerOption {
	return func(c *Controller) { c.observers = append(c.observers, fn) }
}

// WithControllerLogger sets the logger for dropped submissions and anomalies.
func WithControllerLogger(l *pterm.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLoop makes the controller run on loop instead of a private one.
func WithLoop(loop *Loop) ControllerOption {
	return func(c *Controller) {
		if loop != nil {
			c.loop = loop
		}
	}
}

// NewController wires a controller to its executor, presenter and navigator.
func NewController(exec Submitter, view Presenter, nav Navigator, opts ...ControllerOption) *Controller {
	c := &Controller{
		loop:   NewLoop(),
		exec:   exec,
		view:   view,
		nav:    nav,
		logger: logging.Discard(),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run drives the presentation loop until ctx is done. Executions started by
// the controller inherit ctx and are cancelled when Run returns; a spinner
// still showing at that point is dismissed.
func (c *Controller) Run(ctx context.Context) error {
	c.ctx = ctx
	defer c.shutdown()
	return c.loop.Run(ctx)
}

// Drain blocks until no query is outstanding. It returns ErrClosed when the
// loop stops first.
func (c *Controller) Drain(ctx context.Context) error {
	idle := make(chan struct{})
	if !c.loop.Post(func() {
		if !c.state.Busy {
			close(idle)
			return
		}
		c.idleWaiters = append(c.idleWaiters, idle)
	}) {
		return ErrClosed
	}
	select {
	case <-idle:
		return nil
	case <-c.loop.Done():
		select {
		case <-idle:
			return nil
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit asks the controller to run text. It is dropped silently when a query
// is already outstanding or the error surface is up.
func (c *Controller) Submit(text string) {
	c.post(func() { c.submit(text) })
}

// Acknowledge dismisses the error surface and leaves the screen.
func (c *Controller) Acknowledge() {
	c.post(c.acknowledge)
}

// Return leaves the screen. With the error surface up it behaves like
// Acknowledge.
func (c *Controller) Return() {
	c.post(func() {
		if c.errorShown {
			c.acknowledge()
			return
		}
		if c.nav != nil {
			c.nav.ReturnToMain()
		}
	})
}

// HandleInput routes one line typed at the prompt: it acknowledges a shown
// error and submits otherwise.
func (c *Controller) HandleInput(text string) {
	c.post(func() {
		if c.errorShown {
			c.acknowledge()
			return
		}
		c.submit(text)
	})
}

// Snapshot returns a copy of the screen state, read on the loop.
func (c *Controller) Snapshot(ctx context.Context) (Snapshot, error) {
	ch := make(chan Snapshot, 1)
	if !c.loop.Post(func() { ch <- c.snapshot() }) {
		return Snapshot{}, ErrClosed
	}
	select {
	case s := <-ch:
		return s, nil
	case <-c.loop.Done():
		return Snapshot{}, ErrClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (c *Controller) post(fn func()) {
	if !c.loop.Post(fn) {
		c.logger.Debug("screen closed, input ignored")
	}
}

func (c *Controller) submit(text string) {
	if c.state.Busy {
		c.logger.Debug("query dropped", c.logger.Args("reason", "busy"))
		c.emit(Event{Type: EventDropped, Text: text, Reason: "busy"})
		return
	}
	if c.errorShown {
		c.logger.Debug("query dropped", c.logger.Args("reason", "modal"))
		c.emit(Event{Type: EventDropped, Text: text, Reason: "modal"})
		return
	}

	req := query.NewRequest(text)
	c.state.Busy = true
	c.progressShown = true
	c.view.ShowProgress()
	c.inflight = c.exec.Submit(c.ctx, req, c.deliver)
	c.emit(Event{Type: EventSubmitted, Text: text})
}

// deliver runs on the executor's goroutine and must not touch controller
// state; it only hands the result to the loop.
func (c *Controller) deliver(res query.Result) {
	if !c.loop.Post(func() { c.complete(res) }) {
		c.logger.Debug("screen closed before result arrived", c.logger.Args("request", res.RequestID.String()))
	}
}

func (c *Controller) complete(res query.Result) {
	if !c.state.Busy || c.inflight == nil || c.inflight.ID() != res.RequestID {
		c.logger.Warn("stray query result ignored", c.logger.Args("request", res.RequestID.String()))
		return
	}
	c.inflight = nil

	c.progressShown = false
	c.view.DismissProgress()

	if rows, ok := res.Rows(); ok {
		c.displayed = rows
		c.view.ShowRows(rows)
		c.settle()
		c.emit(Event{Type: EventSucceeded, RowCount: len(rows)})
		return
	}

	msg, _ := res.Failure()
	c.state.LastError = msg
	c.state.HasError = true
	c.errorShown = true
	c.view.ShowError(msg)
	c.settle()
	c.emit(Event{Type: EventFailed})
}

// settle clears Busy and wakes Drain callers.
func (c *Controller) settle() {
	c.state.Busy = false
	for _, ch := range c.idleWaiters {
		close(ch)
	}
	c.idleWaiters = nil
}

// shutdown runs on the loop goroutine after the loop has stopped.
func (c *Controller) shutdown() {
	if c.inflight != nil {
		c.inflight.Cancel()
		c.inflight = nil
	}
	if c.progressShown {
		c.progressShown = false
		c.view.DismissProgress()
	}
	c.settle()
}

func (c *Controller) acknowledge() {
	if !c.errorShown {
		return
	}
	c.errorShown = false
	c.view.DismissError()
	c.state.LastError = ""
	c.state.HasError = false
	c.state.Busy = false
	c.displayed = nil
	c.emit(Event{Type: EventAcknowledged})
	if c.nav != nil {
		c.nav.ReturnToMain()
	}
}

func (c *Controller) emit(ev Event) {
	ev.State = c.state
	for _, fn := range c.observers {
		fn(ev)
	}
}

func (c *Controller) snapshot() Snapshot {
	rows := make([]query.Row, len(c.displayed))
	copy(rows, c.displayed)
	return Snapshot{
		State:         c.state,
		Rows:          rows,
		ProgressShown: c.progressShown,
		ErrorShown:    c.errorShown,
	}
}
