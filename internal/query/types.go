// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package query runs ad-hoc SELECT statements off the caller's goroutine and
// reports exactly one outcome per submission. It knows nothing about the
// terminal UI; callers marshal completions back onto their own loop.
package query

import (
	"context"

	"github.com/google/uuid"
)

// Database is the collaborator that actually talks to a database server.
// ExecuteSelect blocks until the statement finishes and opens and releases its
// own connection on every call.
type Database interface {
	ExecuteSelect(ctx context.Context, text string) ([]Row, error)
}

// DatabaseFunc adapts a plain function to the Database interface.
type DatabaseFunc func(ctx context.Context, text string) ([]Row, error)

// ExecuteSelect calls f.
func (f DatabaseFunc) ExecuteSelect(ctx context.Context, text string) ([]Row, error) {
	return f(ctx, text)
}

// Request is one submission of raw query text. It is never validated here.
type Request struct {
	ID   uuid.UUID
	Text string
}

// NewRequest wraps text in a Request with a fresh ID.
func NewRequest(text string) Request {
	return Request{ID: uuid.New(), Text: text}
}

// Field is a single named value within a Row.
type Field struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Row is an ordered record whose shape is decided by the query.
type Row []Field

// Get returns the value of the first field called name.
func (r Row) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Names returns the field names in order.
func (r Row) Names() []string {
	names := make([]string, len(r))
	for i, f := range r {
		names[i] = f.Name
	}
	return names
}

// unknownFailure replaces an empty failure message.
const unknownFailure = "unknown error"

// Result is the terminal outcome of a Request: either a row set or a failure
// message, never both. Build one with Success or Failure.
type Result struct {
	RequestID uuid.UUID

	rows    []Row
	message string
	failed  bool
}

// Success builds a successful Result.
func Success(id uuid.UUID, rows []Row) Result {
	if rows == nil {
		rows = []Row{}
	}
	return Result{RequestID: id, rows: rows}
}

// Failure builds a failed Result.
func Failure(id uuid.UUID, message string) Result {
	if message == "" {
		message = unknownFailure
	}
	return Result{RequestID: id, message: message, failed: true}
}

// IsSuccess reports whether r carries rows.
func (r Result) IsSuccess() bool { return !r.failed }

// Rows returns the row set of a successful result.
func (r Result) Rows() ([]Row, bool) {
	if r.failed {
		return nil, false
	}
	return r.rows, true
}

// Failure returns the message of a failed result.
func (r Result) Failure() (string, bool) {
	if !r.failed {
		return "", false
	}
	return r.message, true
}
