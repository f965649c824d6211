// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package screen

import "sqlselect/cli/internal/query"

// Phase is the controller's position in the busy/idle state machine.
type Phase int

const (
	// Idle accepts a new submission.
	Idle Phase = iota
	// Busy has exactly one query outstanding.
	Busy
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Busy:
		return "busy"
	default:
		return "unknown"
	}
}

// SessionState is the screen state the controller owns. It is only read or
// written on the presentation loop.
type SessionState struct {
	// Busy is true from submission until its completion has been processed
	Busy bool
	// LastError holds the message of the most recent failure until acknowledged
	LastError string
	// HasError distinguishes an empty LastError from no error at all
	HasError bool
}

// Phase derives the state machine position from Busy.
func (s SessionState) Phase() Phase {
	if s.Busy {
		return Busy
	}
	return Idle
}

// Snapshot is a copy of everything the screen currently shows.
type Snapshot struct {
	State SessionState
	// Rows is the displayed row collection
	Rows []query.Row
	// ProgressShown reports whether the spinner is visible
	ProgressShown bool
	// ErrorShown reports whether the modal error surface is visible
	ErrorShown bool
}
