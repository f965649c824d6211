// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package screen

// EventType enumerates the transitions a controller reports to observers.
type EventType string

const (
	// EventSubmitted is emitted when an idle controller accepts a query.
	EventSubmitted EventType = "submitted"
	// EventDropped is emitted when a submission is swallowed.
	EventDropped EventType = "dropped"
	// EventSucceeded is emitted after rows were displayed.
	EventSucceeded EventType = "succeeded"
	// EventFailed is emitted after the error surface was shown.
	EventFailed EventType = "failed"
	// EventAcknowledged is emitted when the user dismissed the error surface.
	EventAcknowledged EventType = "acknowledged"
)

// Event describes one transition. Observers receive it on the presentation
// loop, right after State was updated.
type Event struct {
	Type EventType
	// Text is the query text for submitted and dropped events
	Text string
	// Reason explains a drop: "busy" or "modal"
	Reason string
	// RowCount is set for succeeded events
	RowCount int
	// State is the session state after the transition
	State SessionState
}

// Observer is notified of every controller transition.
type Observer func(Event)
