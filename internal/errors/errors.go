// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Every error sqlselect shows outside the query screen carries a Kind, so the
// command layer can pick a hint without parsing messages.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// ConnectFailed indicates the database could not be reached or refused the login.
	ConnectFailed Kind = "connect_failed"
	// QueryFailed indicates the database rejected a statement.
	QueryFailed Kind = "query_failed"
	// ConfigInvalid indicates the configuration file or flags could not be loaded.
	ConfigInvalid Kind = "config_invalid"
	// KeychainUnavailable indicates the OS credential store could not be used.
	KeychainUnavailable Kind = "keychain_unavailable"
	// UnsupportedDatabase indicates a DSN for an engine sqlselect cannot talk to.
	UnsupportedDatabase Kind = "unsupported_database"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the Kind of the first *E in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
