// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"fmt"
	"net"
)

// Kind identifies the database engine a DSN points at.
type Kind string

const (
	KindPostgres Kind = "postgres"
	KindSQLite   Kind = "sqlite"
	KindUnknown  Kind = "unknown"
)

// Info is a parsed connection string.
type Info struct {
	Kind     Kind
	Host     string
	Port     string
	User     string
	Password string
	// Database is the database name, or the file path for SQLite
	Database string
	Params   map[string]string
	Original string
}

// Target describes where Info points without exposing credentials.
func (i *Info) Target() string {
	if i.Kind == KindSQLite {
		return i.Database
	}
	return net.JoinHostPort(i.Host, i.Port) + "/" + i.Database
}

// Resolver parses and normalizes DSNs of one Kind.
type Resolver interface {
	Parse(dsn string) (*Info, error)
	Normalize(info *Info) (string, error)
}

// ParseError reports a malformed DSN together with a hint on how to fix it.
type ParseError struct {
	DSN    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid DSN format: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid DSN format: %s", e.Reason)
}

// NewParseError creates a new ParseError
func NewParseError(dsn, reason, hint string) *ParseError {
	return &ParseError{DSN: dsn, Reason: reason, Hint: hint}
}
