// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sqlexec runs ad-hoc SELECT statements against the databases sqlselect
// supports. Every call opens its own connection and closes it before returning,
// so a Backend can be shared freely between goroutines.
//
// Two backends exist: Postgres (pgx) and SQL, a database/sql backend used for
// SQLite files. Both turn result sets into query.Row values with the column
// order preserved and driver-specific types normalised for display.
package sqlexec

import (
	"context"
	"database/sql/driver"

	"sqlselect/cli/internal/dsn"
	"sqlselect/cli/internal/errors"
	"sqlselect/cli/internal/logging"
	"sqlselect/cli/internal/query"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
)

// Backend is a database sqlselect can query.
type Backend interface {
	query.Database
	// Tables lists user tables, used for prompt completion.
	Tables(ctx context.Context) ([]string, error)
	// Ping opens a connection and verifies the server answers.
	Ping(ctx context.Context) error
	// Kind reports the engine behind the backend.
	Kind() dsn.Kind
}

// Options configures a Backend.
type Options struct {
	// ReadOnly runs every statement in a read-only transaction or connection
	ReadOnly bool
	// Logger receives debug output; nil discards it
	Logger *pterm.Logger
}

func (o Options) logger() *pterm.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logging.Discard()
}

// Open picks the backend for rawDSN.
func Open(rawDSN string, opts Options) (Backend, error) {
	info, err := dsn.ParseInfo(rawDSN)
	if err != nil {
		return nil, errors.Wrap(errors.UnsupportedDatabase, "cannot use this connection string", err)
	}

	switch info.Kind {
	case dsn.KindPostgres:
		return NewPostgres(rawDSN, opts), nil
	case dsn.KindSQLite:
		return NewSQLite(info, opts)
	default:
		return nil, errors.New(errors.UnsupportedDatabase, "unsupported database: "+string(info.Kind))
	}
}

// normalizeValue converts driver values into something the table renderer can
// print as-is.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case [16]byte:
		return uuid.UUID(x).String()
	case uuid.UUID:
		return x.String()
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return v
		}
		return dv
	default:
		return v
	}
}

func buildRow(cols []string, vals []any) query.Row {
	row := make(query.Row, len(cols))
	for i, col := range cols {
		row[i] = query.Field{Name: col, Value: normalizeValue(vals[i])}
	}
	return row
}
