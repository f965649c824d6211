// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"database/sql"

	"sqlselect/cli/internal/dsn"
	"sqlselect/cli/internal/query"

	"github.com/pterm/pterm"
	_ "modernc.org/sqlite"
)

// SQLiteDriver is the database/sql driver name registered by modernc.org/sqlite.
const SQLiteDriver = "sqlite"

const sqliteTablesQuery = `SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%' ORDER BY name`

// Opener opens a database/sql handle. sql.Open satisfies it.
type Opener func(driverName, dataSourceName string) (*sql.DB, error)

// SQL runs statements through database/sql, opening a new handle per call.
type SQL struct {
	open        Opener
	driver      string
	dsn         string
	kind        dsn.Kind
	tablesQuery string
	readOnlyTx  bool
	logger      *pterm.Logger
}

// SQLOption configures a SQL backend.
type SQLOption func(*SQL)

// WithOpener replaces sql.Open.
func WithOpener(open Opener) SQLOption {
	return func(s *SQL) { s.open = open }
}

// WithReadOnlyTx wraps every statement in a read-only transaction.
func WithReadOnlyTx() SQLOption {
	return func(s *SQL) { s.readOnlyTx = true }
}

// WithTablesQuery sets the statement Tables runs; it must return one text column.
func WithTablesQuery(q string) SQLOption {
	return func(s *SQL) { s.tablesQuery = q }
}

// WithSQLLogger sets the debug logger.
func WithSQLLogger(l *pterm.Logger) SQLOption {
	return func(s *SQL) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSQL creates a database/sql backend.
func NewSQL(driverName, dataSourceName string, kind dsn.Kind, opts ...SQLOption) *SQL {
	s := &SQL{
		open:   sql.Open,
		driver: driverName,
		dsn:    dataSourceName,
		kind:   kind,
		logger: Options{}.logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSQLite creates a backend for a SQLite file. Read-only mode opens the file
// with mode=ro and runs each statement in a read-only transaction.
func NewSQLite(info *dsn.Info, opts Options) (*SQL, error) {
	sqlOpts := []SQLOption{
		WithTablesQuery(sqliteTablesQuery),
		WithSQLLogger(opts.Logger),
	}
	if opts.ReadOnly {
		sqlOpts = append(sqlOpts, WithReadOnlyTx())
		cp := *info
		cp.Params = make(map[string]string, len(info.Params)+1)
		for k, v := range info.Params {
			cp.Params[k] = v
		}
		cp.Params["mode"] = "ro"
		info = &cp
	}
	source, err := dsn.SQLiteResolver{}.Normalize(info)
	if err != nil {
		return nil, err
	}
	return NewSQL(SQLiteDriver, source, dsn.KindSQLite, sqlOpts...), nil
}

func (s *SQL) Kind() dsn.Kind { return s.kind }

// ExecuteSelect runs text and collects every row.
func (s *SQL) ExecuteSelect(ctx context.Context, text string) ([]query.Row, error) {
	db, err := s.open(s.driver, s.dsn)
	if err != nil {
		return nil, err
	}
	defer s.close(db)

	if !s.readOnlyTx {
		rows, err := db.QueryContext(ctx, text)
		if err != nil {
			return nil, err
		}
		return s.collect(rows)
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, text)
	if err != nil {
		return nil, err
	}
	out, err := s.collect(rows)
	if err != nil {
		return nil, err
	}
	return out, tx.Commit()
}

func (s *SQL) collect(rows *sql.Rows) ([]query.Row, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []query.Row{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, buildRow(cols, vals))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.logger.Debug("select finished", s.logger.Args("columns", len(cols), "rows", len(out)))
	return out, nil
}

// Tables runs the configured table listing query. Without one it returns nil.
func (s *SQL) Tables(ctx context.Context) ([]string, error) {
	if s.tablesQuery == "" {
		return nil, nil
	}
	db, err := s.open(s.driver, s.dsn)
	if err != nil {
		return nil, err
	}
	defer s.close(db)

	rows, err := db.QueryContext(ctx, s.tablesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Ping opens a handle and verifies the database answers.
func (s *SQL) Ping(ctx context.Context) error {
	db, err := s.open(s.driver, s.dsn)
	if err != nil {
		return err
	}
	defer s.close(db)
	return db.PingContext(ctx)
}

func (s *SQL) close(db *sql.DB) {
	if err := db.Close(); err != nil {
		s.logger.Debug("closing database failed", s.logger.Args("error", err.Error()))
	}
}
