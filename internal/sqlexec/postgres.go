// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"time"

	"sqlselect/cli/internal/dsn"
	"sqlselect/cli/internal/query"

	"github.com/jackc/pgx/v5"
	"github.com/pterm/pterm"
)

const closeTimeout = 5 * time.Second

// tablesQuery lists user tables and views, leaving public ones unqualified.
const tablesQuery = `
	SELECT CASE WHEN table_schema = 'public' THEN table_name ELSE table_schema || '.' || table_name END
	FROM information_schema.tables
	WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
	ORDER BY 1`

// Postgres runs statements over a fresh pgx connection per call.
type Postgres struct {
	dsn      string
	readOnly bool
	logger   *pterm.Logger
}

// NewPostgres creates a Postgres backend for connString.
func NewPostgres(connString string, opts Options) *Postgres {
	return &Postgres{dsn: connString, readOnly: opts.ReadOnly, logger: opts.logger()}
}

func (p *Postgres) Kind() dsn.Kind { return dsn.KindPostgres }

// pgQuerier is satisfied by both *pgx.Conn and pgx.Tx.
type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ExecuteSelect runs text and collects every row. Database errors are returned
// unchanged so their message reaches the user.
func (p *Postgres) ExecuteSelect(ctx context.Context, text string) ([]query.Row, error) {
	conn, err := pgx.Connect(ctx, p.dsn)
	if err != nil {
		return nil, err
	}
	defer p.close(conn)

	if !p.readOnly {
		return p.collect(ctx, conn, text)
	}

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := p.collect(ctx, tx, text)
	if err != nil {
		return nil, err
	}
	return rows, tx.Commit(ctx)
}

func (p *Postgres) collect(ctx context.Context, q pgQuerier, text string) ([]query.Row, error) {
	rows, err := q.Query(ctx, text, pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}

	out := []query.Row{}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		out = append(out, buildRow(cols, vals))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	p.logger.Debug("select finished", p.logger.Args("columns", len(cols), "rows", len(out)))
	return out, nil
}

// Tables lists user tables and views.
func (p *Postgres) Tables(ctx context.Context) ([]string, error) {
	conn, err := pgx.Connect(ctx, p.dsn)
	if err != nil {
		return nil, err
	}
	defer p.close(conn)

	rows, err := conn.Query(ctx, tablesQuery)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Ping connects and round-trips to the server.
func (p *Postgres) Ping(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, p.dsn)
	if err != nil {
		return err
	}
	defer p.close(conn)
	return conn.Ping(ctx)
}

func (p *Postgres) close(conn *pgx.Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := conn.Close(ctx); err != nil {
		p.logger.Debug("closing connection failed", p.logger.Args("error", err.Error()))
	}
}
