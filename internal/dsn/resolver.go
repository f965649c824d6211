// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn recognises and normalizes the connection strings sqlselect
// accepts: PostgreSQL URLs and SQLite database files.
package dsn

import (
	"path/filepath"
	"strings"
)

var resolvers = map[Kind]Resolver{
	KindPostgres: PostgresResolver{},
	KindSQLite:   SQLiteResolver{},
}

// Detect reports which engine dsn is meant for.
func Detect(dsn string) Kind {
	lower := strings.ToLower(strings.TrimSpace(dsn))

	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return KindPostgres
	case strings.HasPrefix(lower, "sqlite://"), strings.HasPrefix(lower, "sqlite:"), strings.HasPrefix(lower, "file:"):
		return KindSQLite
	}

	switch strings.ToLower(filepath.Ext(stripQuery(lower))) {
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	}
	return KindUnknown
}

func resolverFor(dsn string) (Resolver, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}
	r, ok := resolvers[Detect(dsn)]
	if !ok {
		return nil, NewParseError(dsn, "unknown database type", "use postgres://, postgresql:// or sqlite://path/to/file.db")
	}
	return r, nil
}

// Parse parses dsn and returns its normalized form.
func Parse(dsn string) (string, error) {
	r, err := resolverFor(dsn)
	if err != nil {
		return "", err
	}
	info, err := r.Parse(dsn)
	if err != nil {
		return "", err
	}
	return r.Normalize(info)
}

// ParseInfo parses dsn into its parts.
func ParseInfo(dsn string) (*Info, error) {
	r, err := resolverFor(dsn)
	if err != nil {
		return nil, err
	}
	return r.Parse(dsn)
}

// Validate reports whether dsn can be parsed.
func Validate(dsn string) error {
	_, err := ParseInfo(dsn)
	return err
}

func stripQuery(s string) string {
	if i := strings.IndexByte(s, '?'); i >= 0 {
		return s[:i]
	}
	return s
}
