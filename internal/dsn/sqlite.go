// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"
)

// SQLiteResolver handles sqlite://path, sqlite:path, file:path and bare paths
// ending in .db, .sqlite or .sqlite3.
type SQLiteResolver struct{}

// Parse extracts the database file and its query parameters.
func (SQLiteResolver) Parse(dsn string) (*Info, error) {
	rest := strings.TrimSpace(dsn)
	lower := strings.ToLower(rest)
	for _, prefix := range []string{"sqlite://", "sqlite:", "file:"} {
		if strings.HasPrefix(lower, prefix) {
			rest = rest[len(prefix):]
			break
		}
	}

	path, query, _ := strings.Cut(rest, "?")
	if path == "" {
		return nil, NewParseError(dsn, "missing database file", "use sqlite:///absolute/path.db or sqlite://relative/path.db")
	}

	info := &Info{Kind: KindSQLite, Database: path, Params: map[string]string{}, Original: dsn}
	for _, p := range strings.Split(query, "&") {
		if k, v, ok := strings.Cut(p, "="); ok {
			info.Params[k] = v
		}
	}
	return info, nil
}

// Normalize renders info as a file: URI understood by the sqlite driver.
func (SQLiteResolver) Normalize(info *Info) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	s := "file:" + info.Database
	if q := encodeParams(info.Params); q != "" {
		s += "?" + q
	}
	return s, nil
}
