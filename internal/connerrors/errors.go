// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package connerrors turns failures to reach a database into short,
// actionable troubleshooting text for the connect and dbinfo commands.
package connerrors

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pterm/pterm"
)

// Category groups connection failures that share the same advice.
type Category int

const (
	Other Category = iota
	Timeout
	DNS
	Refused
	TLS
	Auth
	UnknownDatabase
	MissingFile
)

func (c Category) String() string {
	switch c {
	case Timeout:
		return "timeout"
	case DNS:
		return "dns"
	case Refused:
		return "refused"
	case TLS:
		return "tls"
	case Auth:
		return "auth"
	case UnknownDatabase:
		return "unknown_database"
	case MissingFile:
		return "missing_file"
	default:
		return "other"
	}
}

// Classify inspects err, looking at typed errors first and message text last.
func Classify(err error) Category {
	if err == nil {
		return Other
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "28P01", "28000":
			return Auth
		case "3D000":
			return UnknownDatabase
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return DNS
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return Refused
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return Timeout
	case strings.Contains(msg, "no such host"):
		return DNS
	case strings.Contains(msg, "connection refused"):
		return Refused
	case strings.Contains(msg, "password authentication failed"):
		return Auth
	case strings.Contains(msg, "tls"), strings.Contains(msg, "ssl"), strings.Contains(msg, "certificate"):
		return TLS
	case strings.Contains(msg, "unable to open database file"):
		return MissingFile
	}
	return Other
}

// Hints returns the troubleshooting lines for c.
func Hints(c Category) []string {
	switch c {
	case Timeout:
		return []string{
			"The server took too long to answer.",
			"Check that the host is reachable from this network and not behind a VPN you are disconnected from.",
		}
	case DNS:
		return []string{
			"The host name could not be resolved.",
			"Check the spelling of the host in the connection string and your DNS settings.",
		}
	case Refused:
		return []string{
			"Nothing is listening on that host and port.",
			"Check that the server is running and the port is right (PostgreSQL defaults to 5432).",
		}
	case TLS:
		return []string{
			"A secure connection could not be established.",
			"Try sslmode=require or sslmode=disable for local servers, and check the system clock.",
		}
	case Auth:
		return []string{
			"The server rejected the user name or password.",
			"Passwords with special characters may be pasted as-is; they are escaped for you.",
		}
	case UnknownDatabase:
		return []string{
			"The server is reachable but the database does not exist.",
			"Check the database name after the last / in the connection string.",
		}
	case MissingFile:
		return []string{
			"The SQLite file does not exist or cannot be read.",
			"Read-only mode never creates files; check the path.",
		}
	default:
		return []string{"Check the connection string and try again."}
	}
}

// Present writes a headline for err followed by its hints.
func Present(w io.Writer, err error, action string) {
	if err == nil {
		return
	}
	cat := Classify(err)
	pterm.Fprintln(w, pterm.Red(fmt.Sprintf("Cannot connect while %s", action)))
	for _, h := range Hints(cat) {
		pterm.Fprintln(w, "  • "+h)
	}
	pterm.Fprintln(w)
}
