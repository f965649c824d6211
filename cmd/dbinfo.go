// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"io"
	"net/url"
	"strings"

	"sqlselect/cli/internal/dsn"
	"sqlselect/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var dbinfoDSN string

// dbinfoCmd shows which database sqlselect would connect to, with the
// password masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show current database connection string",
	Long: `The dbinfo command displays the connection string sqlselect would use and where
it came from (flag, environment, config file or OS keychain). The password is
replaced with *** so the output is safe to share.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printDBInfo(cmd.OutOrStdout(), dbinfoDSN)
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
	dbinfoCmd.Flags().StringVar(&dbinfoDSN, "dsn", "", "Connection string to inspect instead of the configured one")
}

func printDBInfo(w io.Writer, flagDSN string) error {
	raw, source, err := resolveDSN(flagDSN, cfg, keychainDSN)
	if err != nil {
		pterm.Fprintln(w, "⚠️  No database connection configured")
		pterm.Fprintln(w, "   Please run: sqlselect connect")
		return nil
	}

	body := maskPassword(raw)
	if info, err := dsn.ParseInfo(raw); err == nil {
		body += "\n\nengine: " + string(info.Kind) + "\ntarget: " + info.Target()
	}

	pterm.Fprintln(w, "Using DSN from "+source)
	pterm.Fprintln(w)
	pterm.Fprintln(w, pterm.DefaultBox.
		WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Database Connection")).
		WithPadding(1).
		Sprint(body))
	pterm.Fprintln(w)
	pterm.Fprintln(w, "To update this connection, run: sqlselect connect")
	return nil
}

// maskPassword replaces the password in a URL-style DSN with ***. Strings
// that do not parse as URLs go through the log masker instead.
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return logging.Mask(raw)
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	user := url.User(u.User.Username()).String()
	u.User = nil
	return strings.Replace(u.String(), "://", "://"+user+":***@", 1)
}
