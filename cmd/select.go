// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"time"

	"sqlselect/cli/internal/terminal"

	"github.com/spf13/cobra"
)

var selectDSN string

// selectCmd opens the query screen directly.
var selectCmd = &cobra.Command{
	Use:     "select",
	Aliases: []string{"query"},
	Short:   "Open the SELECT query screen",
	Long: `The select command opens the query screen. Each line you enter is sent to the
database as-is and the returned rows are printed as a table. While a query is
running the screen is busy and further input is ignored. A failed query shows an
Exception box; pressing Enter acknowledges it and returns to the main menu.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := sessionOptions{dsn: selectDSN}
		quit, err := runSelectScreen(cmd.Context(), cmd.OutOrStdout(), opts)
		if err != nil || quit || !terminal.IsInteractive() {
			return err
		}
		return runMainMenu(cmd, opts)
	},
}

func init() {
	rootCmd.AddCommand(selectCmd)
	selectCmd.Flags().StringVar(&selectDSN, "dsn", "", "Connection string (overrides env, config and keychain)")
	selectCmd.Flags().Bool("read-only", true, "Run queries in a read-only transaction")
	selectCmd.Flags().Duration("timeout", time.Duration(0), "Abort a query after this long (0 waits forever)")
}
