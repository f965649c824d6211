// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"sqlselect/cli/internal/logging"
	"sqlselect/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// Main menu entries.
const (
	menuRunQuery = "Run SELECT query"
	menuDBInfo   = "Show database connection"
	menuExit     = "Exit"
)

// runMainMenu shows the main menu until the user exits. Leaving the query
// screen by acknowledging an error or typing .return lands back here.
func runMainMenu(cmd *cobra.Command, opts sessionOptions) error {
	out := cmd.OutOrStdout()
	if !terminal.IsInteractive() {
		_, err := runSelectScreen(cmd.Context(), out, opts)
		return err
	}

	for {
		choice, err := pterm.DefaultInteractiveSelect.
			WithOptions([]string{menuRunQuery, menuDBInfo, menuExit}).
			WithDefaultText("sqlselect").
			Show()
		if err != nil {
			return err
		}

		switch choice {
		case menuRunQuery:
			quit, err := runSelectScreen(cmd.Context(), out, opts)
			if err != nil {
				pterm.Error.WithWriter(out).Println(logging.PresentError("", err))
				continue
			}
			if quit {
				return nil
			}
		case menuDBInfo:
			if err := printDBInfo(out, opts.dsn); err != nil {
				pterm.Error.WithWriter(out).Println(logging.PresentError("", err))
			}
		default:
			return nil
		}
	}
}
