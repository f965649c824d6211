// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for sqlselect, an
// interactive SELECT runner for PostgreSQL and SQLite. It implements the main
// menu, the query screen and the connection commands with the Cobra CLI
// framework.
package cmd

import (
	"fmt"
	"os"

	"sqlselect/cli/internal/config"
	"sqlselect/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	showVersion bool
	configPath  string
	verbose     bool

	// cfg and logger are set by the root PersistentPreRunE before any command runs.
	cfg    config.Config
	logger = logging.Discard()
)

// rootCmd opens the main menu when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "sqlselect",
	Short: "Run SELECT queries against PostgreSQL or SQLite from the terminal",
	Long: `sqlselect is an interactive SELECT runner. Type a query, get the rows back as a
table. One query runs at a time; while it runs further input is ignored, and
any database error is shown until you acknowledge it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			_ = os.Setenv(logging.VerboseEnv, "1")
		}
		c, err := config.Load(configPath, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = c
		logger = logging.New(cfg.LogLevel, os.Stderr)
		logger.Debug("configuration loaded", logger.Args("read_only", cfg.DB.ReadOnly, "timeout", cfg.Query.Timeout.String()))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintf(cmd.OutOrStdout(), "sqlselect %s\n", Version)
			return nil
		}
		return runMainMenu(cmd, sessionOptions{})
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.WithWriter(os.Stderr).Println(logging.PresentError("", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/sqlselect/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: trace, debug, info, warn, error, off")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose debug output")
}
