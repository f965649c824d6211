// Package main is the entry point for sqlselect, an interactive SELECT runner
// for PostgreSQL and SQLite.
package main

import (
	"sqlselect/cli/cmd"
)

func main() {
	cmd.Execute()
}
