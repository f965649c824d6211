// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"strings"

	"sqlselect/cli/internal/config"
	"sqlselect/cli/internal/errors"
	"sqlselect/cli/internal/keychain"
)

// Where a connection string came from, as shown to the user.
const (
	sourceFlag     = "--dsn flag"
	sourceEnv      = "SQLSELECT_DSN environment variable"
	sourceDatabase = "DATABASE_URL environment variable"
	sourceConfig   = "config file"
	sourceKeychain = "OS keychain"
)

// errNoDSN is returned when no source provides a connection string.
var errNoDSN = errors.New(errors.ConnectFailed, "no database connection configured; run 'sqlselect connect' or pass --dsn")

// resolveDSN walks the sources in precedence order: flag, SQLSELECT_DSN,
// DATABASE_URL, config file, keychain.
func resolveDSN(flagDSN string, c config.Config, fromKeychain func() (string, error)) (string, string, error) {
	candidates := []struct {
		value  string
		source string
	}{
		{flagDSN, sourceFlag},
		{os.Getenv("SQLSELECT_DSN"), sourceEnv},
		{os.Getenv("DATABASE_URL"), sourceDatabase},
		{c.DB.DSN, sourceConfig},
	}
	for _, cand := range candidates {
		if v := strings.TrimSpace(cand.value); v != "" {
			return v, cand.source, nil
		}
	}

	if fromKeychain != nil {
		v, err := fromKeychain()
		if err == nil && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), sourceKeychain, nil
		}
		if err != nil {
			logger.Debug("keychain lookup failed", logger.Args("error", err.Error()))
		}
	}
	return "", "", errNoDSN
}

// keychainDSN reads the saved connection string from the OS keychain.
func keychainDSN() (string, error) {
	km, err := keychain.GetManager()
	if err != nil {
		return "", err
	}
	return km.LoadDBDSN()
}
