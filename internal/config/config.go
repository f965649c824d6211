// Copyright (c) 2025 Sqlselect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads sqlselect settings from defaults, config.yaml in the
// XDG config dir, SQLSELECT_* environment variables and command-line flags,
// in that order of increasing precedence. Secrets never live here except as a
// fallback when the OS keychain is unavailable.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sqlselect/cli/internal/errors"
	"sqlselect/cli/internal/logging"
	"sqlselect/cli/internal/xdg"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read into the config.
// Nested keys use a double underscore: SQLSELECT_DB__READ_ONLY.
const EnvPrefix = "SQLSELECT_"

// FileName is the config file inside the XDG config dir.
const FileName = "config.yaml"

// Config holds CLI settings.
type Config struct {
	LogLevel string      `koanf:"log_level"`
	DB       DBConfig    `koanf:"db"`
	Query    QueryConfig `koanf:"query"`
}

// DBConfig holds database connection settings.
type DBConfig struct {
	// DSN is only stored here when the keychain could not be used
	DSN      string `koanf:"dsn"`
	ReadOnly bool   `koanf:"read_only"`
}

// QueryConfig holds query screen settings.
type QueryConfig struct {
	// Timeout bounds a single query; zero waits forever
	Timeout time.Duration `koanf:"timeout"`
}

// flagKeys maps flag names to config keys. Flags not listed are not config.
var flagKeys = map[string]string{
	"log-level": "log_level",
	"read-only": "db.read_only",
	"timeout":   "query.timeout",
}

// envSkip lists SQLSELECT_ variables that are read elsewhere.
var envSkip = map[string]bool{"dsn": true, "verbose": true}

func defaults() map[string]any {
	return map[string]any{
		"log_level":     "info",
		"db.dsn":        "",
		"db.read_only":  true,
		"query.timeout": "0s",
	}
}

// DefaultPath returns the config file path in the XDG config dir.
func DefaultPath() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load merges every source into a Config. An empty path means DefaultPath; a
// missing file is not an error. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	var cfg Config
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return cfg, errors.Wrap(errors.ConfigInvalid, "failed to load defaults", err)
	}

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, errors.Wrap(errors.ConfigInvalid, "cannot locate config dir", err)
		}
		path = p
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, errors.Wrap(errors.ConfigInvalid, "error reading config file "+path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return cfg, errors.Wrap(errors.ConfigInvalid, "failed to load env vars", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return cfg, errors.Wrap(errors.ConfigInvalid, "failed to load flags", err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, errors.Wrap(errors.ConfigInvalid, "unable to decode config", err)
	}
	return cfg, cfg.Validate()
}

// envKey turns SQLSELECT_DB__READ_ONLY into db.read_only.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if envSkip[key] {
		return ""
	}
	return strings.ReplaceAll(key, "__", ".")
}

// Validate reports settings no command can work with.
func (c Config) Validate() error {
	if !logging.KnownLevel(c.LogLevel) {
		return errors.New(errors.ConfigInvalid, fmt.Sprintf("unknown log_level %q", c.LogLevel))
	}
	if c.Query.Timeout < 0 {
		return errors.New(errors.ConfigInvalid, fmt.Sprintf("query.timeout must not be negative, got %s", c.Query.Timeout))
	}
	return nil
}

// SaveDSN stores dsn as db.dsn in the config file, keeping whatever else the
// file holds. Values that came from env or flags are never written. An empty
// path means DefaultPath; the file is created with 0600 when missing.
func SaveDSN(path, dsn string) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	k := koanf.New(".")
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return errors.Wrap(errors.ConfigInvalid, "error reading config file "+path, err)
		}
	}
	if dsn == "" {
		k.Delete("db.dsn")
	} else if err := k.Set("db.dsn", dsn); err != nil {
		return err
	}

	b, err := k.Marshal(yaml.Parser())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
