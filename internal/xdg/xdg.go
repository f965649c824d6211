// Package xdg resolves the XDG Base Directory locations sqlselect uses: the
// config dir for config.yaml and the state dir for prompt history.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "sqlselect"

// ConfigDir returns $XDG_CONFIG_HOME/sqlselect, falling back to
// ~/.config/sqlselect. The directory is created with 0700 if missing.
func ConfigDir() (string, error) {
	return appDir("XDG_CONFIG_HOME", ".config")
}

// StateDir returns $XDG_STATE_HOME/sqlselect, falling back to
// ~/.local/state/sqlselect. The directory is created with 0700 if missing.
func StateDir() (string, error) {
	return appDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

// HistoryFile is where the query prompt keeps its history.
func HistoryFile() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

func appDir(envVar, homeFallback string) (string, error) {
	base := os.Getenv(envVar)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, homeFallback)
	}
	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
