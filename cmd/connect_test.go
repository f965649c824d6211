package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sqlselect/cli/internal/config"
	"sqlselect/cli/internal/keychain"

	"github.com/pterm/pterm"
)

// memoryStore is an in-memory keychain.Store.
type memoryStore map[string]string

func (m memoryStore) Set(key, value string) error { m[key] = value; return nil }

func (m memoryStore) Get(key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", keychain.ErrNotFound
	}
	return v, nil
}

func (m memoryStore) Delete(key string) error { delete(m, key); return nil }

func useConfigPath(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.FileName)
	if body != "" {
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	prev := configPath
	configPath = path
	t.Cleanup(func() { configPath = prev })
	return path
}

func noKeychainManager() (*keychain.Manager, error) {
	return nil, errors.New("no secret service")
}

func TestSaveConnection_Keychain(t *testing.T) {
	path := useConfigPath(t, "")
	useConfig(t, config.Config{LogLevel: "info", DB: config.DBConfig{ReadOnly: true}})
	store := memoryStore{}

	var out bytes.Buffer
	err := saveConnection(&out, "postgresql://app:pw@db:5432/app", func() (*keychain.Manager, error) {
		return keychain.NewWithStore(store), nil
	})
	if err != nil {
		t.Fatalf("saveConnection: %v", err)
	}

	if got := store[keychain.KeyDBDSN]; got != "postgresql://app:pw@db:5432/app" {
		t.Errorf("keychain holds %q", got)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("config file written although the keychain worked (stat err %v)", err)
	}
	if !strings.Contains(out.String(), "OS keychain") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestSaveConnection_FallsBackToConfigFile(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	path := useConfigPath(t, "query:\n  timeout: 30s\n")
	// log level and read-only arrived from flags; they must not be persisted
	useConfig(t, config.Config{LogLevel: "debug", DB: config.DBConfig{ReadOnly: false}})

	var out bytes.Buffer
	if err := saveConnection(&out, "sqlite:///data/app.db", noKeychainManager); err != nil {
		t.Fatalf("saveConnection: %v", err)
	}
	if !strings.Contains(out.String(), "Secure storage is not available") {
		t.Errorf("missing fallback warning: %q", out.String())
	}

	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, unwanted := range []string{"log_level", "read_only"} {
		if strings.Contains(string(body), unwanted) {
			t.Errorf("config file picked up %s:\n%s", unwanted, body)
		}
	}

	got, err := config.Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.DB.DSN != "sqlite:///data/app.db" {
		t.Errorf("DSN = %q", got.DB.DSN)
	}
	if got.Query.Timeout.String() != "30s" {
		t.Errorf("timeout from the file was lost: %s", got.Query.Timeout)
	}
}

func TestForgetConnection(t *testing.T) {
	path := useConfigPath(t, "log_level: warn\ndb:\n  dsn: sqlite:///data/app.db\n")
	useConfig(t, config.Config{LogLevel: "warn", DB: config.DBConfig{DSN: "sqlite:///data/app.db", ReadOnly: true}})
	store := memoryStore{keychain.KeyDBDSN: "postgres://app@db/app"}

	var out bytes.Buffer
	err := forgetConnection(&out, func() (*keychain.Manager, error) {
		return keychain.NewWithStore(store), nil
	})
	if err != nil {
		t.Fatalf("forgetConnection: %v", err)
	}

	if _, ok := store[keychain.KeyDBDSN]; ok {
		t.Error("keychain entry not removed")
	}
	got, err := config.Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.DB.DSN != "" {
		t.Errorf("config DSN = %q, want empty", got.DB.DSN)
	}
	if got.LogLevel != "warn" {
		t.Errorf("log_level = %q, other file values must survive", got.LogLevel)
	}
	if !strings.Contains(out.String(), "removed") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestForgetConnection_NoKeychainNoFile(t *testing.T) {
	path := useConfigPath(t, "")
	useConfig(t, config.Config{LogLevel: "info"})

	var out bytes.Buffer
	if err := forgetConnection(&out, noKeychainManager); err != nil {
		t.Fatalf("forgetConnection: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("config file created without a DSN to forget (stat err %v)", err)
	}
}
