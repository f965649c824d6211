package cmd

import (
	"errors"
	"testing"

	"sqlselect/cli/internal/config"
)

func TestResolveDSN(t *testing.T) {
	fromKeychain := func() (string, error) { return "postgres://kc@localhost/app", nil }
	noKeychain := func() (string, error) { return "", errors.New("keychain unavailable") }

	tests := []struct {
		name        string
		flag        string
		env         string
		databaseURL string
		configDSN   string
		keychain    func() (string, error)
		want        string
		wantSource  string
		wantErr     bool
	}{
		{
			name: "flag wins", flag: "sqlite:///tmp/flag.db", env: "postgres://env@h/db",
			databaseURL: "postgres://url@h/db", configDSN: "postgres://cfg@h/db", keychain: fromKeychain,
			want: "sqlite:///tmp/flag.db", wantSource: sourceFlag,
		},
		{
			name: "env before DATABASE_URL", env: " postgres://env@h/db ", databaseURL: "postgres://url@h/db",
			keychain: fromKeychain, want: "postgres://env@h/db", wantSource: sourceEnv,
		},
		{
			name: "DATABASE_URL before config", databaseURL: "postgres://url@h/db", configDSN: "postgres://cfg@h/db",
			keychain: fromKeychain, want: "postgres://url@h/db", wantSource: sourceDatabase,
		},
		{
			name: "config before keychain", configDSN: "postgres://cfg@h/db", keychain: fromKeychain,
			want: "postgres://cfg@h/db", wantSource: sourceConfig,
		},
		{
			name: "keychain last", keychain: fromKeychain,
			want: "postgres://kc@localhost/app", wantSource: sourceKeychain,
		},
		{
			name: "nothing configured", keychain: noKeychain, wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SQLSELECT_DSN", tt.env)
			t.Setenv("DATABASE_URL", tt.databaseURL)
			c := config.Config{DB: config.DBConfig{DSN: tt.configDSN}}

			got, source, err := resolveDSN(tt.flag, c, tt.keychain)
			if tt.wantErr {
				if !errors.Is(err, errNoDSN) {
					t.Fatalf("resolveDSN() error = %v, want errNoDSN", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveDSN() unexpected error: %v", err)
			}
			if got != tt.want || source != tt.wantSource {
				t.Errorf("resolveDSN() = %q (%s), want %q (%s)", got, source, tt.want, tt.wantSource)
			}
		})
	}
}
