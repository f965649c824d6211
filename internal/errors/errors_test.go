package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestE_Error(t *testing.T) {
	cause := stderrors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
	tests := []struct {
		name string
		err  *E
		want string
	}{
		{"without cause", New(ConfigInvalid, "log_level must be one of debug, info, warn, error"), "config_invalid: log_level must be one of debug, info, warn, error"},
		{"with cause", Wrap(ConnectFailed, "cannot reach database", cause), "connect_failed: cannot reach database: dial tcp 127.0.0.1:5432: connect: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	cause := stderrors.New("boom")
	wrapped := fmt.Errorf("connect: %w", Wrap(KeychainUnavailable, "keychain locked", cause))

	kind, ok := KindOf(wrapped)
	if !ok || kind != KeychainUnavailable {
		t.Fatalf("KindOf() = %q, %v; want %q, true", kind, ok, KeychainUnavailable)
	}
	if !stderrors.Is(wrapped, cause) {
		t.Error("cause not reachable through Unwrap")
	}
	if _, ok := KindOf(cause); ok {
		t.Error("KindOf() on a plain error should report false")
	}
}
