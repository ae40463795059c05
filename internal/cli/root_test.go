package cli

import "testing"

func TestVersion(t *testing.T) {
	// Unset version falls back to "dev" for the MCP handshake.
	SetVersion("", "", "")
	if got := Version(); got != "dev" {
		t.Errorf("Version() = %q, want dev", got)
	}

	SetVersion("v1.2.3", "abc123", "2026-01-01")
	if got := Version(); got != "v1.2.3" {
		t.Errorf("Version() = %q, want v1.2.3", got)
	}
	SetVersion("", "", "")
}
