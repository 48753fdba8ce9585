package migrate

import (
	"strings"
	"testing"
)

func TestRun_EmptyDSN(t *testing.T) {
	err := Run("", "up")
	if err == nil {
		t.Fatal("Run with empty DSN should return error")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL is not set") {
		t.Errorf("error = %q, want DATABASE_URL message", err.Error())
	}
}

func TestRun_InvalidDirection(t *testing.T) {
	testCases := []struct {
		name      string
		direction string
	}{
		{"empty", ""},
		{"invalid", "sideways"},
		{"upcase", "UP"},
		{"mixed", "Up"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Run("postgres://localhost/test", tc.direction)
			if err == nil {
				t.Fatalf("Run with direction %q should return error", tc.direction)
			}
			if !strings.Contains(err.Error(), "direction must be up or down") {
				t.Errorf("error = %q, want direction message", err.Error())
			}
		})
	}
}

func TestRun_ValidDirectionPassesValidation(t *testing.T) {
	for _, direction := range []string{"up", "down"} {
		t.Run(direction, func(t *testing.T) {
			// Fails at the database connection, not at direction validation.
			err := Run("postgres://localhost:1/nonexistent", direction)
			if err != nil && strings.Contains(err.Error(), "direction must be") {
				t.Errorf("direction %q rejected: %v", direction, err)
			}
		})
	}
}

func TestRun_EmbeddedSourceLoads(t *testing.T) {
	// iofs.New over the embedded FS must succeed; a failure here would surface
	// with the "migrate source:" prefix before any database work.
	err := Run("postgres://localhost:1/nonexistent", "up")
	if err != nil && strings.Contains(err.Error(), "migrate source:") {
		t.Errorf("embedded migration source failed to load: %v", err)
	}
}
