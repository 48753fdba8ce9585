package audit

import (
	"context"
	"errors"
	"testing"

	"sportbuddy/backend/internal/audit/domain"
)

// mockAuditRepo implements the audit repository interface for tests.
type mockAuditRepo struct {
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) ListByAction(ctx context.Context, action string, limit, offset int32) ([]*domain.AuditLog, error) {
	return nil, nil
}

func TestLogEvent(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo)

	logger.LogEvent(context.Background(), "login.identity_mismatch", "tok-1", `{"telegram_id":99}`)

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.ID == "" {
		t.Error("ID should be assigned")
	}
	if e.Actor != SentinelActor {
		t.Errorf("Actor = %q, want %q", e.Actor, SentinelActor)
	}
	if e.Action != "login.identity_mismatch" {
		t.Errorf("Action = %q, want login.identity_mismatch", e.Action)
	}
	if e.Resource != "tok-1" {
		t.Errorf("Resource = %q, want tok-1", e.Resource)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestLogEvent_RepoErrorIsSwallowed(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("db down")}
	logger := NewLogger(repo)

	// Must not panic or surface the error.
	logger.LogEvent(context.Background(), "login.initiation_replayed", "tok-1", "")
}

func TestLogEvent_NilRepo(t *testing.T) {
	logger := NewLogger(nil)
	logger.LogEvent(context.Background(), "login.identity_mismatch", "tok-1", "")
}
