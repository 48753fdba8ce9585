// Package audit records security-relevant handshake events: identity
// mismatches, replayed links, and other anomalies worth keeping.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"sportbuddy/backend/internal/audit/domain"
	auditrepo "sportbuddy/backend/internal/audit/repository"
)

// SentinelActor is recorded when no specific actor is known; the acting
// Telegram identity, when known, travels in the event metadata.
const SentinelActor = "_system"

// Logger persists audit events. LogEvent is best-effort: failures are logged
// and do not affect the caller.
type Logger struct {
	repo auditrepo.Repository
}

// NewLogger returns a Logger that persists to repo. A nil repo disables auditing.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, action, resource, metadata string) {
	if l.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		Actor:     SentinelActor,
		Action:    action,
		Resource:  resource,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", action, resource, err)
	}
}
