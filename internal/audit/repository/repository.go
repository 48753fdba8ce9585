package repository

import (
	"context"

	"sportbuddy/backend/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	ListByAction(ctx context.Context, action string, limit, offset int32) ([]*domain.AuditLog, error)
}
