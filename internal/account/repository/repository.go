package repository

import (
	"context"
	"errors"

	"sportbuddy/backend/internal/account/domain"
)

// ErrDuplicate is returned by Create when another row already holds the
// telegram_id. Callers resolve the race by re-reading.
var ErrDuplicate = errors.New("account already exists for telegram_id")

// Repository defines persistence for accounts.
type Repository interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
	Update(ctx context.Context, a *domain.Account) error
}
