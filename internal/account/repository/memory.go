package repository

import (
	"context"
	"sync"

	"sportbuddy/backend/internal/account/domain"
)

// MemoryRepository is an in-process account store for running without
// Postgres (development, tests). Accounts are lost on restart.
type MemoryRepository struct {
	mu         sync.RWMutex
	byTelegram map[int64]domain.Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byTelegram: make(map[int64]domain.Account)}
}

// GetByTelegramID returns the account for the Telegram identity, or nil if not found.
func (r *MemoryRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byTelegram[telegramID]
	if !ok {
		return nil, nil
	}
	out := a
	return &out, nil
}

// Create stores the account. Returns ErrDuplicate when the telegram_id is taken.
func (r *MemoryRepository) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byTelegram[a.TelegramID]; ok {
		return ErrDuplicate
	}
	r.byTelegram[a.TelegramID] = *a
	return nil
}

// Update overwrites the stored account.
func (r *MemoryRepository) Update(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTelegram[a.TelegramID] = *a
	return nil
}
