package store

import (
	"context"
	"sync"
	"time"

	"sportbuddy/backend/internal/login/domain"
)

// MemoryStore is an in-process Store implementation. One mutex guards the map,
// so every transition checks the current state and writes the next one under
// the same critical section. Expired entries read as absent; DeleteExpired
// (called by the server's reaper) removes them.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]domain.LoginToken
	nowF func() time.Time
}

// NewMemoryStore returns an empty in-memory login token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]domain.LoginToken),
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a fresh token.
func (s *MemoryStore) Create(ctx context.Context, t *domain.LoginToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[t.Token] = *t
	return nil
}

// Get returns a copy of the token state, or ErrNotFound when absent/expired.
func (s *MemoryStore) Get(ctx context.Context, token string) (*domain.LoginToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.m[token]
	if !ok || t.Expired(s.nowF()) {
		return nil, ErrNotFound
	}
	out := t
	return &out, nil
}

// Bind performs pending → waiting_confirm under the lock.
func (s *MemoryStore) Bind(ctx context.Context, token string, telegramID int64, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.m[token]
	if !ok || t.Expired(s.nowF()) {
		return ErrNotFound
	}
	if t.Status != domain.StatusPending {
		return ErrInvalidTransition
	}
	t.Status = domain.StatusWaitingConfirm
	t.TelegramID = telegramID
	t.TelegramUsername = username
	s.m[token] = t
	return nil
}

// Confirm performs waiting_confirm → confirmed under the lock for the bound identity.
func (s *MemoryStore) Confirm(ctx context.Context, token string, telegramID int64) (*domain.LoginToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.m[token]
	if !ok || t.Expired(s.nowF()) {
		return nil, ErrNotFound
	}
	switch t.Status {
	case domain.StatusPending:
		return nil, ErrInvalidTransition
	case domain.StatusConfirmed:
		if t.TelegramID != telegramID {
			return nil, ErrIdentityMismatch
		}
		out := t
		return &out, ErrAlreadyConfirmed
	}
	if t.TelegramID != telegramID {
		return nil, ErrIdentityMismatch
	}
	t.Status = domain.StatusConfirmed
	s.m[token] = t
	out := t
	return &out, nil
}

// DeleteExpired removes all entries past expiry.
func (s *MemoryStore) DeleteExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowF()
	var n int64
	for k, t := range s.m {
		if t.Expired(now) {
			delete(s.m, k)
			n++
		}
	}
	return n, nil
}
