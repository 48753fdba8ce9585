package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sportbuddy/backend/internal/login/domain"
)

// PostgresStore is a durable Store backed by the login_tokens table.
// Transitions are single UPDATE statements with the state guard in the WHERE
// clause, so concurrent writers race on the row instead of on a stale read.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a login token store that persists to the given db.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a fresh token row.
func (s *PostgresStore) Create(ctx context.Context, t *domain.LoginToken) error {
	query := `
		INSERT INTO login_tokens (token, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4)`

	_, err := s.db.ExecContext(ctx, query, t.Token, string(t.Status), t.CreatedAt, t.ExpiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Get returns the current token state, or ErrNotFound when absent or expired.
func (s *PostgresStore) Get(ctx context.Context, token string) (*domain.LoginToken, error) {
	query := `
		SELECT token, status, COALESCE(telegram_id, 0), COALESCE(telegram_username, ''), created_at, expires_at
		FROM login_tokens
		WHERE token = $1 AND expires_at > NOW()`

	return s.scanOne(s.db.QueryRowContext(ctx, query, token))
}

// Bind performs pending → waiting_confirm as one guarded UPDATE.
func (s *PostgresStore) Bind(ctx context.Context, token string, telegramID int64, username string) error {
	query := `
		UPDATE login_tokens
		SET status = $2, telegram_id = $3, telegram_username = $4
		WHERE token = $1 AND status = $5 AND expires_at > NOW()`

	res, err := s.db.ExecContext(ctx, query, token,
		string(domain.StatusWaitingConfirm), telegramID, username, string(domain.StatusPending))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 1 {
		return nil
	}

	// Guard failed; classify for the caller's chat notice. The read is advisory,
	// the UPDATE above already settled the race.
	if _, err := s.Get(ctx, token); err != nil {
		return err
	}
	return ErrInvalidTransition
}

// Confirm performs waiting_confirm → confirmed as one guarded UPDATE keyed on
// both the token and the identity bound at initiation.
func (s *PostgresStore) Confirm(ctx context.Context, token string, telegramID int64) (*domain.LoginToken, error) {
	query := `
		UPDATE login_tokens
		SET status = $2
		WHERE token = $1 AND status = $3 AND telegram_id = $4 AND expires_at > NOW()
		RETURNING token, status, COALESCE(telegram_id, 0), COALESCE(telegram_username, ''), created_at, expires_at`

	t, err := s.scanOne(s.db.QueryRowContext(ctx, query, token,
		string(domain.StatusConfirmed), string(domain.StatusWaitingConfirm), telegramID))
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	current, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	switch {
	case current.Status == domain.StatusPending:
		return nil, ErrInvalidTransition
	case current.TelegramID != telegramID:
		return nil, ErrIdentityMismatch
	case current.Status == domain.StatusConfirmed:
		return current, ErrAlreadyConfirmed
	}
	return nil, ErrInvalidTransition
}

// DeleteExpired removes token rows past expiry.
func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM login_tokens WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (*domain.LoginToken, error) {
	t := &domain.LoginToken{}
	var status string
	err := row.Scan(&t.Token, &status, &t.TelegramID, &t.TelegramUsername, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	t.Status = domain.Status(status)
	return t, nil
}
