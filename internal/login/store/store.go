// Package store provides keyed storage for login tokens with atomic guarded
// state transitions. Two implementations exist: an in-process map for single
// instance deployments and a Postgres table for durable or scaled-out setups.
package store

import (
	"context"
	"errors"

	"sportbuddy/backend/internal/login/domain"
)

var (
	// ErrNotFound is returned for tokens that are absent or past expiry.
	// The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("login token not found")
	// ErrInvalidTransition is returned when a transition guard fails
	// (e.g. binding a token that is no longer pending).
	ErrInvalidTransition = errors.New("invalid login token transition")
	// ErrAlreadyConfirmed is a distinguished guard failure: confirming a token
	// that is already confirmed by the same identity. Callers treat it as a
	// no-op and re-notify success.
	ErrAlreadyConfirmed = errors.New("login token already confirmed")
	// ErrIdentityMismatch is returned when a confirmation arrives from a
	// different Telegram identity than the one bound at initiation.
	ErrIdentityMismatch = errors.New("confirmation identity does not match initiation")
)

// Store holds login tokens keyed by token string. Every transition is an
// atomic read-modify-write: implementations use a lock or a guarded UPDATE so
// a replayed event can never overwrite a later state.
type Store interface {
	// Create inserts a fresh token. The token must be in StatusPending.
	Create(ctx context.Context, t *domain.LoginToken) error
	// Get returns the current token state, or ErrNotFound when absent/expired.
	// Pure read; it never mutates the token.
	Get(ctx context.Context, token string) (*domain.LoginToken, error)
	// Bind performs pending → waiting_confirm and records the initiating
	// Telegram identity. Returns ErrNotFound, or ErrInvalidTransition when the
	// token already left pending.
	Bind(ctx context.Context, token string, telegramID int64, username string) error
	// Confirm performs waiting_confirm → confirmed for the identity bound at
	// initiation and returns the confirmed token. Returns ErrNotFound,
	// ErrIdentityMismatch for a different identity, ErrAlreadyConfirmed for a
	// same-identity replay, or ErrInvalidTransition for a still-pending token.
	Confirm(ctx context.Context, token string, telegramID int64) (*domain.LoginToken, error)
	// DeleteExpired removes tokens past expiry and returns how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
