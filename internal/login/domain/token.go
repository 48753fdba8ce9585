// Package domain holds the login token model and its state machine vocabulary.
package domain

import "time"

// Status is the login token state. Tokens move pending → waiting_confirm → confirmed;
// there are no backward transitions. StatusNotFound is reported to callers for
// absent or expired tokens and is never stored.
type Status string

const (
	StatusPending        Status = "pending"
	StatusWaitingConfirm Status = "waiting_confirm"
	StatusConfirmed      Status = "confirmed"
	StatusNotFound       Status = "not_found"
)

// LoginToken correlates a polling client session with a Telegram confirmation.
// TelegramID and TelegramUsername are zero until the initiation event binds them;
// TelegramID is non-zero only in waiting_confirm and confirmed.
type LoginToken struct {
	Token            string
	Status           Status
	TelegramID       int64
	TelegramUsername string
	CreatedAt        time.Time
	ExpiresAt        time.Time
}

// Expired reports whether the token's lifetime has passed at the given instant.
// Expired tokens are indistinguishable from tokens that never existed.
func (t *LoginToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
