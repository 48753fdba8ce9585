// Package service implements the Telegram login handshake: token issuance,
// status reporting for polling clients, and the chat-side initiation and
// confirmation transitions.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	accountdomain "sportbuddy/backend/internal/account/domain"
	"sportbuddy/backend/internal/login/domain"
	"sportbuddy/backend/internal/login/store"
	"sportbuddy/backend/internal/security"
)

// Sentinel errors for the login service; callers map them to HTTP responses
// or chat notices.
var (
	ErrTokenNotFound     = store.ErrNotFound
	ErrInvalidTransition = store.ErrInvalidTransition
	ErrAlreadyConfirmed  = store.ErrAlreadyConfirmed
	ErrIdentityMismatch  = store.ErrIdentityMismatch
)

// StartResult is the issued token plus the deep link the client renders.
type StartResult struct {
	Token string
	URL   string
}

// StatusResult is one status poll snapshot. TelegramID and TelegramUsername
// are set only when Status is confirmed.
type StatusResult struct {
	Status           domain.Status
	TelegramID       int64
	TelegramUsername string
}

// Provisioner creates or fetches the account for a confirmed Telegram identity.
type Provisioner interface {
	EnsureAccount(ctx context.Context, telegramID int64, username string) (*accountdomain.Account, error)
}

// Auditor records security-relevant handshake events. Best effort; failures
// never block the handshake.
type Auditor interface {
	LogEvent(ctx context.Context, action, resource, metadata string)
}

// LoginService drives the login token state machine.
type LoginService struct {
	store       store.Store
	provisioner Provisioner
	auditor     Auditor
	botUsername string
	ttl         time.Duration
	nowF        func() time.Time
}

func NewLoginService(s store.Store, p Provisioner, a Auditor, botUsername string, ttl time.Duration) *LoginService {
	return &LoginService{
		store:       s,
		provisioner: p,
		auditor:     a,
		botUsername: botUsername,
		ttl:         ttl,
		nowF:        func() time.Time { return time.Now().UTC() },
	}
}

// Start issues a fresh login token and returns it with the bot deep link.
func (s *LoginService) Start(ctx context.Context) (*StartResult, error) {
	token, err := security.GenerateLoginToken()
	if err != nil {
		return nil, fmt.Errorf("generate login token: %w", err)
	}

	now := s.nowF()
	t := &domain.LoginToken{
		Token:     token,
		Status:    domain.StatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}

	return &StartResult{
		Token: token,
		URL:   fmt.Sprintf("https://t.me/%s?start=token_%s", s.botUsername, token),
	}, nil
}

// Status reports the current state of a token. Absent, expired, and malformed
// tokens all read as not_found; a poll never reveals whether a token ever
// existed.
func (s *LoginService) Status(ctx context.Context, token string) (*StatusResult, error) {
	if !security.ValidLoginToken(token) {
		return &StatusResult{Status: domain.StatusNotFound}, nil
	}

	t, err := s.store.Get(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &StatusResult{Status: domain.StatusNotFound}, nil
		}
		return nil, err
	}

	res := &StatusResult{Status: t.Status}
	if t.Status == domain.StatusConfirmed {
		res.TelegramID = t.TelegramID
		res.TelegramUsername = t.TelegramUsername
	}
	return res, nil
}

// HandleInitiation binds the Telegram identity that opened the deep link to
// the token (pending → waiting_confirm).
func (s *LoginService) HandleInitiation(ctx context.Context, token string, telegramID int64, username string) error {
	if !security.ValidLoginToken(token) {
		return store.ErrNotFound
	}
	err := s.store.Bind(ctx, token, telegramID, username)
	if errors.Is(err, store.ErrInvalidTransition) {
		s.audit(ctx, "login.initiation_replayed", token,
			fmt.Sprintf(`{"telegram_id":%d}`, telegramID))
	}
	return err
}

// HandleConfirmation finishes the handshake: it confirms the token for the
// identity bound at initiation and provisions the account. Returns the
// account on success and on a same-identity replay.
func (s *LoginService) HandleConfirmation(ctx context.Context, token string, telegramID int64) (*accountdomain.Account, error) {
	if !security.ValidLoginToken(token) {
		return nil, store.ErrNotFound
	}

	t, err := s.store.Confirm(ctx, token, telegramID)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrAlreadyConfirmed):
		// Same identity pressed the button twice. Provisioning is idempotent,
		// so re-running it returns the same account.
	case errors.Is(err, store.ErrIdentityMismatch):
		s.audit(ctx, "login.identity_mismatch", token,
			fmt.Sprintf(`{"telegram_id":%d}`, telegramID))
		return nil, err
	default:
		return nil, err
	}

	account, perr := s.provisioner.EnsureAccount(ctx, t.TelegramID, t.TelegramUsername)
	if perr != nil {
		return nil, fmt.Errorf("provision account: %w", perr)
	}
	return account, err
}

// DeleteExpired removes tokens past expiry; the server's reaper calls it on a ticker.
func (s *LoginService) DeleteExpired(ctx context.Context) (int64, error) {
	return s.store.DeleteExpired(ctx)
}

func (s *LoginService) audit(ctx context.Context, action, resource, metadata string) {
	if s.auditor == nil {
		return
	}
	s.auditor.LogEvent(ctx, action, resource, metadata)
}
