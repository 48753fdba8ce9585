// Package service implements account provisioning and profile management.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sportbuddy/backend/internal/account/domain"
	"sportbuddy/backend/internal/account/repository"
)

// ErrAccountNotFound is returned by profile operations for an unknown telegram_id.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepo is the minimal account repository needed by the service.
type AccountRepo interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
	Update(ctx context.Context, a *domain.Account) error
}

// AccountService provisions accounts on confirmed logins and serves profile
// reads and edits keyed by telegram_id.
type AccountService struct {
	repo AccountRepo
	nowF func() time.Time
}

func NewAccountService(repo AccountRepo) *AccountService {
	return &AccountService{
		repo: repo,
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// EnsureAccount returns the account for the Telegram identity, creating it on
// first login. Losing a concurrent create race resolves to the winner's row,
// so every caller observes exactly one account per telegram_id.
func (s *AccountService) EnsureAccount(ctx context.Context, telegramID int64, username string) (*domain.Account, error) {
	existing, err := s.repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := s.nowF()
	a := &domain.Account{
		ID:               uuid.NewString(),
		TelegramID:       telegramID,
		TelegramUsername: username,
		Name:             defaultName(username, telegramID),
		Sports:           []string{},
		Interests:        []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.repo.Create(ctx, a)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return nil, err
	}

	// Another confirmation won the insert. Their row is the account.
	existing, err = s.repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("account vanished after duplicate insert for telegram_id %d", telegramID)
	}
	return existing, nil
}

// GetProfile returns the account for telegram_id or ErrAccountNotFound.
func (s *AccountService) GetProfile(ctx context.Context, telegramID int64) (*domain.Account, error) {
	a, err := s.repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

// UpdateProfile applies a partial edit to the account for telegram_id and
// returns the updated account. Fields left nil in the update are preserved.
func (s *AccountService) UpdateProfile(ctx context.Context, telegramID int64, upd *domain.ProfileUpdate) (*domain.Account, error) {
	a, err := s.repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAccountNotFound
	}

	applyUpdate(a, upd)
	a.UpdatedAt = s.nowF()

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func applyUpdate(a *domain.Account, upd *domain.ProfileUpdate) {
	if upd.Name != nil {
		a.Name = *upd.Name
	}
	if upd.AvatarURL != nil {
		a.AvatarURL = *upd.AvatarURL
	}
	if upd.Bio != nil {
		a.Bio = *upd.Bio
	}
	if upd.Work != nil {
		a.Work = *upd.Work
	}
	if upd.Study != nil {
		a.Study = *upd.Study
	}
	if upd.Pet != nil {
		a.Pet = *upd.Pet
	}
	if upd.Sports != nil {
		a.Sports = *upd.Sports
	}
	if upd.Interests != nil {
		a.Interests = *upd.Interests
	}
	if upd.Location != nil {
		a.Location = *upd.Location
	}
}

func defaultName(username string, telegramID int64) string {
	if username != "" {
		return username
	}
	return fmt.Sprintf("user_%d", telegramID)
}
