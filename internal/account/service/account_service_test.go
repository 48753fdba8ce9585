package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"sportbuddy/backend/internal/account/domain"
	"sportbuddy/backend/internal/account/repository"
)

// fakeAccountRepo is an in-memory AccountRepo keyed by telegram_id. failCreate
// makes the next Create lose a unique-constraint race.
type fakeAccountRepo struct {
	mu         sync.Mutex
	byTelegram map[int64]*domain.Account
	failCreate bool
	creates    int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byTelegram: make(map[int64]*domain.Account)}
}

func (f *fakeAccountRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byTelegram[telegramID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.failCreate {
		// Simulate a concurrent winner: the row appears, our insert loses.
		f.failCreate = false
		winner := *a
		winner.ID = "winner-id"
		winner.Name = "winner"
		f.byTelegram[a.TelegramID] = &winner
		return repository.ErrDuplicate
	}
	if _, ok := f.byTelegram[a.TelegramID]; ok {
		return repository.ErrDuplicate
	}
	cp := *a
	f.byTelegram[a.TelegramID] = &cp
	return nil
}

func (f *fakeAccountRepo) Update(ctx context.Context, a *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.byTelegram[a.TelegramID] = &cp
	return nil
}

func TestEnsureAccount_CreatesOnFirstLogin(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo)

	a, err := svc.EnsureAccount(context.Background(), 42, "alice")
	if err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}
	if a.ID == "" {
		t.Error("ID should be assigned")
	}
	if a.TelegramID != 42 {
		t.Errorf("TelegramID = %d, want 42", a.TelegramID)
	}
	if a.Name != "alice" {
		t.Errorf("Name = %q, want username default %q", a.Name, "alice")
	}
	if a.Sports == nil || a.Interests == nil {
		t.Error("Sports and Interests should be empty slices, not nil")
	}
}

func TestEnsureAccount_DefaultNameWithoutUsername(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo)

	a, err := svc.EnsureAccount(context.Background(), 42, "")
	if err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}
	if a.Name != "user_42" {
		t.Errorf("Name = %q, want %q", a.Name, "user_42")
	}
}

func TestEnsureAccount_Idempotent(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo)
	ctx := context.Background()

	first, err := svc.EnsureAccount(ctx, 42, "alice")
	if err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}
	second, err := svc.EnsureAccount(ctx, 42, "alice")
	if err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("IDs differ across logins: %q vs %q", first.ID, second.ID)
	}
	if repo.creates != 1 {
		t.Errorf("creates = %d, want 1", repo.creates)
	}
}

func TestEnsureAccount_LosesCreateRace(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.failCreate = true
	svc := NewAccountService(repo)

	a, err := svc.EnsureAccount(context.Background(), 42, "alice")
	if err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}
	if a.ID != "winner-id" {
		t.Errorf("ID = %q, want the concurrent winner's row", a.ID)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	svc := NewAccountService(newFakeAccountRepo())

	_, err := svc.GetProfile(context.Background(), 404)
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("GetProfile = %v, want ErrAccountNotFound", err)
	}
}

func TestUpdateProfile_PartialMerge(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo)
	ctx := context.Background()

	if _, err := svc.EnsureAccount(ctx, 42, "alice"); err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}
	bio := "climber"
	sports := []string{"bouldering", "running"}
	if _, err := svc.UpdateProfile(ctx, 42, &domain.ProfileUpdate{Bio: &bio, Sports: &sports}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	name := "Alice B"
	got, err := svc.UpdateProfile(ctx, 42, &domain.ProfileUpdate{Name: &name})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	if got.Name != "Alice B" {
		t.Errorf("Name = %q, want %q", got.Name, "Alice B")
	}
	if got.Bio != "climber" {
		t.Errorf("Bio = %q, want earlier edit preserved", got.Bio)
	}
	if len(got.Sports) != 2 {
		t.Errorf("Sports = %v, want earlier edit preserved", got.Sports)
	}
}

func TestUpdateProfile_NotFound(t *testing.T) {
	svc := NewAccountService(newFakeAccountRepo())

	name := "ghost"
	_, err := svc.UpdateProfile(context.Background(), 404, &domain.ProfileUpdate{Name: &name})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("UpdateProfile = %v, want ErrAccountNotFound", err)
	}
}
