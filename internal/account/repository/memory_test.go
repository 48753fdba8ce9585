package repository

import (
	"context"
	"errors"
	"testing"

	"sportbuddy/backend/internal/account/domain"
)

func TestMemoryRepository_CreateAndGet(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	if err := r.Create(ctx, &domain.Account{ID: "a-1", TelegramID: 42, Name: "alice"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := r.GetByTelegramID(ctx, 42)
	if err != nil {
		t.Fatalf("GetByTelegramID: %v", err)
	}
	if got == nil || got.ID != "a-1" {
		t.Errorf("got = %+v, want account a-1", got)
	}
}

func TestMemoryRepository_GetMissing(t *testing.T) {
	r := NewMemoryRepository()

	got, err := r.GetByTelegramID(context.Background(), 404)
	if err != nil {
		t.Fatalf("GetByTelegramID: %v", err)
	}
	if got != nil {
		t.Errorf("got = %+v, want nil for missing account", got)
	}
}

func TestMemoryRepository_DuplicateCreate(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	if err := r.Create(ctx, &domain.Account{ID: "a-1", TelegramID: 42}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := r.Create(ctx, &domain.Account{ID: "a-2", TelegramID: 42})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("second Create = %v, want ErrDuplicate", err)
	}
}

func TestMemoryRepository_Update(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	if err := r.Create(ctx, &domain.Account{ID: "a-1", TelegramID: 42, Name: "alice"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := r.Update(ctx, &domain.Account{ID: "a-1", TelegramID: 42, Name: "Alice B"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := r.GetByTelegramID(ctx, 42)
	if err != nil {
		t.Fatalf("GetByTelegramID: %v", err)
	}
	if got.Name != "Alice B" {
		t.Errorf("Name = %q, want Alice B", got.Name)
	}
}
