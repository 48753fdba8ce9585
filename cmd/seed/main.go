// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev account (telegram_id 1000001) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"sportbuddy/backend/internal/account/domain"
	"sportbuddy/backend/internal/account/repository"
	"sportbuddy/backend/internal/config"
	"sportbuddy/backend/internal/db"
)

const (
	devTelegramID = 1000001
	devUsername   = "sportbuddy_dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set; seeding requires Postgres")
		os.Exit(1)
	}

	dbConn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer dbConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := repository.NewPostgresRepository(dbConn)

	existing, err := repo.GetByTelegramID(ctx, devTelegramID)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if existing != nil {
		log.Printf("seed: dev account already exists (telegram_id %d); nothing to do", devTelegramID)
		return
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:               uuid.NewString(),
		TelegramID:       devTelegramID,
		TelegramUsername: devUsername,
		Name:             "Dev Buddy",
		Bio:              "Local development account",
		Work:             "SportBuddy",
		Sports:           []string{"running", "climbing"},
		Interests:        []string{"board games"},
		Location:         "Berlin",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := repo.Create(ctx, account); err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("seed: created dev account %s (telegram_id %d)", account.ID, devTelegramID)
}
