package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"sportbuddy/backend/internal/account/domain"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an account repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, telegram_id, COALESCE(telegram_username, ''), COALESCE(name, ''),
	COALESCE(avatar_url, ''), COALESCE(bio, ''), COALESCE(work, ''), COALESCE(study, ''),
	COALESCE(pet, ''), sports, interests, COALESCE(location, ''), created_at, updated_at`

// GetByTelegramID returns the account for the Telegram identity, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE telegram_id = $1`

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// Create persists the account. The account must have ID set; it is not assigned
// by this method. Returns ErrDuplicate when the telegram_id is already taken.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Account) error {
	query := `
		INSERT INTO accounts (id, telegram_id, telegram_username, name, avatar_url, bio,
			work, study, pet, sports, interests, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	sports, err := json.Marshal(emptySlice(a.Sports))
	if err != nil {
		return fmt.Errorf("marshal sports: %w", err)
	}
	interests, err := json.Marshal(emptySlice(a.Interests))
	if err != nil {
		return fmt.Errorf("marshal interests: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		a.ID, a.TelegramID, a.TelegramUsername, a.Name, a.AvatarURL, a.Bio,
		a.Work, a.Study, a.Pet, sports, interests, a.Location, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update writes the full profile for an existing account.
func (r *PostgresRepository) Update(ctx context.Context, a *domain.Account) error {
	query := `
		UPDATE accounts
		SET telegram_username = $2, name = $3, avatar_url = $4, bio = $5, work = $6,
			study = $7, pet = $8, sports = $9, interests = $10, location = $11, updated_at = $12
		WHERE id = $1`

	sports, err := json.Marshal(emptySlice(a.Sports))
	if err != nil {
		return fmt.Errorf("marshal sports: %w", err)
	}
	interests, err := json.Marshal(emptySlice(a.Interests))
	if err != nil {
		return fmt.Errorf("marshal interests: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		a.ID, a.TelegramUsername, a.Name, a.AvatarURL, a.Bio, a.Work,
		a.Study, a.Pet, sports, interests, a.Location, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func scanAccount(row *sql.Row) (*domain.Account, error) {
	a := &domain.Account{}
	var sports, interests []byte
	err := row.Scan(&a.ID, &a.TelegramID, &a.TelegramUsername, &a.Name,
		&a.AvatarURL, &a.Bio, &a.Work, &a.Study,
		&a.Pet, &sports, &interests, &a.Location, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sports, &a.Sports); err != nil {
		return nil, fmt.Errorf("unmarshal sports: %w", err)
	}
	if err := json.Unmarshal(interests, &a.Interests); err != nil {
		return nil, fmt.Errorf("unmarshal interests: %w", err)
	}
	return a, nil
}

func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
