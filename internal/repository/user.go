package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"showdown-vote/internal/domain"

	"github.com/rs/zerolog"
)

// An existing email keeps its id and takes the new display name.
const upsertUserSQL = `
INSERT INTO audience_user (id, name, email, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (email) DO UPDATE SET
    name = excluded.name,
    updated_at = excluded.updated_at
RETURNING id`

type UserRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewUserRepository(sqlDB *sql.DB, logger zerolog.Logger) *UserRepository {
	return &UserRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Upsert stores the user keyed on email and returns the id the email is bound
// to, which differs from user.ID when the email was already registered.
func (r *UserRepository) Upsert(ctx context.Context, user *domain.AudienceUser) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, upsertUserSQL,
		user.ID,
		user.Name,
		user.Email,
		time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to upsert audience user")
		return "", fmt.Errorf("failed to upsert audience user: %w", err)
	}
	return id, nil
}

func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM audience_user WHERE id = $1", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check audience user %s: %w", id, err)
	}
	return true, nil
}
