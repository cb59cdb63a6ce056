package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"showdown-vote/internal/domain"

	"github.com/rs/zerolog"
)

type VoteRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewVoteRepository(sqlDB *sql.DB, logger zerolog.Logger) *VoteRepository {
	return &VoteRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// TryInsert records the vote unless one already exists for the
// (showdown, user) pair. The primary key arbitrates concurrent attempts, so
// exactly one caller per pair observes inserted == true.
func (r *VoteRepository) TryInsert(ctx context.Context, vote *domain.Vote) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO vote (showdown_id, user_id, choice, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (showdown_id, user_id) DO NOTHING`,
		vote.ShowdownID,
		vote.UserID,
		string(vote.Choice),
		vote.CreatedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert vote: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

func (r *VoteRepository) GetChoice(ctx context.Context, showdownID, userID string) (domain.Choice, error) {
	var choice string
	err := r.db.QueryRowContext(ctx,
		"SELECT choice FROM vote WHERE showdown_id = $1 AND user_id = $2",
		showdownID, userID,
	).Scan(&choice)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get vote: %w", err)
	}
	return domain.Choice(choice), nil
}

// Tally aggregates committed votes at call time.
func (r *VoteRepository) Tally(ctx context.Context, showdownID string) (domain.Tally, error) {
	var t domain.Tally
	err := r.db.QueryRowContext(ctx, `
		SELECT
		    COALESCE(SUM(CASE WHEN choice = 'RED' THEN 1 ELSE 0 END), 0),
		    COALESCE(SUM(CASE WHEN choice = 'BLUE' THEN 1 ELSE 0 END), 0)
		FROM vote
		WHERE showdown_id = $1`, showdownID,
	).Scan(&t.Red, &t.Blue)
	if err != nil {
		return domain.Tally{}, fmt.Errorf("failed to tally votes for showdown %s: %w", showdownID, err)
	}
	return t, nil
}
