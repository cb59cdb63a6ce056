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

type AppStateRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewAppStateRepository(sqlDB *sql.DB, logger zerolog.Logger) *AppStateRepository {
	return &AppStateRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *AppStateRepository) Get(ctx context.Context) (*domain.AppState, error) {
	var (
		state  domain.AppState
		active sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT active_contest_id, updated_at FROM app_state WHERE id = 1",
	).Scan(&active, &state.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.AppState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get app state: %w", err)
	}
	state.ActiveContestID = stringPtr(active)
	return &state, nil
}

// SetActiveContest points the singleton at contestID. An empty id leaves the
// current pointer untouched.
func (r *AppStateRepository) SetActiveContest(ctx context.Context, contestID string) error {
	if contestID == "" {
		return nil
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO app_state (id, active_contest_id, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET
		    active_contest_id = COALESCE(excluded.active_contest_id, app_state.active_contest_id),
		    updated_at = excluded.updated_at`,
		contestID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set active contest: %w", err)
	}

	r.logger.Debug().Str("contest_id", contestID).Msg("active contest set")
	return nil
}
