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

const upsertContestSQL = `
INSERT INTO contest (
    id, name, status, current_round, active_showdown_id, judging_model,
    judge_panel_size, event_id, results_visibility, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    status = excluded.status,
    current_round = excluded.current_round,
    active_showdown_id = excluded.active_showdown_id,
    judging_model = excluded.judging_model,
    judge_panel_size = excluded.judge_panel_size,
    event_id = excluded.event_id,
    results_visibility = excluded.results_visibility,
    updated_at = excluded.updated_at`

const selectContestSQL = `
SELECT id, name, status, current_round, active_showdown_id, judging_model,
       judge_panel_size, event_id, results_visibility, created_at, updated_at
FROM contest
WHERE id = $1`

type ContestRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewContestRepository(sqlDB *sql.DB, logger zerolog.Logger) *ContestRepository {
	return &ContestRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *ContestRepository) Upsert(ctx context.Context, contest *domain.Contest) error {
	_, err := r.db.ExecContext(ctx, upsertContestSQL,
		contest.ID,
		contest.Name,
		contest.Status,
		contest.CurrentRound,
		contest.ActiveShowdownID,
		contest.JudgingModel,
		contest.JudgePanelSize,
		contest.EventID,
		contest.ResultsVisibility,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert contest %s: %w", contest.ID, err)
	}
	return nil
}

func (r *ContestRepository) Get(ctx context.Context, id string) (*domain.Contest, error) {
	var (
		c                                                 domain.Contest
		name, status, round, active, model, event, public sql.NullString
		panel                                             sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, selectContestSQL, id).Scan(
		&c.ID, &name, &status, &round, &active, &model, &panel, &event, &public,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contest %s: %w", id, err)
	}

	c.Name = stringPtr(name)
	c.Status = stringPtr(status)
	c.CurrentRound = stringPtr(round)
	c.ActiveShowdownID = stringPtr(active)
	c.JudgingModel = stringPtr(model)
	c.JudgePanelSize = intPtr(panel)
	c.EventID = stringPtr(event)
	c.ResultsVisibility = stringPtr(public)
	return &c, nil
}
