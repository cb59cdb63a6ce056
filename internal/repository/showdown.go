package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"showdown-vote/internal/constants"
	"showdown-vote/internal/domain"

	"github.com/rs/zerolog"
)

// contest_id is sticky: a bracket entry that omits it keeps the known value.
const upsertShowdownSQL = `
INSERT INTO showdown (
    id, contest_id, name, status, round, match_number, vote_open_time, vote_close_time,
    red_couple_id, blue_couple_id, red_audience_votes, blue_audience_votes, winner,
    created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
ON CONFLICT (id) DO UPDATE SET
    contest_id = COALESCE(excluded.contest_id, showdown.contest_id),
    name = excluded.name,
    status = excluded.status,
    round = excluded.round,
    match_number = excluded.match_number,
    vote_open_time = excluded.vote_open_time,
    vote_close_time = excluded.vote_close_time,
    red_couple_id = excluded.red_couple_id,
    blue_couple_id = excluded.blue_couple_id,
    red_audience_votes = excluded.red_audience_votes,
    blue_audience_votes = excluded.blue_audience_votes,
    winner = excluded.winner,
    updated_at = excluded.updated_at`

const showdownColumns = `
id, contest_id, name, status, round, match_number, vote_open_time, vote_close_time,
red_couple_id, blue_couple_id, red_audience_votes, blue_audience_votes, winner,
created_at, updated_at`

type ShowdownRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewShowdownRepository(sqlDB *sql.DB, logger zerolog.Logger) *ShowdownRepository {
	return &ShowdownRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *ShowdownRepository) Upsert(ctx context.Context, showdown *domain.Showdown) error {
	return upsertShowdown(ctx, r.db, showdown, time.Now().UTC())
}

func (r *ShowdownRepository) UpsertBatch(ctx context.Context, showdowns []domain.Showdown) error {
	if len(showdowns) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i := 0; i < len(showdowns); i += constants.DBBatchSize {
		end := min(i+constants.DBBatchSize, len(showdowns))
		for _, s := range showdowns[i:end] {
			if err := upsertShowdown(ctx, tx, &s, now); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func upsertShowdown(ctx context.Context, q execer, s *domain.Showdown, now time.Time) error {
	_, err := q.ExecContext(ctx, upsertShowdownSQL,
		s.ID,
		s.ContestID,
		s.Name,
		s.Status,
		s.Round,
		s.MatchNumber,
		timeArg(s.VoteOpenTime),
		timeArg(s.VoteCloseTime),
		s.RedCoupleID,
		s.BlueCoupleID,
		s.RedAudienceVotes,
		s.BlueAudienceVotes,
		choiceArg(s.Winner),
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert showdown %s: %w", s.ID, err)
	}
	return nil
}

func (r *ShowdownRepository) Get(ctx context.Context, id string) (*domain.Showdown, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+showdownColumns+" FROM showdown WHERE id = $1", id)
	s, err := scanShowdown(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get showdown %s: %w", id, err)
	}
	return s, nil
}

// ListByContest returns the contest's showdowns in bracket order. Showdowns
// without a match number sort last.
func (r *ShowdownRepository) ListByContest(ctx context.Context, contestID string) ([]domain.Showdown, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+showdownColumns+` FROM showdown
		WHERE contest_id = $1
		ORDER BY COALESCE(match_number, 2147483647), id`, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list showdowns for contest %s: %w", contestID, err)
	}
	defer rows.Close()

	var showdowns []domain.Showdown
	for rows.Next() {
		s, err := scanShowdown(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan showdown: %w", err)
		}
		showdowns = append(showdowns, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate showdowns: %w", err)
	}

	r.logger.Debug().
		Str("contest_id", contestID).
		Int("count", len(showdowns)).
		Msg("listed showdowns")

	return showdowns, nil
}

func scanShowdown(row rowScanner) (*domain.Showdown, error) {
	var (
		s                                                domain.Showdown
		contestID, name, status, round, red, blue, winner sql.NullString
		matchNumber, redVotes, blueVotes                  sql.NullInt64
		openTime, closeTime                               sql.NullTime
	)
	err := row.Scan(
		&s.ID, &contestID, &name, &status, &round, &matchNumber, &openTime, &closeTime,
		&red, &blue, &redVotes, &blueVotes, &winner,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.ContestID = stringPtr(contestID)
	s.Name = stringPtr(name)
	s.Status = stringPtr(status)
	s.Round = stringPtr(round)
	s.MatchNumber = intPtr(matchNumber)
	s.VoteOpenTime = timePtr(openTime)
	s.VoteCloseTime = timePtr(closeTime)
	s.RedCoupleID = stringPtr(red)
	s.BlueCoupleID = stringPtr(blue)
	s.RedAudienceVotes = intPtr(redVotes)
	s.BlueAudienceVotes = intPtr(blueVotes)
	s.Winner = choicePtr(winner)
	return &s, nil
}
