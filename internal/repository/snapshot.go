package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"showdown-vote/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// SnapshotRepository is the append-only archive of raw upstream payloads.
type SnapshotRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSnapshotRepository(sqlDB *sql.DB, logger zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *SnapshotRepository) Append(ctx context.Context, contestID string, payload json.RawMessage, receivedAt time.Time) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate nanoid: %w", err)
	}

	var contest any
	if contestID != "" {
		contest = contestID
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO raw_snapshot (id, contest_id, received_at, payload) VALUES ($1, $2, $3, $4)",
		id, contest, receivedAt.UTC(), string(payload))
	if err != nil {
		return "", fmt.Errorf("failed to archive snapshot: %w", err)
	}

	r.logger.Debug().
		Str("snapshot_id", id).
		Str("contest_id", contestID).
		Int("bytes", len(payload)).
		Msg("snapshot archived")

	return id, nil
}

// Latest returns the most recently received payload for the contest.
func (r *SnapshotRepository) Latest(ctx context.Context, contestID string) (*domain.RawSnapshot, error) {
	var (
		s       domain.RawSnapshot
		contest sql.NullString
		payload string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, contest_id, received_at, payload
		FROM raw_snapshot
		WHERE contest_id = $1
		ORDER BY received_at DESC
		LIMIT 1`, contestID,
	).Scan(&s.ID, &contest, &s.ReceivedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot for contest %s: %w", contestID, err)
	}

	s.ContestID = stringPtr(contest)
	s.Payload = json.RawMessage(payload)
	return &s, nil
}
