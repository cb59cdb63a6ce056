package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"showdown-vote/internal/constants"
	"showdown-vote/internal/domain"

	"github.com/rs/zerolog"
)

// Names, dancer references and the contest are sticky: a later partial
// snapshot never erases what an earlier one established.
const upsertCoupleSQL = `
INSERT INTO couple (
    id, contest_id, lead_id, follow_id, lead_name, follow_name, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
ON CONFLICT (id) DO UPDATE SET
    contest_id = COALESCE(excluded.contest_id, couple.contest_id),
    lead_id = COALESCE(excluded.lead_id, couple.lead_id),
    follow_id = COALESCE(excluded.follow_id, couple.follow_id),
    lead_name = COALESCE(excluded.lead_name, couple.lead_name),
    follow_name = COALESCE(excluded.follow_name, couple.follow_name),
    updated_at = excluded.updated_at`

const coupleColumns = `id, contest_id, lead_id, follow_id, lead_name, follow_name, created_at, updated_at`

type CoupleRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewCoupleRepository(sqlDB *sql.DB, logger zerolog.Logger) *CoupleRepository {
	return &CoupleRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *CoupleRepository) Upsert(ctx context.Context, couple *domain.Couple) error {
	return upsertCouple(ctx, r.db, couple, time.Now().UTC())
}

func (r *CoupleRepository) UpsertBatch(ctx context.Context, couples []domain.Couple) error {
	if len(couples) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i := 0; i < len(couples); i += constants.DBBatchSize {
		end := min(i+constants.DBBatchSize, len(couples))
		for _, c := range couples[i:end] {
			if err := upsertCouple(ctx, tx, &c, now); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func upsertCouple(ctx context.Context, q execer, c *domain.Couple, now time.Time) error {
	_, err := q.ExecContext(ctx, upsertCoupleSQL,
		c.ID,
		c.ContestID,
		c.LeadID,
		c.FollowID,
		c.LeadName,
		c.FollowName,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert couple %s: %w", c.ID, err)
	}
	return nil
}

func (r *CoupleRepository) ListByContest(ctx context.Context, contestID string) ([]domain.Couple, error) {
	return r.query(ctx,
		"SELECT "+coupleColumns+" FROM couple WHERE contest_id = $1 ORDER BY id",
		contestID)
}

// ListByIDs returns the couples that exist among ids, in no particular order.
func (r *CoupleRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Couple, error) {
	args := uniqueIDs(ids)
	if len(args) == 0 {
		return nil, nil
	}
	return r.query(ctx,
		"SELECT "+coupleColumns+" FROM couple WHERE id IN ("+placeholders(1, len(args))+")",
		args...)
}

func (r *CoupleRepository) query(ctx context.Context, query string, args ...any) ([]domain.Couple, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query couples: %w", err)
	}
	defer rows.Close()

	var couples []domain.Couple
	for rows.Next() {
		var (
			c                                                   domain.Couple
			contestID, leadID, followID, leadName, followName sql.NullString
		)
		if err := rows.Scan(&c.ID, &contestID, &leadID, &followID, &leadName, &followName,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan couple: %w", err)
		}
		c.ContestID = stringPtr(contestID)
		c.LeadID = stringPtr(leadID)
		c.FollowID = stringPtr(followID)
		c.LeadName = stringPtr(leadName)
		c.FollowName = stringPtr(followName)
		couples = append(couples, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate couples: %w", err)
	}
	return couples, nil
}
