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

const upsertDancerSQL = `
INSERT INTO dancer (id, name, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (id) DO UPDATE SET
    name = COALESCE(excluded.name, dancer.name),
    updated_at = excluded.updated_at`

type DancerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewDancerRepository(sqlDB *sql.DB, logger zerolog.Logger) *DancerRepository {
	return &DancerRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *DancerRepository) UpsertBatch(ctx context.Context, dancers []domain.Dancer) error {
	if len(dancers) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i := 0; i < len(dancers); i += constants.DBBatchSize {
		end := min(i+constants.DBBatchSize, len(dancers))
		for _, d := range dancers[i:end] {
			if _, err := tx.ExecContext(ctx, upsertDancerSQL, d.ID, d.Name, now); err != nil {
				return fmt.Errorf("failed to upsert dancer %s: %w", d.ID, err)
			}
		}
	}

	return tx.Commit()
}

// Names maps dancer id to name for the ids that have a known name.
func (r *DancerRepository) Names(ctx context.Context, ids []string) (map[string]string, error) {
	args := uniqueIDs(ids)
	names := make(map[string]string, len(args))
	if len(args) == 0 {
		return names, nil
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name FROM dancer WHERE name IS NOT NULL AND id IN ("+placeholders(1, len(args))+")",
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dancers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan dancer: %w", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dancers: %w", err)
	}
	return names, nil
}
