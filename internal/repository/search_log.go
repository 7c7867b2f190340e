package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gizmo/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// SearchLogRepository stores one row per player search. Rows are never read back
// to answer a search.
type SearchLogRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSearchLogRepository(sqlDB *sql.DB, logger zerolog.Logger) *SearchLogRepository {
	return &SearchLogRepository{db: sqlDB, logger: logger}
}

const insertSearch = `
INSERT INTO search_log (id, target, mode, platform, account_id, stage, found, replay_count, complete, duration_ms, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (r *SearchLogRepository) Insert(ctx context.Context, rec *domain.SearchRecord) error {
	if rec.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		rec.ID = id
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, insertSearch,
		rec.ID,
		rec.Target,
		string(rec.Mode),
		string(rec.Account.Platform),
		rec.Account.ID,
		rec.Stage,
		rec.Found,
		rec.ReplayCount,
		rec.Complete,
		rec.Duration.Milliseconds(),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert search %s: %w", rec.ID, err)
	}

	r.logger.Debug().Str("id", rec.ID).Str("target", rec.Target).Msg("search logged")
	return nil
}

const selectRecent = `
SELECT id, target, mode, platform, account_id, stage, found, replay_count, complete, duration_ms, created_at
FROM search_log
ORDER BY created_at DESC
LIMIT ?`

func (r *SearchLogRepository) Recent(ctx context.Context, limit int) ([]domain.SearchRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectRecent, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent searches: %w", err)
	}
	defer rows.Close()

	records := []domain.SearchRecord{}
	for rows.Next() {
		var (
			rec        domain.SearchRecord
			mode       string
			platform   string
			durationMs int64
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Target,
			&mode,
			&platform,
			&rec.Account.ID,
			&rec.Stage,
			&rec.Found,
			&rec.ReplayCount,
			&rec.Complete,
			&durationMs,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan search row: %w", err)
		}
		rec.Mode = domain.SearchMode(mode)
		rec.Account.Platform = domain.Platform(platform)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search rows: %w", err)
	}
	return records, nil
}
