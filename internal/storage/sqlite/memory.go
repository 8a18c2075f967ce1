package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/rolecast/internal/core"
)

// MemoryRepo implements core.MemoryStore on sqlite, one row per
// conversation id. Updates are whole-row UPSERTs so a record is never left
// with mixed old/new fields.
type MemoryRepo struct {
	db      *sql.DB
	persona string
}

func NewMemoryRepo(db *sql.DB, persona string) *MemoryRepo {
	return &MemoryRepo{db: db, persona: persona}
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (core.MemoryRecord, error) {
	query := `SELECT core, summary, scene, last_summary_at, updated_at FROM memory_records WHERE conversation_id = ?`

	var rec core.MemoryRecord
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.CorePersona, &rec.RollingSummary, &rec.SceneSnapshot, &rec.LastSummaryAt, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		rec = core.MemoryRecord{CorePersona: r.persona, UpdatedAt: time.Now()}
		if err := r.insert(ctx, id, rec); err != nil {
			return core.MemoryRecord{}, err
		}
		return rec, nil
	}
	if err != nil {
		return core.MemoryRecord{}, fmt.Errorf("failed to query record: %w", err)
	}
	return rec, nil
}

func (r *MemoryRepo) insert(ctx context.Context, id string, rec core.MemoryRecord) error {
	query := `INSERT INTO memory_records (conversation_id, core, summary, scene, last_summary_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)
              ON CONFLICT(conversation_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, id, rec.CorePersona, rec.RollingSummary, rec.SceneSnapshot, rec.LastSummaryAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, id string, rec core.MemoryRecord) error {
	// Core persona is write-once and LastSummaryAt monotone; both enforced
	// in SQL so concurrent writers cannot regress them.
	query := `INSERT INTO memory_records (conversation_id, core, summary, scene, last_summary_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)
              ON CONFLICT(conversation_id) DO UPDATE SET
                  summary         = excluded.summary,
                  scene           = excluded.scene,
                  last_summary_at = MAX(last_summary_at, excluded.last_summary_at),
                  updated_at      = excluded.updated_at`

	if rec.CorePersona == "" {
		rec.CorePersona = r.persona
	}
	_, err := r.db.ExecContext(ctx, query, id, rec.CorePersona, rec.RollingSummary, rec.SceneSnapshot, rec.LastSummaryAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM memory_records WHERE conversation_id = ?`, id)
	return err
}

func (r *MemoryRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM memory_records`)
	return err
}
