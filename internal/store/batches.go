package store

import (
	"context"
	"fmt"

	"github.com/cleared-dev/transakce/internal/model"
)

// CreateBatch records the start of an import run.
func (q *Queries) CreateBatch(ctx context.Context, b *model.ImportBatch) error {
	_, err := q.db.NewInsert().Model(b).Exec(ctx)
	return wrap("creating import batch", err)
}

// FinishBatch writes the terminal state of an import run.
func (q *Queries) FinishBatch(ctx context.Context, b *model.ImportBatch) error {
	if !b.Finished() {
		return fmt.Errorf("finishing import batch %s: status %q is not terminal", b.ID, b.Status)
	}
	res, err := q.db.NewUpdate().
		Model(b).
		Column("format", "status", "total_rows", "imported_count", "skipped_count",
			"error_count", "error_details", "completed_at").
		WherePK().
		Where("status = ?", model.BatchProcessing).
		Exec(ctx)
	if err != nil {
		return wrap("finishing import batch "+b.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finishing import batch %s: %w", b.ID, ErrBatchClosed)
	}
	return nil
}

// GetBatch loads one import batch.
func (q *Queries) GetBatch(ctx context.Context, id string) (*model.ImportBatch, error) {
	b := new(model.ImportBatch)
	if err := q.db.NewSelect().Model(b).Where("b.id = ?", id).Scan(ctx); err != nil {
		return nil, wrap("loading import batch "+id, err)
	}
	return b, nil
}

// ListBatches returns the most recent batches first. limit <= 0 returns all.
func (q *Queries) ListBatches(ctx context.Context, limit int) ([]model.ImportBatch, error) {
	var batches []model.ImportBatch
	sel := q.db.NewSelect().Model(&batches).Order("b.started_at DESC", "b.id DESC")
	if limit > 0 {
		sel.Limit(limit)
	}
	if err := sel.Scan(ctx); err != nil {
		return nil, wrap("listing import batches", err)
	}
	return batches, nil
}
