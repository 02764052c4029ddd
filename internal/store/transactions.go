package store

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/cleared-dev/transakce/internal/model"
)

// TxFilter narrows ListTransactions. Zero fields do not filter.
type TxFilter struct {
	IDs           []string
	BatchID       string
	Uncategorized bool // income/expense flag or kind unset
	DateFrom      *time.Time
	DateTo        *time.Time
	Limit         int
}

// TransactionExists reports whether a transaction with the bank ID exists.
func (q *Queries) TransactionExists(ctx context.Context, externalID string) (bool, error) {
	ok, err := q.db.NewSelect().
		Model((*model.Transaction)(nil)).
		Where("external_id = ?", externalID).
		Exists(ctx)
	if err != nil {
		return false, wrap("checking transaction", err)
	}
	return ok, nil
}

// InsertTransaction stores a new transaction. A clash on the bank ID returns
// an error wrapping ErrDuplicate.
func (q *Queries) InsertTransaction(ctx context.Context, t *model.Transaction) error {
	_, err := q.db.NewInsert().Model(t).Exec(ctx)
	return wrap("inserting transaction", err)
}

// GetTransaction loads one transaction by ID.
func (q *Queries) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	t := new(model.Transaction)
	err := q.db.NewSelect().Model(t).Where("t.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, wrap("loading transaction "+id, err)
	}
	return t, nil
}

// categorizationColumns are the fields rules and bulk edits may change.
var categorizationColumns = []string{
	"status", "income_expense", "own_flag", "tax", "kind", "detail", "unit",
	"mh_pct", "sk_pct", "xp_pct", "fr_pct",
	"project_id", "product_id", "subgroup_id",
	"updated_by", "updated_at",
}

// UpdateCategorization writes the categorization fields of t.
func (q *Queries) UpdateCategorization(ctx context.Context, t *model.Transaction) error {
	res, err := q.db.NewUpdate().
		Model(t).
		Column(categorizationColumns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return wrap("updating transaction "+t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating transaction %s: %w", t.ID, ErrNotFound)
	}
	return nil
}

// ListTransactions returns transactions ordered by date then ID.
func (q *Queries) ListTransactions(ctx context.Context, f TxFilter) ([]model.Transaction, error) {
	var txs []model.Transaction
	sel := q.db.NewSelect().Model(&txs)
	applyTxFilter(sel, f)
	sel.Order("t.date ASC", "t.id ASC")
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}
	if err := sel.Scan(ctx); err != nil {
		return nil, wrap("listing transactions", err)
	}
	return txs, nil
}

func applyTxFilter(sel *bun.SelectQuery, f TxFilter) {
	if len(f.IDs) > 0 {
		sel.Where("t.id IN (?)", bun.In(f.IDs))
	}
	if f.BatchID != "" {
		sel.Where("t.import_batch_id = ?", f.BatchID)
	}
	if f.Uncategorized {
		sel.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("t.income_expense = ''").WhereOr("t.kind = ''")
		})
	}
	if f.DateFrom != nil {
		sel.Where("t.date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		sel.Where("t.date <= ?", *f.DateTo)
	}
}

// BulkChanges are the fields a bulk update may set. Nil fields are kept;
// an empty ProjectID clears the project.
type BulkChanges struct {
	Status    *model.TxStatus
	ProjectID *string
	User      string
}

// BulkUpdate applies changes to the transactions in ids and returns how many
// rows were updated.
func (q *Queries) BulkUpdate(ctx context.Context, ids []string, c BulkChanges) (int, error) {
	if len(ids) == 0 || (c.Status == nil && c.ProjectID == nil) {
		return 0, nil
	}
	upd := q.db.NewUpdate().
		Model((*model.Transaction)(nil)).
		Set("updated_by = ?", c.User).
		Set("updated_at = ?", Now()).
		Where("id IN (?)", bun.In(ids))
	if c.Status != nil {
		upd.Set("status = ?", *c.Status)
	}
	if c.ProjectID != nil {
		if *c.ProjectID == "" {
			upd.Set("project_id = NULL")
		} else {
			upd.Set("project_id = ?", *c.ProjectID)
		}
	}
	res, err := upd.Exec(ctx)
	if err != nil {
		return 0, wrap("bulk updating transactions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bulk updating transactions: %w", err)
	}
	return int(n), nil
}

// InsertAudit records a change to a transaction.
func (q *Queries) InsertAudit(ctx context.Context, e *model.AuditEntry) error {
	_, err := q.db.NewInsert().Model(e).Exec(ctx)
	return wrap("inserting audit entry", err)
}

// AuditTrail returns the audit entries of one transaction, oldest first.
func (q *Queries) AuditTrail(ctx context.Context, transactionID string) ([]model.AuditEntry, error) {
	var entries []model.AuditEntry
	err := q.db.NewSelect().
		Model(&entries).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, wrap("listing audit entries", err)
	}
	return entries, nil
}
