package store

import (
	"context"

	"github.com/cleared-dev/transakce/internal/model"
)

// InvoiceExists reports whether an invoice with the document number exists.
func (q *Queries) InvoiceExists(ctx context.Context, number string) (bool, error) {
	ok, err := q.db.NewSelect().
		Model((*model.Invoice)(nil)).
		Where("number = ?", number).
		Exists(ctx)
	if err != nil {
		return false, wrap("checking invoice", err)
	}
	return ok, nil
}

// InsertInvoice stores a new invoice.
func (q *Queries) InsertInvoice(ctx context.Context, inv *model.Invoice) error {
	_, err := q.db.NewInsert().Model(inv).Exec(ctx)
	return wrap("inserting invoice "+inv.Number, err)
}

// ListInvoices returns invoices ordered by issue date.
func (q *Queries) ListInvoices(ctx context.Context) ([]model.Invoice, error) {
	var invoices []model.Invoice
	if err := q.db.NewSelect().Model(&invoices).Order("i.issued_on ASC", "i.number ASC").Scan(ctx); err != nil {
		return nil, wrap("listing invoices", err)
	}
	return invoices, nil
}
