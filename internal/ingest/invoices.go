package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cleared-dev/transakce/internal/importer"
	"github.com/cleared-dev/transakce/internal/model"
	"github.com/cleared-dev/transakce/internal/store"
)

// ImportInvoices reads an iDoklad export and stores invoices not seen
// before. Rows are deduplicated by document number, both against the store
// and within the file.
func (s *Service) ImportInvoices(ctx context.Context, src io.Reader, opts Options) (*Summary, error) {
	start := s.now()
	user := opts.user()
	batch := &model.ImportBatch{
		ID:        uuid.NewString(),
		Kind:      model.BatchInvoices,
		Filename:  opts.Filename,
		Format:    importer.FormatIDoklad,
		Status:    model.BatchProcessing,
		StartedAt: start,
		CreatedBy: user,
	}
	if err := s.store.Queries().CreateBatch(ctx, batch); err != nil {
		return nil, err
	}
	log := runLogger(ctx, batch.ID, opts.Filename)
	log.Info().Str("format", batch.Format).Msg("invoice import started")

	var t tally
	err := s.importInvoiceRows(ctx, batch, src, user, &t, log)
	if err != nil {
		if finishErr := s.failBatch(ctx, batch, err); finishErr != nil {
			log.Error().Err(finishErr).Msg("recording failed batch")
		}
		log.Error().Err(err).Msg("invoice import failed")
		return s.summary(batch, start), err
	}

	completed := s.now()
	batch.Status = model.BatchCompleted
	batch.ImportedCount = t.imported
	batch.SkippedCount = t.skipped
	batch.ErrorCount = t.errors
	batch.Errors = t.capped(s.maxErrors)
	batch.CompletedAt = &completed
	if err := s.store.Queries().FinishBatch(ctx, batch); err != nil {
		return nil, err
	}

	log.Info().
		Int("total", batch.TotalRows).
		Int("imported", t.imported).
		Int("skipped", t.skipped).
		Int("errors", t.errors).
		Msg("invoice import finished")
	return s.summary(batch, start), nil
}

func (s *Service) importInvoiceRows(ctx context.Context, batch *model.ImportBatch, src io.Reader, user string, t *tally, log zerolog.Logger) error {
	rows, err := importer.ReadInvoiceRows(src)
	if err != nil {
		return err
	}
	batch.TotalRows = len(rows)

	return s.store.RunInTx(ctx, func(ctx context.Context, q *store.Queries) error {
		for i, row := range rows {
			if err := ctx.Err(); err != nil {
				return err
			}
			out := RowOutcome{Row: i + 1}
			out.Err = q.Savepoint(ctx, func(q *store.Queries) error {
				inv, err := importer.ConvertInvoice(row)
				if err != nil {
					return err
				}
				exists, err := q.InvoiceExists(ctx, inv.Number)
				if err != nil {
					return err
				}
				if exists {
					return &DuplicateError{ID: inv.Number}
				}
				inv.ID = uuid.NewString()
				inv.ImportBatchID = &batch.ID
				inv.CreatedBy = user
				inv.CreatedAt = s.now()
				if err := q.InsertInvoice(ctx, inv); err != nil {
					return err
				}
				out.TransactionID = inv.ID
				return nil
			})
			out.Kind = classify(out.Err)
			if !out.Recoverable() {
				return fmt.Errorf("row %d: %w", out.Row, out.Err)
			}
			if out.Kind != OutcomeImported {
				log.Warn().Err(out.Err).Int("row", out.Row).Str("kind", string(out.Kind)).Msg("invoice not imported")
			}
			t.add(out)
		}
		return nil
	})
}
