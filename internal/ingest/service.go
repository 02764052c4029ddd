// Package ingest imports bank statements and invoices into the store and
// runs categorization rules over stored transactions.
package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cleared-dev/transakce/internal/importer"
	"github.com/cleared-dev/transakce/internal/logger"
	"github.com/cleared-dev/transakce/internal/lookups"
	"github.com/cleared-dev/transakce/internal/model"
	"github.com/cleared-dev/transakce/internal/rules"
	"github.com/cleared-dev/transakce/internal/store"
)

// DefaultUser is recorded when no initiating identity is given.
const DefaultUser = "system"

// Service imports files and maintains categorization. It logs through the
// logger carried by each call's context.
type Service struct {
	store     *store.Store
	registry  *importer.Registry
	maxErrors int
	now       func() time.Time
}

// NewService creates an ingest Service. maxErrors caps the row errors kept
// on a batch; 0 keeps all.
func NewService(st *store.Store, maxErrors int) *Service {
	return &Service{
		store:     st,
		registry:  importer.DefaultRegistry(),
		maxErrors: maxErrors,
		now:       store.Now,
	}
}

// Options controls one import run.
type Options struct {
	Filename  string
	User      string
	Delimiter rune   // 0 means importer.DefaultDelimiter
	Format    string // "" means detect
	NoRules   bool
}

func (o Options) user() string {
	if o.User == "" {
		return DefaultUser
	}
	return o.User
}

// Summary reports the result of an import run.
type Summary struct {
	BatchID      string
	Format       string
	TotalRows    int
	Imported     int
	Skipped      int
	Errors       int
	ErrorDetails []model.RowError
	Duration     time.Duration
}

// Import reads a bank statement and stores its transactions. All rows are
// written in one database transaction, each in its own savepoint; a row
// that fails conversion, validation, the duplicate check or the insert is
// recorded and skipped. A parse failure, cancellation or a broken
// transaction rolls back the whole run, marks the batch failed and is
// returned.
func (s *Service) Import(ctx context.Context, src io.Reader, opts Options) (*Summary, error) {
	start := s.now()
	user := opts.user()
	batch := &model.ImportBatch{
		ID:        uuid.NewString(),
		Kind:      model.BatchTransactions,
		Filename:  opts.Filename,
		Status:    model.BatchProcessing,
		StartedAt: start,
		CreatedBy: user,
	}
	if err := s.store.Queries().CreateBatch(ctx, batch); err != nil {
		return nil, err
	}
	log := runLogger(ctx, batch.ID, opts.Filename)
	log.Info().Msg("import started")

	var t tally
	err := s.importRows(ctx, batch, src, opts, user, &t, log)
	if err != nil {
		if finishErr := s.failBatch(ctx, batch, err); finishErr != nil {
			log.Error().Err(finishErr).Msg("recording failed batch")
		}
		log.Error().Err(err).Str("format", batch.Format).Msg("import failed")
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
		Str("format", batch.Format).
		Int("total", batch.TotalRows).
		Int("imported", t.imported).
		Int("skipped", t.skipped).
		Int("errors", t.errors).
		Msg("import finished")
	return s.summary(batch, start), nil
}

func (s *Service) importRows(ctx context.Context, batch *model.ImportBatch, src io.Reader, opts Options, user string, t *tally, log zerolog.Logger) error {
	res, err := s.registry.Parse(src, importer.Options{Delimiter: opts.Delimiter, Format: opts.Format})
	if err != nil {
		return err
	}
	batch.Format = res.Format
	batch.TotalRows = len(res.Records)

	return s.store.RunInTx(ctx, func(ctx context.Context, q *store.Queries) error {
		r := &rowImporter{
			batchID: batch.ID,
			user:    user,
			now:     s.now,
			log:     log,
		}
		if !opts.NoRules {
			active, err := q.ActiveRules(ctx)
			if err != nil {
				return err
			}
			r.rules = rules.NewSnapshot(active, log)
			log.Debug().Int("rules", r.rules.Len()).Msg("rule snapshot ready")
		}
		catalog, err := q.Lookups(ctx)
		if err != nil {
			return err
		}
		r.lookups = lookups.NewIndex(catalog)

		for i, rec := range res.Records {
			if err := ctx.Err(); err != nil {
				return err
			}
			out := r.importRow(ctx, q, i+1, rec)
			if !out.Recoverable() {
				return fmt.Errorf("row %d: %w", out.Row, out.Err)
			}
			t.add(out)
		}
		return nil
	})
}

// runLogger scopes the context logger to one batch.
func runLogger(ctx context.Context, batchID, filename string) zerolog.Logger {
	return logger.WithFields(logger.FromContext(ctx), map[string]any{
		"batch_id": batchID,
		"filename": filename,
	})
}

func (s *Service) failBatch(ctx context.Context, batch *model.ImportBatch, cause error) error {
	completed := s.now()
	batch.Status = model.BatchFailed
	batch.ImportedCount, batch.SkippedCount, batch.ErrorCount = 0, 0, 0
	batch.Errors = []model.RowError{{Message: cause.Error()}}
	batch.CompletedAt = &completed
	return s.store.Queries().FinishBatch(context.WithoutCancel(ctx), batch)
}

func (s *Service) summary(b *model.ImportBatch, start time.Time) *Summary {
	return &Summary{
		BatchID:      b.ID,
		Format:       b.Format,
		TotalRows:    b.TotalRows,
		Imported:     b.ImportedCount,
		Skipped:      b.SkippedCount,
		Errors:       b.ErrorCount,
		ErrorDetails: b.Errors,
		Duration:     s.now().Sub(start),
	}
}

// rowImporter holds the per-run state shared by all rows of one import.
type rowImporter struct {
	batchID string
	user    string
	rules   *rules.Snapshot // nil when rules are disabled
	lookups model.LookupChecker
	now     func() time.Time
	log     zerolog.Logger
}

// importRow converts, categorizes and stores one record inside its own
// savepoint and classifies the result.
func (r *rowImporter) importRow(ctx context.Context, q *store.Queries, num int, rec importer.Record) RowOutcome {
	out := RowOutcome{Row: num}
	err := q.Savepoint(ctx, func(q *store.Queries) error {
		if id := strings.TrimSpace(rec.Get(importer.FieldExternalID)); id != "" {
			exists, err := q.TransactionExists(ctx, id)
			if err != nil {
				return err
			}
			if exists {
				return &DuplicateError{ID: id}
			}
		}

		t, err := buildCandidate(rec)
		if err != nil {
			return err
		}
		now := r.now()
		t.ID = uuid.NewString()
		t.ImportBatchID = &r.batchID
		t.CreatedBy, t.UpdatedBy = r.user, r.user
		t.CreatedAt, t.UpdatedAt = now, now

		if r.rules != nil {
			if m := r.rules.Categorize(t); m != nil {
				out.RuleID = m.ID
			}
		}
		t.DeriveIncomeExpense()

		if errs := t.Validate(r.lookups); len(errs) > 0 {
			return errs
		}
		if err := q.InsertTransaction(ctx, t); err != nil {
			return err
		}
		out.TransactionID = t.ID

		return q.InsertAudit(ctx, &model.AuditEntry{
			ID:            uuid.NewString(),
			TransactionID: t.ID,
			User:          r.user,
			Action:        model.AuditActionImport,
			Details:       "Soubor: batch " + r.batchID,
			CreatedAt:     now,
		})
	})

	out.Kind = classify(err)
	out.Err = err
	if out.Kind != OutcomeImported {
		out.TransactionID = ""
		r.log.Warn().Err(err).Int("row", num).Str("kind", string(out.Kind)).Msg("row not imported")
	}
	return out
}
