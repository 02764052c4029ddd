package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/cleared-dev/transakce/internal/importer"
	"github.com/cleared-dev/transakce/internal/model"
	"github.com/cleared-dev/transakce/internal/store"
)

// OutcomeKind classifies what happened to one input row.
type OutcomeKind string

const (
	OutcomeImported   OutcomeKind = "imported"
	OutcomeDuplicate  OutcomeKind = "duplicate"
	OutcomeConversion OutcomeKind = "conversion"
	OutcomeValidation OutcomeKind = "validation"
	// OutcomePersistence is a row the store refused for a reason other
	// than a duplicate key.
	OutcomePersistence OutcomeKind = "persistence"
	OutcomeUnexpected  OutcomeKind = "unexpected"
)

// RowOutcome is the result of importing one row. Row is 1-based over the
// parsed records.
type RowOutcome struct {
	Row  int
	Kind OutcomeKind
	Err  error
	// TransactionID is set for imported rows.
	TransactionID string
	// RuleID is the rule that categorized the row, if any.
	RuleID string
}

// Recoverable reports whether the run may continue after this outcome.
func (o RowOutcome) Recoverable() bool {
	return o.Kind != OutcomeUnexpected
}

// RowError converts a failed outcome into a batch error entry.
func (o RowOutcome) RowError() model.RowError {
	return model.RowError{Row: o.Row, Kind: string(o.Kind), Message: o.Err.Error()}
}

// DuplicateError reports a row whose bank or document ID is already stored.
type DuplicateError struct {
	ID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate transaction ID: %s", e.ID)
}

// classify maps a row error onto an outcome kind. A unique constraint
// violation at insert time counts as a duplicate, the same as the pre-check.
// Only cancellation and a broken savepoint stop the run; any other store
// error stays with its row.
func classify(err error) OutcomeKind {
	var (
		dupErr  *DuplicateError
		convErr *importer.ConversionError
		valErrs model.ValidationErrors
		valErr  model.ValidationError
	)
	switch {
	case err == nil:
		return OutcomeImported
	case errors.Is(err, store.ErrSavepoint),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return OutcomeUnexpected
	case errors.As(err, &dupErr), errors.Is(err, store.ErrDuplicate):
		return OutcomeDuplicate
	case errors.As(err, &convErr):
		return OutcomeConversion
	case errors.As(err, &valErrs), errors.As(err, &valErr),
		errors.Is(err, importer.ErrMissingInvoiceNumber):
		return OutcomeValidation
	}
	return OutcomePersistence
}

// tally accumulates row outcomes for a batch.
type tally struct {
	imported, skipped, errors int
	details                   []model.RowError
}

func (t *tally) add(o RowOutcome) {
	switch o.Kind {
	case OutcomeImported:
		t.imported++
		return
	case OutcomeDuplicate:
		t.skipped++
	default:
		t.errors++
	}
	t.details = append(t.details, o.RowError())
}

// capped returns at most max error details; max <= 0 keeps all.
func (t *tally) capped(max int) []model.RowError {
	if max > 0 && len(t.details) > max {
		return t.details[:max]
	}
	return t.details
}
