package model

import (
	"time"

	"github.com/uptrace/bun"
)

// BatchStatus is the lifecycle state of an import batch.
type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
	BatchRolledBack BatchStatus = "rolled_back"
)

// BatchKind distinguishes bank statement imports from invoice imports.
type BatchKind string

const (
	BatchTransactions BatchKind = "transactions"
	BatchInvoices     BatchKind = "invoices"
)

// RowError describes why one input row was not imported. Row is zero for
// run-level failures.
type RowError struct {
	Row     int    `json:"row,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"error"`
}

// ImportBatch records one import run.
type ImportBatch struct {
	bun.BaseModel `bun:"table:import_batches,alias:b"`

	ID            string      `bun:"id,pk"`
	Kind          BatchKind   `bun:"kind,notnull"`
	Filename      string      `bun:"filename,notnull"`
	Format        string      `bun:"format,notnull"`
	Status        BatchStatus `bun:"status,notnull"`
	TotalRows     int         `bun:"total_rows,notnull"`
	ImportedCount int         `bun:"imported_count,notnull"`
	SkippedCount  int         `bun:"skipped_count,notnull"`
	ErrorCount    int         `bun:"error_count,notnull"`
	Errors        []RowError  `bun:"error_details,type:jsonb"`
	StartedAt     time.Time   `bun:"started_at,notnull"`
	CompletedAt   *time.Time  `bun:"completed_at"`
	CreatedBy     string      `bun:"created_by,notnull"`
}

// Finished reports whether the batch reached a terminal state.
func (b *ImportBatch) Finished() bool {
	switch b.Status {
	case BatchCompleted, BatchFailed, BatchRolledBack:
		return true
	}
	return false
}
