package model

import (
	"time"

	"github.com/uptrace/bun"
)

// AuditActionImport is recorded for every transaction created by an import.
const AuditActionImport = "Import z CSV"

// AuditActionRules is recorded when stored transactions are recategorized.
const AuditActionRules = "Aplikace pravidel"

// AuditEntry is one change made to a transaction.
type AuditEntry struct {
	bun.BaseModel `bun:"table:transaction_audit_log,alias:a"`

	ID            string    `bun:"id,pk"`
	TransactionID string    `bun:"transaction_id,notnull"`
	User          string    `bun:"user_name,notnull"`
	Action        string    `bun:"action,notnull"`
	Details       string    `bun:"details,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}
