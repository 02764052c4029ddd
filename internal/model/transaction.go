package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// TxStatus is the workflow state of a transaction.
type TxStatus string

const (
	StatusImported  TxStatus = "importovano"
	StatusProcessed TxStatus = "zpracovano"
	StatusApproved  TxStatus = "schvaleno"
	StatusEdited    TxStatus = "upraveno"
	StatusError     TxStatus = "chyba"
)

// TxStatuses lists every workflow state in display order.
var TxStatuses = []TxStatus{StatusImported, StatusProcessed, StatusApproved, StatusEdited, StatusError}

// Valid reports whether s is a known status.
func (s TxStatus) Valid() bool {
	for _, v := range TxStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IncomeExpense flags a transaction as income (P) or expense (V).
type IncomeExpense string

const (
	Income  IncomeExpense = "P"
	Expense IncomeExpense = "V"
)

// OwnFlag marks whether a transaction is internal (V), external (N) or unassigned (-).
type OwnFlag string

const (
	OwnInternal OwnFlag = "V"
	OwnExternal OwnFlag = "N"
	OwnNone     OwnFlag = "-"
)

// Unit is an organizational unit (KMEN) code.
type Unit string

const (
	UnitMH Unit = "MH"
	UnitSK Unit = "SK"
	UnitXP Unit = "XP"
	UnitFR Unit = "FR"
)

// Units lists the organizational units in split order.
var Units = []Unit{UnitMH, UnitSK, UnitXP, UnitFR}

// DefaultCurrency is used when a bank file carries no currency column.
const DefaultCurrency = "CZK"

// Transaction is one bank movement with its categorization.
type Transaction struct {
	bun.BaseModel `bun:"table:transactions,alias:t"`

	ID string `bun:"id,pk"`

	// Source fields, written once at import.
	Date           time.Time        `bun:"date,notnull"`
	BookingDate    *time.Time       `bun:"booking_date"`
	Account        string           `bun:"account,notnull"`
	Type           string           `bun:"type,notnull"`
	Message        string           `bun:"message,notnull"`
	VS             string           `bun:"vs,notnull"`
	KS             string           `bun:"ks,notnull"`
	SS             string           `bun:"ss,notnull"`
	Amount         decimal.Decimal  `bun:"amount,type:numeric(15,2),notnull"`
	CounterAccount string           `bun:"counter_account,notnull"`
	CounterName    string           `bun:"counter_name,notnull"`
	TxType         string           `bun:"tx_type,notnull"`
	OrigAmount     *decimal.Decimal `bun:"orig_amount,type:numeric(15,2)"`
	OrigCurrency   string           `bun:"orig_currency,notnull"`
	Fees           *decimal.Decimal `bun:"fees,type:numeric(15,2)"`
	ExternalID     string           `bun:"external_id,notnull"`
	Note           string           `bun:"note,notnull"`
	Merchant       string           `bun:"merchant,notnull"`
	City           string           `bun:"city,notnull"`
	Currency       string           `bun:"currency,notnull"`
	CounterBank    string           `bun:"counter_bank,notnull"`
	Reference      string           `bun:"reference,notnull"`

	// Categorization fields.
	Status        TxStatus        `bun:"status,notnull"`
	IncomeExpense IncomeExpense   `bun:"income_expense,notnull"`
	OwnFlag       OwnFlag         `bun:"own_flag,notnull"`
	Tax           bool            `bun:"tax,notnull"`
	Kind          string          `bun:"kind,notnull"`
	Detail        string          `bun:"detail,notnull"`
	Unit          Unit            `bun:"unit,notnull"`
	MHPct         decimal.Decimal `bun:"mh_pct,type:numeric(5,2),notnull"`
	SKPct         decimal.Decimal `bun:"sk_pct,type:numeric(5,2),notnull"`
	XPPct         decimal.Decimal `bun:"xp_pct,type:numeric(5,2),notnull"`
	FRPct         decimal.Decimal `bun:"fr_pct,type:numeric(5,2),notnull"`
	ProjectID     *string         `bun:"project_id"`
	ProductID     *string         `bun:"product_id"`
	SubgroupID    *string         `bun:"subgroup_id"`

	ImportBatchID *string   `bun:"import_batch_id"`
	IsActive      bool      `bun:"is_active,notnull"`
	CreatedBy     string    `bun:"created_by,notnull"`
	UpdatedBy     string    `bun:"updated_by,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}

// NewTransaction returns a transaction with the import defaults applied.
func NewTransaction() *Transaction {
	return &Transaction{
		Currency: DefaultCurrency,
		Status:   StatusImported,
		OwnFlag:  OwnNone,
		MHPct:    decimal.Zero,
		SKPct:    decimal.Zero,
		XPPct:    decimal.Zero,
		FRPct:    decimal.Zero,
		IsActive: true,
	}
}

// IsCategorized reports whether both the income/expense flag and kind are set.
func (t *Transaction) IsCategorized() bool {
	return t.IncomeExpense != "" && t.Kind != ""
}

// SplitTotal returns the sum of the four unit percentages.
func (t *Transaction) SplitTotal() decimal.Decimal {
	return t.MHPct.Add(t.SKPct).Add(t.XPPct).Add(t.FRPct)
}

// SplitAssigned reports whether the unit split is fully assigned.
func (t *Transaction) SplitAssigned() bool {
	return t.SplitTotal().Equal(hundred)
}

// UnitPct returns the percentage allocated to u.
func (t *Transaction) UnitPct(u Unit) decimal.Decimal {
	switch u {
	case UnitMH:
		return t.MHPct
	case UnitSK:
		return t.SKPct
	case UnitXP:
		return t.XPPct
	case UnitFR:
		return t.FRPct
	}
	return decimal.Zero
}

// SearchText joins message, note and counterparty name for keyword matching.
func (t *Transaction) SearchText() string {
	var parts []string
	for _, s := range []string{t.Message, t.Note, t.CounterName} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// DeriveIncomeExpense sets the flag from the amount sign when it is unset.
func (t *Transaction) DeriveIncomeExpense() {
	if t.IncomeExpense != "" || t.Amount.IsZero() {
		return
	}
	if t.Amount.IsPositive() {
		t.IncomeExpense = Income
	} else {
		t.IncomeExpense = Expense
	}
}
