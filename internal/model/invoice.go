package model

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Invoice is an issued invoice exported from iDoklad.
type Invoice struct {
	bun.BaseModel `bun:"table:invoices,alias:i"`

	ID             string           `bun:"id,pk"`
	Number         string           `bun:"number,notnull"`
	Description    string           `bun:"description,notnull"`
	OrderNumber    string           `bun:"order_number,notnull"`
	Series         string           `bun:"series,notnull"`
	CustomerName   string           `bun:"customer_name,notnull"`
	CompanyID      string           `bun:"company_id,notnull"`
	VATID          string           `bun:"vat_id,notnull"`
	VATIDSK        string           `bun:"vat_id_sk,notnull"`
	IssuedOn       *time.Time       `bun:"issued_on"`
	DueOn          *time.Time       `bun:"due_on"`
	TaxableOn      *time.Time       `bun:"taxable_on"`
	PaidOn         *time.Time       `bun:"paid_on"`
	TotalWithVAT   *decimal.Decimal `bun:"total_with_vat,type:numeric(15,2)"`
	TotalWithout   *decimal.Decimal `bun:"total_without_vat,type:numeric(15,2)"`
	VAT            *decimal.Decimal `bun:"vat,type:numeric(15,2)"`
	Currency       string           `bun:"currency,notnull"`
	PaymentStatus  string           `bun:"payment_status,notnull"`
	PaidAmount     *decimal.Decimal `bun:"paid_amount,type:numeric(15,2)"`
	VS             string           `bun:"vs,notnull"`
	Exported       bool             `bun:"exported,notnull"`
	SentToCustomer string           `bun:"sent_to_customer,notnull"`
	SentToAccount  bool             `bun:"sent_to_accountant,notnull"`
	ImportBatchID  *string          `bun:"import_batch_id"`
	CreatedBy      string           `bun:"created_by,notnull"`
	CreatedAt      time.Time        `bun:"created_at,notnull"`
}
