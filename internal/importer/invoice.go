package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/transakce/internal/model"
)

// FormatIDoklad names the iDoklad invoice export.
const FormatIDoklad = "idoklad"

// iDoklad export column headers.
const (
	invNumber         = "Číslo dokladu"
	invDescription    = "Popis"
	invOrderNumber    = "Číslo objednávky"
	invSeries         = "Řada"
	invCustomer       = "Název/Jméno"
	invCompanyID      = "IČ"
	invVATID          = "DIČ / IČ DPH"
	invVATIDSK        = "DIČ (SK)"
	invIssued         = "Vystaveno"
	invDue            = "Splatnost"
	invTaxable        = "DUZP"
	invPaid           = "Datum platby"
	invTotalWithVAT   = "Celkem s DPH"
	invTotalWithout   = "Celkem bez DPH"
	invVAT            = "DPH"
	invCurrency       = "Měna"
	invPaymentStatus  = "Stav úhrady"
	invPaidAmount     = "Uhrazená částka"
	invVS             = "Variabilní symbol"
	invExported       = "Exportováno"
	invSentToCustomer = "Odesláno odběrateli"
	invSentToAccount  = "Odesláno účetnímu"
)

// ErrMissingInvoiceNumber is returned for a row without a document number.
var ErrMissingInvoiceNumber = errors.New("missing invoice number")

var invoiceDateLayouts = []string{"1/2/2006", "2.1.2006", "2006-01-02"}

// InvoiceRow is one iDoklad data row keyed by header.
type InvoiceRow map[string]string

// Number returns the trimmed document number.
func (r InvoiceRow) Number() string {
	return strings.TrimSpace(r[invNumber])
}

// ReadInvoiceRows reads a comma separated iDoklad export.
func ReadInvoiceRows(src io.Reader) ([]InvoiceRow, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("reading invoice export: %w", err)
	}
	text, err := Decode(data)
	if err != nil {
		return nil, err
	}
	rows, err := ReadRows(strings.NewReader(text), ',')
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	headers := trimAll(rows[0])
	var out []InvoiceRow
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rec := make(InvoiceRow, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// ConvertInvoice builds an Invoice from a row. ID, batch and audit fields
// are left for the caller.
func ConvertInvoice(row InvoiceRow) (*model.Invoice, error) {
	number := row.Number()
	if number == "" {
		return nil, ErrMissingInvoiceNumber
	}
	get := func(h string) string { return strings.TrimSpace(row[h]) }

	inv := &model.Invoice{
		Number:         number,
		Description:    get(invDescription),
		OrderNumber:    get(invOrderNumber),
		Series:         get(invSeries),
		CustomerName:   get(invCustomer),
		CompanyID:      get(invCompanyID),
		VATID:          get(invVATID),
		VATIDSK:        get(invVATIDSK),
		Currency:       get(invCurrency),
		PaymentStatus:  get(invPaymentStatus),
		VS:             get(invVS),
		Exported:       parseBool(get(invExported)),
		SentToCustomer: get(invSentToCustomer),
		SentToAccount:  parseBool(get(invSentToAccount)),
	}
	if inv.Currency == "" {
		inv.Currency = model.DefaultCurrency
	}

	var err error
	dates := []struct {
		header string
		dst    **time.Time
	}{
		{invIssued, &inv.IssuedOn},
		{invDue, &inv.DueOn},
		{invTaxable, &inv.TaxableOn},
		{invPaid, &inv.PaidOn},
	}
	for _, d := range dates {
		if *d.dst, err = parseInvoiceDate(get(d.header)); err != nil {
			return nil, fmt.Errorf("%s: %w", d.header, err)
		}
	}

	amounts := []struct {
		header string
		dst    **decimal.Decimal
	}{
		{invTotalWithVAT, &inv.TotalWithVAT},
		{invTotalWithout, &inv.TotalWithout},
		{invVAT, &inv.VAT},
		{invPaidAmount, &inv.PaidAmount},
	}
	for _, a := range amounts {
		if *a.dst, err = parseInvoiceAmount(get(a.header)); err != nil {
			return nil, fmt.Errorf("%s: %w", a.header, err)
		}
	}
	return inv, nil
}

func parseInvoiceDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	for _, layout := range invoiceDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			d := dateOnly(t)
			return &d, nil
		}
	}
	return nil, &ConversionError{Kind: "date", Value: v}
}

func parseInvoiceAmount(v string) (*decimal.Decimal, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, &ConversionError{Kind: "decimal", Value: v}
	}
	return &d, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "ano", "yes", "true", "1":
		return true
	}
	return false
}
