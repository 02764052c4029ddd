package ingest

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/transakce/internal/importer"
	"github.com/cleared-dev/transakce/internal/model"
)

// candidateFields fixes the conversion order so the first failing field is
// reported deterministically.
var candidateFields = []importer.Field{
	importer.FieldDate,
	importer.FieldBookingDate,
	importer.FieldAmount,
	importer.FieldOrigAmount,
	importer.FieldFees,
	importer.FieldAccount,
	importer.FieldType,
	importer.FieldMessage,
	importer.FieldVS,
	importer.FieldKS,
	importer.FieldSS,
	importer.FieldCounterAccount,
	importer.FieldCounterName,
	importer.FieldTxType,
	importer.FieldOrigCurrency,
	importer.FieldExternalID,
	importer.FieldNote,
	importer.FieldMerchant,
	importer.FieldCity,
	importer.FieldCurrency,
	importer.FieldCounterBank,
	importer.FieldReference,
}

// buildCandidate converts a parsed record into an unsaved transaction.
// Blank values are left at their defaults.
func buildCandidate(rec importer.Record) (*model.Transaction, error) {
	t := model.NewTransaction()
	var hasAmount bool

	for _, f := range candidateFields {
		v := strings.TrimSpace(rec.Get(f))
		if v == "" {
			continue
		}
		switch f {
		case importer.FieldDate:
			d, err := importer.ParseDate(v)
			if err != nil {
				return nil, err
			}
			t.Date = d
		case importer.FieldBookingDate:
			d, err := importer.ParseDate(v)
			if err != nil {
				return nil, err
			}
			t.BookingDate = &d
		case importer.FieldAmount:
			d, err := importer.ParseDecimal(v)
			if err != nil {
				return nil, err
			}
			t.Amount = d
			hasAmount = true
		case importer.FieldOrigAmount:
			d, err := parseOptionalDecimal(v)
			if err != nil {
				return nil, err
			}
			t.OrigAmount = d
		case importer.FieldFees:
			d, err := parseOptionalDecimal(v)
			if err != nil {
				return nil, err
			}
			t.Fees = d
		default:
			setSourceField(t, f, v)
		}
	}

	if !hasAmount {
		return nil, model.ValidationErrors{{Field: "amount", Description: "required"}}
	}
	return t, nil
}

func parseOptionalDecimal(v string) (*decimal.Decimal, error) {
	d, err := importer.ParseDecimal(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func setSourceField(t *model.Transaction, f importer.Field, v string) {
	switch f {
	case importer.FieldAccount:
		t.Account = v
	case importer.FieldType:
		t.Type = v
	case importer.FieldMessage:
		t.Message = v
	case importer.FieldVS:
		t.VS = v
	case importer.FieldKS:
		t.KS = v
	case importer.FieldSS:
		t.SS = v
	case importer.FieldCounterAccount:
		t.CounterAccount = v
	case importer.FieldCounterName:
		t.CounterName = v
	case importer.FieldTxType:
		t.TxType = v
	case importer.FieldOrigCurrency:
		t.OrigCurrency = v
	case importer.FieldExternalID:
		t.ExternalID = v
	case importer.FieldNote:
		t.Note = v
	case importer.FieldMerchant:
		t.Merchant = v
	case importer.FieldCity:
		t.City = v
	case importer.FieldCurrency:
		t.Currency = v
	case importer.FieldCounterBank:
		t.CounterBank = v
	case importer.FieldReference:
		t.Reference = v
	}
}
