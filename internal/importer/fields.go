package importer

// Field is a canonical transaction field name produced by a dialect parser.
type Field string

const (
	FieldDate           Field = "date"
	FieldBookingDate    Field = "booking_date"
	FieldAccount        Field = "account"
	FieldType           Field = "type"
	FieldMessage        Field = "message"
	FieldVS             Field = "vs"
	FieldKS             Field = "ks"
	FieldSS             Field = "ss"
	FieldAmount         Field = "amount"
	FieldCounterAccount Field = "counter_account"
	FieldCounterName    Field = "counter_name"
	FieldTxType         Field = "tx_type"
	FieldOrigAmount     Field = "orig_amount"
	FieldOrigCurrency   Field = "orig_currency"
	FieldFees           Field = "fees"
	FieldExternalID     Field = "external_id"
	FieldNote           Field = "note"
	FieldMerchant       Field = "merchant"
	FieldCity           Field = "city"
	FieldCurrency       Field = "currency"
	FieldCounterBank    Field = "counter_bank"
	FieldReference      Field = "reference"
)

// Sentinel targets used inside column maps. They never appear in a Record.
const (
	fieldSkip         Field = "_skip"
	fieldNoteOverride Field = "_note_override"
	fieldOwnNumber    Field = "_own_number"
	fieldOwnBank      Field = "_own_bank"
	fieldCounterNum   Field = "_counter_number"
	fieldCounterBank  Field = "_counter_bank"
)

func (f Field) internal() bool {
	return len(f) > 0 && f[0] == '_'
}

// Record is one parsed data row: canonical field to raw string value.
type Record map[Field]string

// Get returns the value of f, or "" when absent.
func (r Record) Get(f Field) string {
	return r[f]
}
