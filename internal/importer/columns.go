package importer

// columnMapping binds one source header to a canonical field.
type columnMapping struct {
	Header string
	Field  Field
}

// columnMap is an ordered header lookup. The first entry for a header wins.
type columnMap []columnMapping

func (m columnMap) lookup(header string) (Field, bool) {
	for _, c := range m {
		if c.Header == header {
			return c.Field, true
		}
	}
	return "", false
}

// resolve maps each header position to its field. Unknown and skipped
// headers resolve to "".
func (m columnMap) resolve(headers []string) []Field {
	fields := make([]Field, len(headers))
	for i, h := range headers {
		f, ok := m.lookup(h)
		if !ok || f == fieldSkip {
			continue
		}
		fields[i] = f
	}
	return fields
}

var genericColumns = columnMap{
	{"Datum", FieldDate},
	{"Účet", FieldAccount},
	{"Typ", FieldType},
	{"Poznámka/Zpráva", FieldMessage},
	{"Poznámka/zpráva", FieldMessage},
	{"VS", FieldVS},
	{"Variabilní symbol", FieldVS},
	{"Částka", FieldAmount},
	{"Datum zaúčtování", FieldBookingDate},
	{"Číslo protiúčtu", FieldCounterAccount},
	{"Název protiúčtu", FieldCounterName},
	{"Typ transakce", FieldTxType},
	{"KS", FieldKS},
	{"Konstantní symbol", FieldKS},
	{"SS", FieldSS},
	{"Specifický symbol", FieldSS},
	{"Původní částka", FieldOrigAmount},
	{"Původní měna", FieldOrigCurrency},
	{"Poplatky", FieldFees},
	{"Id transakce", FieldExternalID},
	{"ID transakce", FieldExternalID},
	{"Vlastní poznámka", FieldNote},
	{"Název merchanta", FieldMerchant},
	{"Město", FieldCity},
	{"Měna", FieldCurrency},
	{"Banka protiúčtu", FieldCounterBank},
	{"Reference", FieldReference},
}

// raiffeisenOriginalHeader appears twice: original amount, then original currency.
const raiffeisenOriginalHeader = "Původní částka a měna"

var raiffeisenColumns = columnMap{
	{"Datum provedení", FieldDate},
	{"Datum zaúčtování", FieldBookingDate},
	{"Číslo účtu", FieldAccount},
	{"Název účtu", fieldSkip},
	{"Kategorie transakce", FieldType},
	{"Číslo protiúčtu", FieldCounterAccount},
	{"Název protiúčtu", FieldCounterName},
	{"Typ transakce", FieldTxType},
	{"Zpráva", FieldMessage},
	{"Poznámka", FieldNote},
	{"VS", FieldVS},
	{"KS", FieldKS},
	{"SS", FieldSS},
	{"Zaúčtovaná částka", FieldAmount},
	{"Měna účtu", FieldCurrency},
	{"Poplatek", FieldFees},
	{"Id transakce", FieldExternalID},
	{"Vlastní poznámka", fieldNoteOverride},
	{"Název obchodníka", FieldMerchant},
	{"Město", FieldCity},
}

var creditasColumns = columnMap{
	{"Můj účet", fieldOwnNumber},
	{"Můj účet-banka", fieldOwnBank},
	{"Název mého účtu", fieldSkip},
	{"Datum zaúčtování", FieldBookingDate},
	{"Datum provedení", FieldDate},
	{"Protiúčet", fieldCounterNum},
	{"Protiúčet-banka", fieldCounterBank},
	{"Název protiúčtu", FieldCounterName},
	{"Kód transakce", FieldType},
	{"VS", FieldVS},
	{"SS", FieldSS},
	{"KS", FieldKS},
	{"E2E", FieldReference},
	{"Zpráva pro protistranu", FieldMessage},
	{"Poznámka", FieldNote},
	{"Platba/Vklad", fieldSkip},
	{"Částka", FieldAmount},
	{"Měna", FieldCurrency},
	{"Kategorie", fieldSkip},
}
