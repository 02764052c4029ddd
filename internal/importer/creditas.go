package importer

import (
	"fmt"
	"strings"
)

// creditasHeaderScan is how many leading rows are searched for the
// transaction header row.
const creditasHeaderScan = 10

// Columns that together identify the Creditas transaction header row.
var creditasHeaderMarkers = []string{"Částka", "Protiúčet", "Platba/Vklad"}

// FormatError reports a file whose layout does not match its detected format.
type FormatError struct {
	Format string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Format, e.Reason)
}

// CreditasParser parses Creditas exports, which start with an account
// metadata block before the transaction table.
type CreditasParser struct{}

// Format returns the parser name.
func (p *CreditasParser) Format() string { return FormatCreditas }

// Parse locates the transaction header row, then maps each data row.
// Account numbers and bank codes are joined as "number/bank", and a blank
// execution date falls back to the booking date.
func (p *CreditasParser) Parse(rows [][]string) ([]Record, error) {
	headerIdx := findCreditasHeader(rows)
	if headerIdx < 0 {
		return nil, &FormatError{Format: FormatCreditas, Reason: "cannot find transaction header row"}
	}
	fields := creditasColumns.resolve(trimAll(rows[headerIdx]))

	var records []Record
	for _, row := range rows[headerIdx+1:] {
		if isBlankRow(row) {
			continue
		}
		rec := make(Record)
		staged := make(map[Field]string)
		for i, f := range fields {
			if f == "" || i >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[i])
			if f.internal() {
				staged[f] = v
				continue
			}
			rec[f] = v
		}

		rec[FieldAccount] = joinAccount(staged[fieldOwnNumber], staged[fieldOwnBank])
		if num := staged[fieldCounterNum]; num != "" {
			rec[FieldCounterAccount] = joinAccount(num, staged[fieldCounterBank])
		}
		if bank := staged[fieldCounterBank]; bank != "" {
			rec[FieldCounterBank] = bank
		}
		if rec[FieldDate] == "" && rec[FieldBookingDate] != "" {
			rec[FieldDate] = rec[FieldBookingDate]
		}

		records = append(records, rec)
	}
	return records, nil
}

func findCreditasHeader(rows [][]string) int {
	for i, row := range rows {
		if i >= creditasHeaderScan {
			break
		}
		cells := make(map[string]bool, len(row))
		for _, c := range row {
			cells[strings.TrimSpace(c)] = true
		}
		found := true
		for _, m := range creditasHeaderMarkers {
			if !cells[m] {
				found = false
				break
			}
		}
		if found {
			return i
		}
	}
	return -1
}

// joinAccount renders "number/bank", or the bare number when a half is missing.
func joinAccount(number, bank string) string {
	if number != "" && bank != "" {
		return number + "/" + bank
	}
	return number
}
