package importer

// RaiffeisenParser parses Raiffeisenbank statement exports.
type RaiffeisenParser struct{}

// Format returns the parser name.
func (p *RaiffeisenParser) Format() string { return FormatRaiffeisen }

// Parse maps data rows positionally. The repeated "Původní částka a měna"
// header is split by position into original amount and currency, and
// "Vlastní poznámka" fills the note only when "Poznámka" left it empty.
func (p *RaiffeisenParser) Parse(rows [][]string) ([]Record, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	headers := trimAll(rows[0])
	fields := raiffeisenColumns.resolve(headers)

	var original []int
	for i, h := range headers {
		if h == raiffeisenOriginalHeader {
			original = append(original, i)
		}
	}
	if len(original) >= 2 {
		fields[original[0]] = FieldOrigAmount
		fields[original[1]] = FieldOrigCurrency
	}

	var records []Record
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rec := make(Record)
		var override string
		for i, f := range fields {
			if f == "" || i >= len(row) {
				continue
			}
			if f == fieldNoteOverride {
				override = row[i]
				continue
			}
			rec[f] = row[i]
		}
		if override != "" && rec[FieldNote] == "" {
			rec[FieldNote] = override
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return records, nil
}
