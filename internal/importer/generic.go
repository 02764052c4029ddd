package importer

import "strings"

// GenericParser parses statements whose first row holds Czech column names.
type GenericParser struct{}

// Format returns the parser name.
func (p *GenericParser) Format() string { return FormatGeneric }

// Parse maps every non-blank data row through the generic column map.
func (p *GenericParser) Parse(rows [][]string) ([]Record, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	fields := genericColumns.resolve(trimAll(rows[0]))

	var records []Record
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rec := make(Record)
		for i, f := range fields {
			if f == "" || i >= len(row) {
				continue
			}
			rec[f] = row[i]
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return records, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
