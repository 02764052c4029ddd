package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ConversionError reports a literal that could not be converted.
type ConversionError struct {
	Kind  string // "date" or "decimal"
	Value string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("unable to parse %s: %s", e.Kind, e.Value)
}

// Date layouts tried in order. The datetime layout must precede the bare
// date so "16.08.2025 05:42" is not rejected as trailing garbage. Day and
// month take one or two digits.
var dateLayouts = []string{
	"2.1.2006 15:04",
	"2.1.2006",
	"2/1/2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// ParseDate parses a bank date and returns midnight UTC of that day.
func ParseDate(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return dateOnly(t), nil
		}
	}
	return time.Time{}, &ConversionError{Kind: "date", Value: value}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDecimal parses a Czech formatted number such as "-1 234,50".
// Spaces and non-breaking spaces are thousands separators, comma is the
// decimal separator.
func ParseDecimal(value string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(strings.TrimSpace(value))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, &ConversionError{Kind: "decimal", Value: value}
	}
	return d, nil
}
