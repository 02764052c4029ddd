package importer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeError reports input that is neither UTF-8 nor Windows-1250.
type DecodeError struct {
	Tried []string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unable to decode CSV, tried: %s", strings.Join(e.Tried, ", "))
}

// Decode converts raw file bytes to text. UTF-8 (with an optional byte
// order mark) is preferred; Czech exports in Windows-1250 are the fallback.
func Decode(data []byte) (string, error) {
	trimmed := bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(trimmed) {
		return string(trimmed), nil
	}

	out, err := charmap.Windows1250.NewDecoder().Bytes(data)
	if err != nil || bytes.ContainsRune(out, utf8.RuneError) {
		return "", &DecodeError{Tried: []string{"utf-8-sig", "cp1250"}}
	}
	return string(out), nil
}
