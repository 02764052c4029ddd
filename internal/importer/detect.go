package importer

// Supported bank statement formats.
const (
	FormatCreditas   = "creditas"
	FormatRaiffeisen = "raiffeisen"
	FormatGeneric    = "generic"
)

// Creditas exports open with an account metadata block whose header row
// carries all of these.
var creditasSignature = []string{"Typ účtu", "IBAN", "BIC"}

// Any one of these identifies a Raiffeisen export.
var raiffeisenSignature = []string{"Datum provedení", "Zaúčtovaná částka", "Název obchodníka"}

// Detect classifies a file by its first row. Creditas is checked first
// because its preamble headers would otherwise fall through to generic.
func Detect(headers []string) string {
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		seen[h] = true
	}

	creditas := true
	for _, h := range creditasSignature {
		if !seen[h] {
			creditas = false
			break
		}
	}
	if creditas {
		return FormatCreditas
	}

	for _, h := range raiffeisenSignature {
		if seen[h] {
			return FormatRaiffeisen
		}
	}
	return FormatGeneric
}
