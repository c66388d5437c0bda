package domain

import (
	"strings"
	"unicode"
)

// DeriveDocumentName builds the deterministic document name from the
// upload metadata: compact procedure date, then hospital, doctor,
// procedure and billing number. Whitespace runs become single
// underscores, anything outside [A-Za-z0-9-_] becomes an underscore,
// redundant underscores collapse and leading/trailing ones are stripped.
// The result doubles as the human-visible label and the unique lookup
// key, so it must stay URL-safe.
func DeriveDocumentName(procedureDate, hospital, doctor, procedure, billingNo string) string {
	date := procedureDate
	if parsed, ok := ParseProcedureDate(procedureDate); ok {
		date = parsed.Format("20060102")
	}
	joined := strings.Join([]string{date, hospital, doctor, procedure, billingNo}, "_")
	return sanitizeName(joined)
}

func sanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := false
	for _, r := range name {
		mapped := r
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
		case unicode.IsSpace(r):
			mapped = '_'
		default:
			mapped = '_'
		}
		if mapped == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}
		b.WriteRune(mapped)
	}
	return strings.Trim(b.String(), "_")
}
