package parser

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// Tokenize lower-cases raw input and splits it on whitespace. Punctuation is
// kept so handlers can read forms like "(3,2)".
func Tokenize(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return strings.Fields(lower.String(raw))
}

func normaliseKeyword(k string) string {
	return strings.TrimSpace(lower.String(k))
}
