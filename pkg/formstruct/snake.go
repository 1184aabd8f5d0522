package formstruct

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// foldMarks decomposes accented characters and strips the combining marks,
// so "Numéro" canonicalizes the same as "Numero".
var foldMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ToSnakeCase canonicalizes text into a snake_case identifier. The operation
// is total: empty or all-punctuation input yields an empty string, which
// callers requiring non-empty keys filter out. "#" reads as "number", so
// "Soil pH #2" becomes "soil_ph_number_2". Applying it twice gives the
// same result as applying it once.
func ToSnakeCase(text string) string {
	if text == "" {
		return ""
	}
	if folded, _, err := transform.String(foldMarks, text); err == nil {
		text = folded
	}
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.ReplaceAll(text, "#", " number ")
	text = nonAlnum.ReplaceAllString(text, "_")
	return strings.Trim(text, "_")
}

// joinClean joins the non-blank parts with single spaces and squeezes any
// internal runs of whitespace.
func joinClean(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(strings.Fields(strings.Join(kept, " ")), " ")
}
