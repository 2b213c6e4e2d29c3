// Package normalize builds comparison keys for place names and locations.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var turkish = strings.NewReplacer(
	"ç", "c",
	"ğ", "g",
	"ı", "i",
	"ö", "o",
	"ş", "s",
	"ü", "u",
	"â", "a",
	"î", "i",
	"û", "u",
)

// Key lowercases s, folds Turkish letters and other diacritics to their
// ASCII base and collapses runs of whitespace. Equal keys mean two strings
// name the same thing.
func Key(s string) string {
	// cases.Caser carries state and is not safe for concurrent use.
	lower := cases.Lower(language.Und).String(s)
	folded := turkish.Replace(lower)

	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripMarks, folded)
	if err != nil {
		stripped = folded
	}
	return strings.Join(strings.Fields(stripped), " ")
}
