package region

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks after NFD decomposition, so that e.g.
// "Kepulauan Seribu" survives datasets that carry stray accents.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName canonicalizes an administrative name for index lookups:
// trimmed, upper-cased, single-spaced, diacritics folded. Boundary datasets
// and the region code list disagree on all four of those.
func NormalizeName(name string) string {
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		folded = name
	}
	return strings.ToUpper(strings.Join(strings.Fields(folded), " "))
}
