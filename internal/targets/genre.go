package targets

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultGenre names the reference document used when no genre is given.
const DefaultGenre = "default"

// NormalizeGenre folds a genre name into its lookup form: lowercase, accents stripped,
// spaces and dashes turned into underscores, anything else outside [a-z0-9_] dropped.
// "Funk Mandela", "funk-mandela" and "FUNK_MANDELA" all become "funk_mandela".
func NormalizeGenre(name string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		stripped = name
	}

	var builder strings.Builder

	for _, r := range strings.ToLower(strings.TrimSpace(stripped)) {
		switch {
		case r == ' ' || r == '-':
			builder.WriteByte('_')
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			builder.WriteRune(r)
		default:
		}
	}

	return builder.String()
}
