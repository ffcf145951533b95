// Package keys holds the canonical metric and band identifiers and the alias tables used to resolve the
// many spellings found in target documents and upstream producers.
package keys

import (
	"strings"
	"unicode"
)

// Metric keys.
const (
	LUFS     = "lufs"
	TruePeak = "truePeak"
	DR       = "dr"
	LRA      = "lra"
	Stereo   = "stereo"
)

// Band names.
const (
	Sub      = "sub"
	Bass     = "bass"
	LowMid   = "lowMid"
	Mid      = "mid"
	HighMid  = "highMid"
	Presence = "presence"
	Air      = "air"
)

//nolint:gochecknoglobals // lookup tables, effectively const
var (
	// Metrics lists metric keys in table order.
	Metrics = []string{LUFS, TruePeak, DR, LRA, Stereo}

	// Bands lists band names from lowest to highest frequency.
	Bands = []string{Sub, Bass, LowMid, Mid, HighMid, Presence, Air}

	// bandAliases is the bidirectional synonym table. Lookups try the key first, then its alias.
	bandAliases = map[string]string{
		Air:        "brilho",
		"brilho":   Air,
		Presence:   "presenca",
		"presenca": Presence,
	}

	// bandSpellings maps document spellings onto band names. Synonyms in bandAliases are left alone so a
	// profile keeps the name its document declared.
	bandSpellings = map[string]string{
		"sub":        Sub,
		"sub_bass":   Sub,
		"bass":       Bass,
		"low_bass":   Bass,
		"upper_bass": Bass,
		"lowmid":     LowMid,
		"low_mid":    LowMid,
		"mid":        Mid,
		"mids":       Mid,
		"highmid":    HighMid,
		"high_mid":   HighMid,
		"presence":   Presence,
		"presenca":   "presenca",
		"air":        Air,
		"brilho":     "brilho",
	}

	metricSpellings = map[string]string{
		"lufs":               LUFS,
		"lufsintegrated":     LUFS,
		"lufs_integrated":    LUFS,
		"integrated":         LUFS,
		"loudness":           LUFS,
		"truepeak":           TruePeak,
		"true_peak":          TruePeak,
		"truepeakdbtp":       TruePeak,
		"true_peak_dbtp":     TruePeak,
		"tp":                 TruePeak,
		"dr":                 DR,
		"dynamicrange":       DR,
		"dynamic_range":      DR,
		"dr_stat":            DR,
		"tt_dr":              DR,
		"lra":                LRA,
		"loudnessrange":      LRA,
		"loudness_range":     LRA,
		"stereo":             Stereo,
		"stereocorrelation":  Stereo,
		"stereo_correlation": Stereo,
		"correlation":        Stereo,
	}
)

// Alias returns the synonym of a band name, if it has one.
func Alias(name string) (string, bool) {
	alias, ok := bandAliases[name]

	return alias, ok
}

// BandSpelling maps a document band key (any case, snake or camel) onto the name a profile stores.
func BandSpelling(raw string) (string, bool) {
	name, ok := bandSpellings[fold(raw)]

	return name, ok
}

// CanonicalBand maps any band spelling, synonyms included, onto its canonical band name.
func CanonicalBand(raw string) (string, bool) {
	name, ok := BandSpelling(raw)
	if !ok {
		return "", false
	}

	for _, band := range Bands {
		if band == name {
			return name, true
		}
	}

	alias, ok := Alias(name)

	return alias, ok
}

// Normalize maps a metric or band key from any producer onto its canonical form.
// The second return is false for keys that match neither a metric nor a band.
func Normalize(raw string) (string, bool) {
	key := strings.TrimSpace(raw)
	key = strings.TrimPrefix(key, "band_")
	key = strings.TrimPrefix(key, "band:")

	if metric, ok := metricSpellings[fold(key)]; ok {
		return metric, true
	}

	if metric, ok := metricSpellings[strings.ToLower(key)]; ok {
		return metric, true
	}

	return CanonicalBand(key)
}

// IsBand reports whether a canonical key names a band.
func IsBand(key string) bool {
	for _, band := range Bands {
		if band == key {
			return true
		}
	}

	return false
}

// fold converts camelCase and dashed spellings to snake_case lowercase.
func fold(raw string) string {
	var builder strings.Builder

	for i, r := range raw {
		switch {
		case r == '-' || r == ' ':
			builder.WriteByte('_')
		case unicode.IsUpper(r):
			if i > 0 {
				builder.WriteByte('_')
			}

			builder.WriteRune(unicode.ToLower(r))
		default:
			builder.WriteRune(r)
		}
	}

	return builder.String()
}
