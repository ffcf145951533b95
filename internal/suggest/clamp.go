package suggest

import (
	"math"

	"github.com/farcloser/cambium/internal/keys"
)

// DefaultCap bounds the correction surfaced for a band without its own cap.
const DefaultCap = 3.0

// Caps shrink as frequency rises. Document spellings are listed next to the canonical names so a cap is
// found for whatever key a producer emitted.
//
//nolint:gochecknoglobals // read-only table
var bandCaps = map[string]float64{
	keys.Sub:      5.0,
	keys.Bass:     4.5,
	"low_bass":    4.5,
	"upper_bass":  4.0,
	keys.LowMid:   3.5,
	"low_mid":     3.5,
	keys.Mid:      3.0,
	keys.HighMid:  2.5,
	"high_mid":    2.5,
	keys.Presence: 2.5,
	"presenca":    2.5,
	keys.Air:      2.0,
	"brilho":      2.0,
}

// Cap returns the largest correction, in dB, surfaced for band.
func Cap(band string) float64 {
	if c, ok := bandCaps[band]; ok {
		return c
	}

	if canonical, ok := keys.CanonicalBand(band); ok {
		return bandCaps[canonical]
	}

	return DefaultCap
}

// Clamp bounds raw to [-Cap(band), Cap(band)].
func Clamp(band string, raw float64) float64 {
	limit := Cap(band)

	return math.Max(-limit, math.Min(limit, raw))
}
