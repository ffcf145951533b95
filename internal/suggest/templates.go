package suggest

import (
	"fmt"
	"math"

	"github.com/farcloser/cambium/internal/keys"
	"github.com/farcloser/cambium/internal/types"
)

type phrasing struct {
	increase string
	decrease string
}

//nolint:gochecknoglobals // read-only tables
var (
	bandPhrasing = map[string]phrasing{
		keys.Sub:      {"Add about %.1f dB of sub for weight", "Reduce the sub by about %.1f dB to keep it under control"},
		keys.Bass:     {"Boost the bass by %.1f dB for more impact", "Cut the bass by %.1f dB to balance the low end"},
		"upper_bass":  {"Boost the upper bass by %.1f dB for body", "Cut the upper bass by %.1f dB to clear it up"},
		keys.LowMid:   {"Raise the low mids by %.1f dB to warm the mix", "Reduce the low mids by about %.1f dB to clean up the mix"},
		keys.Mid:      {"Raise the mids by %.1f dB for presence", "Reduce the mids by %.1f dB to open up the mix"},
		keys.HighMid:  {"Raise the high mids by %.1f dB for attack", "Reduce the high mids by about %.1f dB to soften them"},
		keys.Presence: {"Raise the presence by %.1f dB to bring the vocal forward", "Reduce the presence by about %.1f dB to soften the vocal"},
		keys.Air:      {"Add %.1f dB of air for brightness", "Reduce the air by about %.1f dB to tame harshness"},
	}

	metricPhrasing = map[string]phrasing{
		keys.LUFS: {
			"Raise integrated loudness by %.1f LU towards %.1f LUFS",
			"Lower integrated loudness by %.1f LU towards %.1f LUFS",
		},
		keys.TruePeak: {
			"Headroom to spare: the ceiling can come up %.1f dB towards %.1f dBTP",
			"Lower the limiter ceiling by %.1f dB to land at %.1f dBTP",
		},
		keys.DR: {
			"Ease compression and limiting to recover %.1f dB of dynamic range (target %.1f dB)",
			"Compress more to reduce the dynamic range by %.1f dB (target %.1f dB)",
		},
		keys.LRA: {
			"Let sections breathe: widen the loudness range by %.1f LU (target %.1f LU)",
			"Even out sections: narrow the loudness range by %.1f LU (target %.1f LU)",
		},
		keys.Stereo: {
			"Narrow the stereo image: raise correlation by %.2f (target %.2f)",
			"Widen the stereo image: lower correlation by %.2f (target %.2f)",
		},
	}
)

func (p phrasing) pick(direction string) string {
	if direction == types.DirectionIncrease {
		return p.increase
	}

	return p.decrease
}

// bandMessage phrases a clamped band correction.
func bandMessage(band, direction string, delta float64) string {
	magnitude := math.Abs(delta)

	if p, ok := bandPhrasing[band]; ok {
		return fmt.Sprintf(p.pick(direction), magnitude)
	}

	if canonical, ok := keys.CanonicalBand(band); ok {
		if p, ok := bandPhrasing[canonical]; ok {
			return fmt.Sprintf(p.pick(direction), magnitude)
		}
	}

	verb := "Decrease"
	if direction == types.DirectionIncrease {
		verb = "Increase"
	}

	return fmt.Sprintf("%s %s by %.1f dB", verb, band, magnitude)
}

// metricMessage phrases a metric correction of delta towards target.
func metricMessage(metric, direction string, delta, target float64) string {
	p, ok := metricPhrasing[metric]
	if !ok {
		verb := "Decrease"
		if direction == types.DirectionIncrease {
			verb = "Increase"
		}

		return fmt.Sprintf("%s %s by %.1f towards %.1f", verb, metric, math.Abs(delta), target)
	}

	return fmt.Sprintf(p.pick(direction), math.Abs(delta), target)
}
