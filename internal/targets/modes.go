package targets

import (
	"fmt"
	"strings"

	"github.com/farcloser/cambium/internal/keys"
	"github.com/farcloser/cambium/internal/types"
)

// Mode is the listening context a profile is resolved for.
type Mode string

const (
	ModeClub      Mode = "club"      // document targets as declared
	ModeStreaming Mode = "streaming" // platform normalization: -14 LUFS, -1 dBTP
	ModeCar       Mode = "car"       // loud but not club loud
)

// Modes lists the supported modes.
//
//nolint:gochecknoglobals // read-only list
var Modes = []Mode{ModeClub, ModeStreaming, ModeCar}

func (m Mode) String() string {
	return string(m)
}

// ParseMode converts a string to a Mode. The empty string is club.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "club", "pista":
		return ModeClub, nil
	case "streaming":
		return ModeStreaming, nil
	case "car", "carro":
		return ModeCar, nil
	default:
		return "", fmt.Errorf("%w %q (valid: club, streaming, car)", ErrUnknownMode, s)
	}
}

// apply overrides metric targets in place for the mode.
func (m Mode) apply(metrics map[string]types.MetricTarget) {
	switch m {
	case ModeStreaming:
		metrics[keys.LUFS] = types.MetricTarget{Target: -14, Min: -15, Max: -13, Tolerance: 1}

		tp, ok := metrics[keys.TruePeak]
		if !ok {
			tp.Tolerance = DefaultTolTruePeak
		}

		tp.Target = -1
		tp.Min = -2
		tp.Max = -1
		tp.WarnFrom = ptr(-0.5)
		tp.HardCap = ptr(TruePeakCeiling)
		metrics[keys.TruePeak] = tp
	case ModeCar:
		metrics[keys.LUFS] = types.MetricTarget{Target: -10, Min: -12, Max: -8, Tolerance: 2}
	case ModeClub:
	}
}
