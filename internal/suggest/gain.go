package suggest

import (
	"math"

	"github.com/farcloser/cambium/internal/types"
)

// Gain plan modes.
const (
	GainMicro  = "micro"
	GainDirect = "direct"
	GainStaged = "staged"
)

const (
	// MicroThreshold is the smallest correction worth a full move.
	MicroThreshold = 0.5

	// MaxStep is the largest single move; bigger corrections are staged.
	MaxStep = 5.0
)

// PlanGain splits a correction into steps no larger than MaxStep.
func PlanGain(delta float64) types.GainPlan {
	magnitude := math.Abs(delta)

	switch {
	case magnitude < MicroThreshold:
		return types.GainPlan{Mode: GainMicro, Step: round(delta, 1), Steps: 1, TotalDelta: round(delta, 1)}
	case magnitude <= MaxStep:
		return types.GainPlan{Mode: GainDirect, Step: round(delta, 1), Steps: 1, TotalDelta: round(delta, 1)}
	}

	return types.GainPlan{
		Mode:       GainStaged,
		Step:       math.Copysign(MaxStep, delta),
		Steps:      int(math.Ceil(magnitude / MaxStep)),
		TotalDelta: round(delta, 1),
	}
}

func round(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))

	return math.Round(v*scale) / scale
}

// roundStep rounds a correction to 0.1 dB without rounding a non-zero move down to nothing.
func roundStep(v float64) float64 {
	if r := round(v, 1); r != 0 || v == 0 {
		return r
	}

	return math.Copysign(0.1, v)
}
