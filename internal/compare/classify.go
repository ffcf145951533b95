package compare

import (
	"math"

	"github.com/farcloser/cambium/internal/types"
)

// Epsilon absorbs floating point noise at tolerance boundaries.
const Epsilon = 1e-6

// TruePeakCeiling is the absolute true peak limit. Anything above it is CRITICAL, whatever the genre.
const TruePeakCeiling = 0.0

// Reasons explain a severity.
const (
	ReasonWithinTolerance  = "within_tolerance"
	ReasonOutsideTolerance = "outside_tolerance"
	ReasonFarFromTarget    = "far_from_target"
	ReasonAboveCap         = "above_cap"
	ReasonNearCap          = "near_cap"
	ReasonAboveMax         = "above_max"
	ReasonWithinRange      = "within_range"
	ReasonBelowMin         = "below_min"
)

// Classify applies the general rule: |diff| within tolerance is OK, within twice the tolerance ATTENTION,
// beyond that CRITICAL.
func Classify(diff, tolerance float64) (types.Severity, string) {
	distance := math.Abs(diff)

	switch {
	case distance <= tolerance+Epsilon:
		return types.SeverityOK, ReasonWithinTolerance
	case distance <= 2*tolerance+Epsilon:
		return types.SeverityAttention, ReasonOutsideTolerance
	default:
		return types.SeverityCritical, ReasonFarFromTarget
	}
}

// ClassifyTruePeak grades a true peak reading. The hard cap (0 dBTP, or a lower declared cap) is checked
// first and always wins; then the warnFrom zone, then the target ceiling. Tolerance plays no part.
func ClassifyTruePeak(value float64, target types.MetricTarget) (types.Severity, string) {
	hardCap := TruePeakCeiling
	if target.HardCap != nil && *target.HardCap < hardCap {
		hardCap = *target.HardCap
	}

	switch {
	case value > hardCap:
		return types.SeverityCritical, ReasonAboveCap
	case target.WarnFrom != nil && value > *target.WarnFrom:
		return types.SeverityAttention, ReasonNearCap
	case value > target.Max+Epsilon:
		return types.SeverityAttention, ReasonAboveMax
	case value < target.Min-Epsilon:
		return types.SeverityOK, ReasonBelowMin
	default:
		return types.SeverityOK, ReasonWithinRange
	}
}
