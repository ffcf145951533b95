package targets

import (
	"github.com/farcloser/cambium/internal/keys"
	"github.com/farcloser/cambium/internal/types"
)

// StrategyDefaults names profiles built by DefaultProfile.
const StrategyDefaults = "defaults"

// DefaultProfile returns conservative targets without bands, for callers that fall back after a document
// failed to load or validate.
func DefaultProfile(mode Mode) *types.TargetProfile {
	metrics := map[string]types.MetricTarget{
		keys.TruePeak: {Target: -1, Min: -3, Max: -1, Tolerance: 0.5, WarnFrom: ptr(-0.5), HardCap: ptr(TruePeakCeiling)},
		keys.LUFS:     {Target: -14, Min: -15, Max: -13, Tolerance: 1},
		keys.DR:       {Target: 8, Min: 6, Max: 12, Tolerance: 2},
		keys.LRA:      {Target: 7, Min: 5, Max: 10, Tolerance: 2},
		keys.Stereo:   {Target: 0.7, Min: 0.3, Max: 0.95, Tolerance: 0.15},
	}

	mode.apply(metrics)

	return types.NewTargetProfile(DefaultGenre, string(mode), StrategyDefaults, metrics, nil)
}
