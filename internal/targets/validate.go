package targets

import (
	"maps"
	"slices"

	"github.com/farcloser/cambium/internal/keys"
)

// validate records every range, ordering and sign problem of a selected draft.
func (d *draft) validate() {
	for _, key := range keys.Metrics {
		metric, ok := d.metrics[key]
		if !ok {
			continue
		}

		if metric.Tolerance < 0 {
			d.problemf("%s: tolerance %.2f is negative", key, metric.Tolerance)
		}

		if metric.Min > metric.Target+epsilon || metric.Target > metric.Max+epsilon {
			d.problemf("%s: expected min <= target <= max, got %.2f <= %.2f <= %.2f", key, metric.Min, metric.Target, metric.Max)
		}

		if key != keys.TruePeak {
			continue
		}

		if metric.Target > TruePeakCeiling+epsilon {
			d.problemf("%s: target %.2f dBTP is above the %.1f dBTP ceiling", key, metric.Target, TruePeakCeiling)
		}

		if metric.WarnFrom != nil && *metric.WarnFrom > TruePeakCeiling+epsilon {
			d.problemf("%s: warn_from %.2f dBTP is above the %.1f dBTP ceiling", key, *metric.WarnFrom, TruePeakCeiling)
		}

		if metric.WarnFrom != nil && *metric.WarnFrom < metric.Target-epsilon {
			d.problemf("%s: warn_from %.2f dBTP is below the %.2f dBTP target", key, *metric.WarnFrom, metric.Target)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(d.bands)) {
		band := d.bands[name]

		if band.Min > band.Max+epsilon {
			d.problemf("band %s: min %.2f is above max %.2f", name, band.Min, band.Max)
		}

		if band.Tolerance < 0 {
			d.problemf("band %s: tolerance %.2f is negative", name, band.Tolerance)
		}
	}
}
