package targets

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/farcloser/cambium/internal/keys"
	"github.com/farcloser/cambium/internal/types"
)

// Tolerances applied when a document omits them.
const (
	DefaultTolLUFS     = 2.5
	DefaultTolTruePeak = 1.0
	DefaultTolDR       = 3.0
	DefaultTolLRA      = 2.0
	DefaultTolStereo   = 0.25
	DefaultTolBand     = 3.0

	// TruePeakCeiling is the absolute true peak limit, in dBTP.
	TruePeakCeiling = 0.0

	epsilon = 1e-6
)

// block is one JSON object of a target document.
type block map[string]any

// child returns a nested object, if present.
func (b block) child(key string) (block, bool) {
	value, ok := b[key].(map[string]any)

	return value, ok
}

// draft accumulates what a strategy extracted from a block, including problems found on the way.
type draft struct {
	metrics  map[string]types.MetricTarget
	bands    map[string]types.BandTarget
	problems []string
}

func newDraft() *draft {
	return &draft{
		metrics: map[string]types.MetricTarget{},
		bands:   map[string]types.BandTarget{},
	}
}

func (d *draft) complete() bool {
	_, lufs := d.metrics[keys.LUFS]
	_, dr := d.metrics[keys.DR]

	return lufs && dr
}

func (d *draft) problemf(format string, args ...any) {
	d.problems = append(d.problems, fmt.Sprintf(format, args...))
}

// number reads a numeric field. A present field of another type is recorded as a problem.
func (d *draft) number(b block, key string) (float64, bool) {
	raw, ok := b[key]
	if !ok || raw == nil {
		return 0, false
	}

	value, ok := raw.(float64)
	if !ok {
		d.problemf("%s: expected a number, got %T", key, raw)

		return 0, false
	}

	return value, true
}

// fields names the document keys of one metric.
type fields struct {
	key        string
	target     string
	min        string
	max        string
	tolerance  string
	warnFrom   string
	defaultTol float64
}

//nolint:gochecknoglobals // field tables
var (
	legacyFields = []fields{
		{keys.LUFS, "lufs_target", "lufs_min", "lufs_max", "tol_lufs", "", DefaultTolLUFS},
		{keys.TruePeak, "true_peak_target", "true_peak_min", "true_peak_max", "tol_true_peak", "true_peak_warn_from", DefaultTolTruePeak},
		{keys.DR, "dr_target", "dr_min", "dr_max", "tol_dr", "", DefaultTolDR},
		{keys.LRA, "lra_target", "lra_min", "lra_max", "tol_lra", "", DefaultTolLRA},
		{keys.Stereo, "stereo_target", "stereo_min", "stereo_max", "tol_stereo", "", DefaultTolStereo},
	}

	hybridFields = []fields{
		{keys.LUFS, "lufs_integrated", "", "", "", "", DefaultTolLUFS},
		{keys.TruePeak, "true_peak_dbtp", "", "", "", "", DefaultTolTruePeak},
		{keys.DR, "dynamic_range", "", "", "", "", DefaultTolDR},
		{keys.LRA, "lra", "", "", "", "", DefaultTolLRA},
		{keys.Stereo, "stereo_correlation", "", "", "", "", DefaultTolStereo},
	}
)

// readMetrics extracts every metric of the table from b. Metrics without a target are omitted.
func (d *draft) readMetrics(b block, table []fields) {
	for _, f := range table {
		target, ok := d.number(b, f.target)
		if !ok {
			continue
		}

		tolerance, ok := d.number(b, f.tolerance)
		if !ok {
			tolerance = f.defaultTol
		}

		if f.key == keys.TruePeak {
			d.metrics[f.key] = d.truePeak(b, f, target, tolerance)

			continue
		}

		metric := types.MetricTarget{
			Target:    target,
			Min:       target - tolerance,
			Max:       target + tolerance,
			Tolerance: tolerance,
		}

		if value, ok := d.number(b, f.min); ok {
			metric.Min = value
		}

		if value, ok := d.number(b, f.max); ok {
			metric.Max = value
		}

		d.metrics[f.key] = metric
	}
}

// truePeak builds the true peak target: the target is the acceptance ceiling, 0 dBTP the hard cap.
// A declared maximum must be the cap itself.
func (d *draft) truePeak(b block, f fields, target, tolerance float64) types.MetricTarget {
	metric := types.MetricTarget{
		Target:    target,
		Min:       target - 2*tolerance,
		Max:       target,
		Tolerance: tolerance,
		HardCap:   ptr(TruePeakCeiling),
	}

	if value, ok := d.number(b, f.min); ok {
		metric.Min = value
	}

	if value, ok := d.number(b, f.max); ok && !near(value, TruePeakCeiling) {
		d.problemf("%s: must be %.1f dBTP, got %.2f", f.max, TruePeakCeiling, value)
	}

	if value, ok := d.number(b, f.warnFrom); ok {
		metric.WarnFrom = ptr(value)
	}

	return metric
}

// readBands extracts band targets. Unknown band names are skipped with a warning; when several spellings
// land on one band the first in sorted order wins.
func (d *draft) readBands(b block) {
	for _, raw := range slices.Sorted(maps.Keys(b)) {
		name, ok := keys.BandSpelling(raw)
		if !ok {
			slog.Warn("targets: skipping unknown band", "band", raw)

			continue
		}

		if _, seen := d.bands[name]; seen {
			continue
		}

		spec, ok := b.child(raw)
		if !ok {
			d.problemf("band %s: expected an object, got %T", raw, b[raw])

			continue
		}

		if band, ok := d.band(raw, spec); ok {
			d.bands[name] = band
		}
	}
}

// band reads {target_db, tol_db}, {target_range{min, max}} or {min, max}, in any combination.
func (d *draft) band(name string, spec block) (types.BandTarget, bool) {
	target, hasTarget := d.number(spec, "target_db")
	tolerance, hasTolerance := d.number(spec, "tol_db")

	low, high, hasRange := d.bandRange(spec)

	switch {
	case hasRange:
		// Ranges written with positive magnitudes are meant as negative dB.
		if low > 0 && high > 0 {
			slog.Warn("targets: band range given as positive values, using negative dB", "band", name, "min", low, "max", high)

			low, high = -max(low, high), -min(low, high)
		}

		if !hasTarget {
			target = (low + high) / 2
		}

		if !hasTolerance {
			tolerance = (high - low) / 2
		}
	case hasTarget:
		if !hasTolerance {
			tolerance = DefaultTolBand
		}

		low, high = target-tolerance, target+tolerance
	default:
		d.problemf("band %s: no target_db, target_range or min/max", name)

		return types.BandTarget{}, false
	}

	return types.BandTarget{Target: target, Tolerance: tolerance, Min: low, Max: high}, true
}

func (d *draft) bandRange(spec block) (float64, float64, bool) {
	rangeSpec := spec
	if nested, ok := spec.child("target_range"); ok {
		rangeSpec = nested
	}

	low, hasLow := d.number(rangeSpec, "min")
	if !hasLow {
		low, hasLow = d.number(rangeSpec, "min_db")
	}

	high, hasHigh := d.number(rangeSpec, "max")
	if !hasHigh {
		high, hasHigh = d.number(rangeSpec, "max_db")
	}

	return low, high, hasLow && hasHigh
}

func near(a, b float64) bool {
	return a-b <= epsilon && b-a <= epsilon
}

func ptr(v float64) *float64 {
	return &v
}
