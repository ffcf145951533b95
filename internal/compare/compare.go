// Package compare builds the comparison table: the single place where a metric or band is judged against
// its target. Every other component reads severities from the table, or calls BuildRows, which applies the
// exact same rules.
package compare

import (
	"log/slog"
	"math"

	"github.com/farcloser/cambium/internal/keys"
	"github.com/farcloser/cambium/internal/types"
)

// Score classifications.
const (
	ClassWorldClass   = "World-class"
	ClassAdvanced     = "Advanced"
	ClassIntermediate = "Intermediate"
	ClassBasic        = "Basic"
)

// Compare builds the comparison table of metrics against profile.
func Compare(metrics *types.MetricsResult, profile *types.TargetProfile) *types.ComparisonTable {
	table := &types.ComparisonTable{Rows: BuildRows(metrics, profile)}

	for _, row := range table.Rows {
		switch row.Severity {
		case types.SeverityOK:
			table.Counts.OK++
		case types.SeverityAttention:
			table.Counts.Attention++
		case types.SeverityCritical:
			table.Counts.Critical++
		}
	}

	table.Score, table.Classification = score(table.Rows)

	slog.Debug("compare.Compare", "stage", "done", "rows", len(table.Rows), "score", table.Score)

	return table
}

// BuildRows compares every metric and band present in both metrics and profile, metrics first in table
// order, then bands from low to high.
func BuildRows(metrics *types.MetricsResult, profile *types.TargetProfile) []types.ComparisonRow {
	if metrics == nil || profile == nil {
		return nil
	}

	var rows []types.ComparisonRow

	for _, key := range keys.Metrics {
		target, ok := profile.Metric(key)
		if !ok {
			continue
		}

		value, ok := Value(metrics, key)
		if !ok {
			continue
		}

		rows = append(rows, metricRow(key, value, target))
	}

	seen := map[string]bool{}

	for _, name := range profile.BandNames() {
		canonical, ok := keys.CanonicalBand(name)
		if !ok {
			slog.Warn("compare: skipping unknown band", "band", name)

			continue
		}

		if seen[canonical] {
			continue
		}

		seen[canonical] = true

		target, _, _ := profile.Band(name)

		value, ok := Value(metrics, canonical)
		if !ok {
			continue
		}

		rows = append(rows, bandRow(canonical, value, target))
	}

	return rows
}

// Value returns the measured value for a canonical key, if it was computed.
func Value(metrics *types.MetricsResult, key string) (float64, bool) {
	if metrics == nil {
		return 0, false
	}

	switch key {
	case keys.LUFS:
		if metrics.Loudness != nil && metrics.Loudness.Integrated != nil {
			return *metrics.Loudness.Integrated, true
		}
	case keys.TruePeak:
		if metrics.TruePeak != nil {
			return metrics.TruePeak.MaxDbtp, true
		}
	case keys.DR:
		if metrics.Dynamics != nil {
			return metrics.Dynamics.DynamicRange, true
		}
	case keys.LRA:
		if metrics.Loudness != nil && metrics.Loudness.LRA != nil {
			return *metrics.Loudness.LRA, true
		}
	case keys.Stereo:
		if metrics.Stereo != nil {
			return metrics.Stereo.Correlation, true
		}
	default:
		if metrics.Spectral != nil {
			if band, ok := metrics.Spectral.Bands[key]; ok {
				return band.RmsDb, true
			}
		}
	}

	return 0, false
}

func metricRow(key string, value float64, target types.MetricTarget) types.ComparisonRow {
	row := types.ComparisonRow{
		Key:       key,
		Type:      types.RowMetric,
		Value:     value,
		Target:    target.Target,
		Min:       target.Min,
		Max:       target.Max,
		Tolerance: target.Tolerance,
		Diff:      value - target.Target,
	}

	if key == keys.TruePeak {
		row.Severity, row.Reason = ClassifyTruePeak(value, target)
	} else {
		row.Severity, row.Reason = Classify(row.Diff, target.Tolerance)
	}

	return finish(row)
}

func bandRow(name string, value float64, target types.BandTarget) types.ComparisonRow {
	row := types.ComparisonRow{
		Key:       name,
		Type:      types.RowBand,
		Value:     value,
		Target:    target.Target,
		Min:       target.Min,
		Max:       target.Max,
		Tolerance: target.Tolerance,
		Diff:      value - target.Target,
	}

	row.Severity, row.Reason = Classify(row.Diff, target.Tolerance)

	return finish(row)
}

func finish(row types.ComparisonRow) types.ComparisonRow {
	d := describe(row.Key)

	row.Label = d.label
	row.Unit = d.unit
	row.Category = d.category
	row.Action = action(row, d)
	row.ValueText = formatValue(row.Value, d)
	row.TargetText = formatTarget(row, d)

	return row
}

func score(rows []types.ComparisonRow) (float64, string) {
	if len(rows) == 0 {
		return 0, ""
	}

	var sum float64

	for _, row := range rows {
		switch row.Severity {
		case types.SeverityOK:
			sum += 1.0
		case types.SeverityAttention:
			sum += 0.8
		case types.SeverityCritical:
			sum += 0.2
		}
	}

	value := math.Round(sum/float64(len(rows))*1000) / 10

	switch {
	case value >= 85:
		return value, ClassWorldClass
	case value >= 70:
		return value, ClassAdvanced
	case value >= 55:
		return value, ClassIntermediate
	default:
		return value, ClassBasic
	}
}
