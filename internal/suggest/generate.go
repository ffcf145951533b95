// Package suggest turns non-OK comparison rows into corrective suggestions. Numbers are copied from the
// rows, never recomputed: the comparison table stays the only judge of what needs fixing.
package suggest

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/farcloser/cambium/internal/compare"
	"github.com/farcloser/cambium/internal/keys"
	"github.com/farcloser/cambium/internal/types"
)

// Priorities.
const (
	PriorityTruePeakFirst = "tp_first"
	PriorityHigh          = "high"
	PriorityMedium        = "medium"
)

// Generate emits one suggestion per non-OK row. With a table, rows are read from it by key; without one,
// rows are rebuilt from metrics and profile with the same classification rules the table uses.
func Generate(metrics *types.MetricsResult, profile *types.TargetProfile, table *types.ComparisonTable) []types.Suggestion {
	var rows []types.ComparisonRow

	if table != nil {
		rows = tableRows(table, profile)
	} else {
		rows = compare.BuildRows(metrics, profile)
	}

	suggestions := make([]types.Suggestion, 0, len(rows))

	for _, row := range rows {
		if row.Severity == types.SeverityOK {
			continue
		}

		suggestions = append(suggestions, fromRow(row))
	}

	slices.SortStableFunc(suggestions, func(a, b types.Suggestion) int {
		return rank(a) - rank(b)
	})

	slog.Debug("suggest.Generate", "stage", "done", "from_table", table != nil, "suggestions", len(suggestions))

	return suggestions
}

// tableRows resolves the profile's keys against the table, trying each key, then its synonym.
// Without a profile every row is taken as is.
func tableRows(table *types.ComparisonTable, profile *types.TargetProfile) []types.ComparisonRow {
	if profile == nil {
		return table.Rows
	}

	wanted := make([]string, 0, len(keys.Metrics)+len(keys.Bands))

	for _, key := range keys.Metrics {
		if _, ok := profile.Metric(key); ok {
			wanted = append(wanted, key)
		}
	}

	wanted = append(wanted, profile.BandNames()...)

	var rows []types.ComparisonRow

	seen := map[string]bool{}

	for _, key := range wanted {
		row, ok := lookup(table, key)
		if !ok || seen[row.Key] {
			continue
		}

		seen[row.Key] = true

		rows = append(rows, row)
	}

	return rows
}

func lookup(table *types.ComparisonTable, key string) (types.ComparisonRow, bool) {
	if row, ok := table.Row(key); ok {
		return row, true
	}

	if alias, ok := keys.Alias(key); ok {
		if row, ok := table.Row(alias); ok {
			return row, true
		}
	}

	if canonical, ok := keys.Normalize(key); ok && canonical != key {
		return table.Row(canonical)
	}

	return types.ComparisonRow{}, false
}

func fromRow(row types.ComparisonRow) types.Suggestion {
	suggestion := types.Suggestion{
		Metric:    row.Key,
		Type:      row.Type,
		Label:     row.Label,
		Measured:  row.Value,
		Target:    row.Target,
		Bounds:    types.Bounds{Min: row.Min, Max: row.Max},
		Diff:      row.Diff,
		RawDelta:  -row.Diff,
		Severity:  row.Severity,
		Priority:  PriorityMedium,
		Action:    row.Action,
		Direction: types.DirectionDecrease,
	}

	// A target above the ceiling is never a valid destination for the peak.
	if row.Key == keys.TruePeak {
		suggestion.RawDelta = math.Min(row.Target, compare.TruePeakCeiling) - row.Value
	}

	if suggestion.RawDelta > 0 {
		suggestion.Direction = types.DirectionIncrease
	}

	switch {
	case row.Key == keys.TruePeak && row.Severity == types.SeverityCritical:
		suggestion.Priority = PriorityTruePeakFirst
	case row.Severity == types.SeverityCritical:
		suggestion.Priority = PriorityHigh
	}

	switch {
	case row.Type == types.RowBand:
		suggestion.Delta = roundStep(Clamp(row.Key, suggestion.RawDelta))
		suggestion.Message = bandMessage(row.Key, suggestion.Direction, suggestion.Delta)
	case row.Key == keys.Stereo:
		suggestion.Delta = round(suggestion.RawDelta, 2)
		suggestion.Message = metricMessage(row.Key, suggestion.Direction, suggestion.Delta, row.Target)
	default:
		plan := PlanGain(suggestion.RawDelta)
		suggestion.Gain = &plan
		suggestion.Delta = plan.Step
		suggestion.Message = metricMessage(row.Key, suggestion.Direction, plan.TotalDelta, row.Target)

		if plan.Mode == GainStaged {
			suggestion.Message += fmt.Sprintf(", in %d passes of at most %.1f", plan.Steps, MaxStep)
		}
	}

	return suggestion
}

func rank(suggestion types.Suggestion) int {
	switch {
	case suggestion.Priority == PriorityTruePeakFirst:
		return 0
	case suggestion.Severity == types.SeverityCritical:
		return 1
	default:
		return 2
	}
}
