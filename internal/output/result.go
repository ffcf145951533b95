// Package output provides shared result serialization for cambium JSON output.
package output

import (
	"github.com/farcloser/cambium"
	"github.com/farcloser/cambium/internal/types"
)

// NotAvailable stands in for a metric that could not be computed. Absent values are never rendered as zero.
const NotAvailable = "n/a"

// Optional returns *value, or NotAvailable.
func Optional(value *float64) any {
	if value == nil {
		return NotAvailable
	}

	return *value
}

// ResultToMap converts an analysis result into the canonical map structure
// used for JSON and JSONL serialization.
func ResultToMap(result *cambium.Result) map[string]any {
	meta := map[string]any{
		"summary": SummaryToMap(result),
		"metrics": MetricsToMap(result.Metrics),
	}

	if result.Table != nil {
		rows := make([]any, 0, len(result.Table.Rows))
		for _, row := range result.Table.Rows {
			rows = append(rows, RowToMap(row))
		}

		meta["table"] = rows
	}

	suggestions := make([]any, 0, len(result.Suggestions))
	for _, suggestion := range result.Suggestions {
		suggestions = append(suggestions, SuggestionToMap(suggestion))
	}

	meta["suggestions"] = suggestions
	meta["diagnostics"] = DiagnosticsToMap(result.Diagnostics)

	return meta
}

// SummaryToMap holds what a digest needs without reading the table.
func SummaryToMap(result *cambium.Result) map[string]any {
	summary := map[string]any{
		"suggestions": len(result.Suggestions),
		"consistent":  result.Diagnostics.Finalized.Consistent() && len(result.Diagnostics.Parity) == 0,
	}

	if profile := result.Profile; profile != nil {
		summary["genre"] = profile.Genre()
		summary["mode"] = profile.Mode()
		summary["strategy"] = profile.Strategy()
	}

	if table := result.Table; table != nil {
		summary["score"] = table.Score
		summary["classification"] = table.Classification
		summary["ok"] = table.Counts.OK
		summary["attention"] = table.Counts.Attention
		summary["critical"] = table.Counts.Critical
	}

	return summary
}

// RowToMap converts one comparison row to a map.
func RowToMap(row types.ComparisonRow) map[string]any {
	return map[string]any{
		"key":            row.Key,
		"type":           row.Type,
		"label":          row.Label,
		"unit":           row.Unit,
		"category":       row.Category,
		"value":          row.Value,
		"target":         row.Target,
		"min":            row.Min,
		"max":            row.Max,
		"tolerance":      row.Tolerance,
		"diff":           row.Diff,
		"severity":       row.Severity.String(),
		"severity_class": row.Severity.Class(),
		"level":          row.Severity.Level(),
		"reason":         row.Reason,
		"action":         row.Action,
		"value_text":     row.ValueText,
		"target_text":    row.TargetText,
	}
}

// SuggestionToMap converts one suggestion to a map.
func SuggestionToMap(suggestion types.Suggestion) map[string]any {
	meta := map[string]any{
		"metric":    suggestion.Metric,
		"type":      suggestion.Type,
		"label":     suggestion.Label,
		"measured":  suggestion.Measured,
		"target":    suggestion.Target,
		"min":       suggestion.Bounds.Min,
		"max":       suggestion.Bounds.Max,
		"diff":      suggestion.Diff,
		"raw_delta": suggestion.RawDelta,
		"delta":     suggestion.Delta,
		"direction": suggestion.Direction,
		"severity":  suggestion.Severity.String(),
		"priority":  suggestion.Priority,
		"message":   suggestion.Message,
		"action":    suggestion.Action,
	}

	if plan := suggestion.Gain; plan != nil {
		meta["gain"] = map[string]any{
			"mode":        plan.Mode,
			"step":        plan.Step,
			"steps":       plan.Steps,
			"total_delta": plan.TotalDelta,
		}
	}

	return meta
}

// DiagnosticsToMap converts reconciliation findings to a map. Empty lists are kept so consumers can rely
// on the keys.
func DiagnosticsToMap(diagnostics cambium.Diagnostics) map[string]any {
	finalized := diagnostics.Finalized

	removed := make([]any, 0, len(finalized.Removed))
	for _, removal := range finalized.Removed {
		removed = append(removed, map[string]any{"metric": removal.Metric, "reason": removal.Reason})
	}

	return map[string]any{
		"removed":   removed,
		"unknown":   nonNil(finalized.Unknown),
		"missing":   nonNil(finalized.Missing),
		"extra":     nonNil(finalized.Extra),
		"divergent": nonNil(finalized.Divergent),
		"parity":    nonNil(diagnostics.Parity),
	}
}

// MetricsToMap converts every metric family; a family that could not be computed is NotAvailable.
func MetricsToMap(metrics *types.MetricsResult) map[string]any {
	if metrics == nil {
		return map[string]any{}
	}

	meta := map[string]any{
		"sample_rate": metrics.SampleRate,
		"channels":    metrics.Channels,
		"duration":    metrics.Duration,
		"loudness":    NotAvailable,
		"true_peak":   NotAvailable,
		"stereo":      NotAvailable,
		"dynamics":    NotAvailable,
		"dc_offset":   NotAvailable,
		"spectral":    NotAvailable,
		"bpm":         NotAvailable,
	}

	if r := metrics.Loudness; r != nil {
		meta["loudness"] = map[string]any{
			"integrated_lufs": Optional(r.Integrated),
			"short_term_max":  Optional(r.ShortTerm),
			"momentary_max":   Optional(r.Momentary),
			"loudness_range":  Optional(r.LRA),
			"frames":          r.Frames,
		}
	}

	if r := metrics.TruePeak; r != nil {
		meta["true_peak"] = map[string]any{
			"max_dbtp":        r.MaxDbtp,
			"max_linear":      r.MaxLinear,
			"sample_peak_db":  r.SamplePeakDb,
			"oversampling":    r.OversamplingFactor,
			"clipping_count":  r.ClippingCount,
			"clipped_samples": r.ClippedSamples,
			"left_peak":       Optional(r.LeftPeak),
			"right_peak":      Optional(r.RightPeak),
			"channels_dbtp":   r.ChannelPeaksDbtp,
			"frames":          r.Frames,
		}
	}

	if r := metrics.Stereo; r != nil {
		meta["stereo"] = map[string]any{
			"correlation":        r.Correlation,
			"width":              r.Width,
			"balance":            r.Balance,
			"balance_db":         r.BalanceDb,
			"cancellation_db":    r.CancellationDb,
			"is_mono_compatible": r.IsMonoCompatible,
			"has_phase_issues":   r.HasPhaseIssues,
			"frames":             r.Frames,
		}
	}

	if r := metrics.Dynamics; r != nil {
		meta["dynamics"] = map[string]any{
			"dynamic_range":  r.DynamicRange,
			"crest_factor":   r.CrestFactor,
			"dr_score":       r.DRScore,
			"peak_rms_db":    r.PeakRmsDb,
			"average_rms_db": r.AverageRmsDb,
			"windows":        r.Windows,
		}
	}

	if r := metrics.DCOffset; r != nil {
		meta["dc_offset"] = map[string]any{
			"channels": r.Channels,
			"max_abs":  r.MaxAbs,
			"max_db":   r.MaxDb,
		}
	}

	if r := metrics.Spectral; r != nil {
		meta["spectral"] = SpectralToMap(r)
	}

	if r := metrics.BPM; r != nil {
		meta["bpm"] = map[string]any{
			"value":      Optional(r.Value),
			"confidence": Optional(r.Confidence),
			"method":     r.Method,
			"onsets":     r.Onsets,
		}
	}

	return meta
}

// SpectralToMap converts spectral analysis results to a map.
func SpectralToMap(result *types.SpectralResult) map[string]any {
	bands := make(map[string]any, len(result.Bands))

	for name, band := range result.Bands {
		bands[name] = map[string]any{
			"rms_db":     band.RmsDb,
			"peak_db":    band.PeakDb,
			"energy_pct": band.EnergyPct,
		}
	}

	return map[string]any{
		"centroid_hz":  result.CentroidHz,
		"rolloff_hz":   result.RolloffHz,
		"bandwidth_hz": result.BandwidthHz,
		"flatness":     result.Flatness,
		"fft_size":     result.FFTSize,
		"frames":       result.Frames,
		"bands":        bands,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return values
}
