package output

import (
	"fmt"

	"github.com/farcloser/cambium"
	"github.com/farcloser/cambium/internal/compare"
	"github.com/farcloser/cambium/internal/types"
)

//nolint:gochecknoglobals // display order, effectively const
var categoryOrder = []string{
	compare.CategoryLoudness,
	compare.CategoryMastering,
	compare.CategoryDynamics,
	compare.CategoryStereo,
	compare.CategorySpectral,
}

// FriendlyMap creates a user-friendly summary of the analysis results.
func FriendlyMap(result *cambium.Result) map[string]any {
	meta := map[string]any{}

	if table := result.Table; table != nil {
		meta["summary"] = fmt.Sprintf("score %.1f (%s): %d ok, %d attention, %d critical",
			table.Score, classification(table.Classification), table.Counts.OK, table.Counts.Attention, table.Counts.Critical)

		categories := map[string][]any{}

		for _, row := range table.Rows {
			categories[row.Category] = append(categories[row.Category], rowLine(row))
		}

		rows := map[string]any{}

		for _, category := range categoryOrder {
			if lines, ok := categories[category]; ok {
				rows[category] = lines
			}
		}

		if len(rows) > 0 {
			meta["table"] = rows
		}
	}

	if profile := result.Profile; profile != nil {
		meta["targets"] = fmt.Sprintf("%s (%s, %s)", profile.Genre(), profile.Mode(), profile.Strategy())
	}

	if len(result.Suggestions) > 0 {
		lines := make([]any, 0, len(result.Suggestions))
		for _, suggestion := range result.Suggestions {
			lines = append(lines, fmt.Sprintf("[%s] %s", suggestion.Severity, suggestion.Message))
		}

		meta["suggestions"] = lines
	}

	meta["properties"] = properties(result.Metrics)

	if !result.Diagnostics.Finalized.Consistent() || len(result.Diagnostics.Parity) > 0 {
		meta["diagnostics"] = DiagnosticsToMap(result.Diagnostics)
	}

	return meta
}

func rowLine(row types.ComparisonRow) string {
	marker := "  "
	if row.Severity != types.SeverityOK {
		marker = "!!"
	}

	return fmt.Sprintf("%s %s: %s, target %s [%s] %s",
		marker, row.Label, row.ValueText, row.TargetText, row.Severity, row.Action)
}

func classification(name string) string {
	if name == "" {
		return NotAvailable
	}

	return name
}

func properties(metrics *types.MetricsResult) map[string]any {
	props := map[string]any{
		"loudness":  NotAvailable,
		"true_peak": NotAvailable,
		"dynamics":  NotAvailable,
		"stereo":    NotAvailable,
		"tempo":     NotAvailable,
		"spectrum":  NotAvailable,
	}

	if metrics == nil {
		return props
	}

	if r := metrics.Loudness; r != nil {
		props["loudness"] = fmt.Sprintf("%s LUFS (range: %s LU)", decimal(r.Integrated), decimal(r.LRA))
	}

	if r := metrics.TruePeak; r != nil {
		props["true_peak"] = fmt.Sprintf("%.1f dBTP (sample peak %.1f dB)", r.MaxDbtp, r.SamplePeakDb)
	}

	if r := metrics.Dynamics; r != nil {
		props["dynamics"] = fmt.Sprintf("%.1f dB range, %.1f dB crest, DR%d", r.DynamicRange, r.CrestFactor, r.DRScore)
	}

	if r := metrics.Stereo; r != nil {
		props["stereo"] = fmt.Sprintf("%s (correlation: %.2f, width: %.2f)",
			stereoWidthLabel(r.Correlation), r.Correlation, r.Width)
	}

	if r := metrics.BPM; r != nil && r.Value != nil {
		props["tempo"] = fmt.Sprintf("%.1f BPM (confidence %s)", *r.Value, decimal(r.Confidence))
	}

	if r := metrics.Spectral; r != nil {
		props["spectrum"] = fmt.Sprintf("centroid %.0f Hz, rolloff %.0f Hz, flatness %.2f",
			r.CentroidHz, r.RolloffHz, r.Flatness)
	}

	return props
}

func decimal(value *float64) string {
	if value == nil {
		return NotAvailable
	}

	return fmt.Sprintf("%.1f", *value)
}

func stereoWidthLabel(correlation float64) string {
	switch {
	case correlation > 0.95:
		return "Mono/Narrow"
	case correlation > 0.7:
		return "Narrow"
	case correlation > 0.3:
		return "Wide"
	case correlation >= -0.3:
		return "Very Wide"
	default:
		return "Out of Phase"
	}
}
