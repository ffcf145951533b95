// Package finalize reconciles suggestions against the comparison table: a suggestion survives only when
// its row needs attention, and every such row must end up with a suggestion. Mismatches are reported,
// never repaired.
package finalize

import (
	"log/slog"
	"slices"

	"github.com/farcloser/cambium/internal/keys"
	"github.com/farcloser/cambium/internal/types"
)

// ReasonSeverityOK is recorded for suggestions dropped because their row is OK.
const ReasonSeverityOK = "severity OK"

// Removal records a dropped suggestion.
type Removal struct {
	Metric string
	Reason string
}

// Finalized is the reconciled suggestion set plus what the reconciliation found.
type Finalized struct {
	Suggestions []types.Suggestion
	Removed     []Removal
	// Unknown keys match no row; they are kept.
	Unknown []string
	// Missing rows are non-OK but have no suggestion.
	Missing []string
	// Extra keys are kept suggestions for OK rows.
	Extra []string
	// Divergent suggestions carry numbers that differ from their row.
	Divergent []string
}

// Consistent reports whether suggestions and non-OK rows match one to one.
func (f Finalized) Consistent() bool {
	return len(f.Missing) == 0 && len(f.Extra) == 0 && len(f.Divergent) == 0
}

// Finalize filters suggestions against table. Kept suggestions are returned untouched, in input order.
func Finalize(suggestions []types.Suggestion, table *types.ComparisonTable) Finalized {
	okRows := map[string]types.ComparisonRow{}
	nonOkRows := map[string]types.ComparisonRow{}

	var nonOkOrder []string

	if table != nil {
		for _, row := range table.Rows {
			key := normalize(row.Key)

			if row.Severity == types.SeverityOK {
				okRows[key] = row

				continue
			}

			if _, dup := nonOkRows[key]; !dup {
				nonOkOrder = append(nonOkOrder, key)
			}

			nonOkRows[key] = row
		}
	}

	result := Finalized{Suggestions: make([]types.Suggestion, 0, len(suggestions))}
	present := map[string]bool{}

	for _, suggestion := range suggestions {
		key := normalize(suggestion.Metric)

		if _, ok := okRows[key]; ok {
			slog.Info("finalize: removed", "metric", key, "reason", ReasonSeverityOK)

			result.Removed = append(result.Removed, Removal{Metric: suggestion.Metric, Reason: ReasonSeverityOK})

			continue
		}

		result.Suggestions = append(result.Suggestions, suggestion)
		present[key] = true

		row, ok := nonOkRows[key]
		if !ok {
			slog.Warn("finalize: keeping suggestion without a matching row", "metric", suggestion.Metric)

			result.Unknown = append(result.Unknown, suggestion.Metric)

			continue
		}

		if !matches(suggestion, row) {
			slog.Warn("finalize: suggestion diverges from its row", "metric", key,
				"measured", suggestion.Measured, "value", row.Value,
				"target", suggestion.Target, "row_target", row.Target)

			result.Divergent = append(result.Divergent, key)
		}
	}

	for _, key := range nonOkOrder {
		if !present[key] {
			result.Missing = append(result.Missing, key)
		}
	}

	for _, suggestion := range result.Suggestions {
		key := normalize(suggestion.Metric)
		if _, ok := okRows[key]; ok && !slices.Contains(result.Extra, key) {
			result.Extra = append(result.Extra, key)
		}
	}

	if len(result.Missing) > 0 || len(result.Extra) > 0 {
		slog.Warn("finalize: suggestions do not match the table",
			"missing", result.Missing, "extra", result.Extra)
	}

	slog.Debug("finalize.Finalize", "stage", "done",
		"kept", len(result.Suggestions), "removed", len(result.Removed), "consistent", result.Consistent())

	return result
}

func normalize(key string) string {
	if canonical, ok := keys.Normalize(key); ok {
		return canonical
	}

	return key
}

// matches is an equality check; nothing is recomputed.
func matches(suggestion types.Suggestion, row types.ComparisonRow) bool {
	return suggestion.Measured == row.Value &&
		suggestion.Target == row.Target &&
		suggestion.Bounds.Min == row.Min &&
		suggestion.Bounds.Max == row.Max
}
