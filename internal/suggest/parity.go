package suggest

import (
	"slices"

	"github.com/farcloser/cambium/internal/keys"
	"github.com/farcloser/cambium/internal/types"
)

// Parity lists, sorted, the keys whose membership or numeric fields differ between two suggestion sets.
// An empty result means both producers agree.
func Parity(a, b []types.Suggestion) []string {
	left := index(a)
	right := index(b)

	var diverging []string

	for key, x := range left {
		y, ok := right[key]
		if !ok || !sameNumbers(x, y) {
			diverging = append(diverging, key)
		}
	}

	for key := range right {
		if _, ok := left[key]; !ok {
			diverging = append(diverging, key)
		}
	}

	slices.Sort(diverging)

	return diverging
}

func index(suggestions []types.Suggestion) map[string]types.Suggestion {
	out := make(map[string]types.Suggestion, len(suggestions))

	for _, suggestion := range suggestions {
		key, ok := keys.Normalize(suggestion.Metric)
		if !ok {
			key = suggestion.Metric
		}

		out[key] = suggestion
	}

	return out
}

func sameNumbers(a, b types.Suggestion) bool {
	return a.Measured == b.Measured &&
		a.Target == b.Target &&
		a.Bounds == b.Bounds &&
		a.Diff == b.Diff &&
		a.RawDelta == b.RawDelta &&
		a.Delta == b.Delta &&
		a.Direction == b.Direction &&
		a.Severity == b.Severity
}
