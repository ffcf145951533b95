package targets

// Strategy names, reported by TargetProfile.Strategy.
const (
	StrategyLegacy   = "legacy_compatibility"
	StrategyTopLevel = "top_level"
	StrategyHybrid   = "hybrid"
)

// strategy extracts a draft from one document shape. ok is false when the shape is absent or does not
// declare both a loudness and a dynamic range target.
type strategy struct {
	name    string
	extract func(root block) (*draft, bool)
}

//nolint:gochecknoglobals // ordered strategy table
var strategies = []strategy{
	{StrategyLegacy, extractLegacy},
	{StrategyTopLevel, extractTopLevel},
	{StrategyHybrid, extractHybrid},
}

func extractLegacy(root block) (*draft, bool) {
	legacy, ok := root.child("legacy_compatibility")
	if !ok {
		return nil, false
	}

	d := newDraft()
	d.readMetrics(legacy, legacyFields)

	if bands, ok := legacy.child("bands"); ok {
		d.readBands(bands)
	}

	return d, d.complete()
}

func extractTopLevel(root block) (*draft, bool) {
	d := newDraft()
	d.readMetrics(root, legacyFields)

	if bands, ok := root.child("bands"); ok {
		d.readBands(bands)
	}

	return d, d.complete()
}

func extractHybrid(root block) (*draft, bool) {
	// A missing hybrid_processing is a nil block, which reads as empty.
	hybrid, _ := root.child("hybrid_processing")

	metrics, ok := hybrid.child("original_metrics")
	if !ok {
		if metrics, ok = root.child("original_metrics"); !ok {
			return nil, false
		}
	}

	d := newDraft()
	d.readMetrics(metrics, hybridFields)

	for _, holder := range []block{hybrid, root} {
		if holder == nil {
			continue
		}

		if bands, ok := firstChild(holder, "spectral_bands", "normalized_bands"); ok {
			d.readBands(bands)

			break
		}
	}

	return d, d.complete()
}

func firstChild(b block, names ...string) (block, bool) {
	for _, name := range names {
		if child, ok := b.child(name); ok {
			return child, true
		}
	}

	return nil, false
}
