package types

import (
	"maps"
	"slices"

	"github.com/farcloser/cambium/internal/keys"
)

// MetricTarget is the canonical target for one metric.
type MetricTarget struct {
	Target    float64
	Min       float64
	Max       float64
	Tolerance float64
	WarnFrom  *float64 // start of the ATTENTION zone below the cap
	HardCap   *float64 // absolute ceiling, regardless of tolerance
}

// BandTarget is the canonical target for one spectral band, in dB.
type BandTarget struct {
	Target    float64
	Tolerance float64
	Min       float64
	Max       float64
}

// TargetProfile is the canonical, immutable target set for one genre.
type TargetProfile struct {
	genre    string
	mode     string
	strategy string
	metrics  map[string]MetricTarget
	bands    map[string]BandTarget
}

// NewTargetProfile builds a profile. Maps are copied; the profile never changes afterwards.
func NewTargetProfile(genre, mode, strategy string, metrics map[string]MetricTarget, bands map[string]BandTarget) *TargetProfile {
	return &TargetProfile{
		genre:    genre,
		mode:     mode,
		strategy: strategy,
		metrics:  maps.Clone(metrics),
		bands:    maps.Clone(bands),
	}
}

// Genre returns the normalized genre name.
func (p *TargetProfile) Genre() string { return p.genre }

// Mode returns the listening mode the profile was resolved for.
func (p *TargetProfile) Mode() string { return p.mode }

// Strategy names the document shape the profile was extracted from.
func (p *TargetProfile) Strategy() string { return p.strategy }

// Metric returns the target for a metric key.
func (p *TargetProfile) Metric(key string) (MetricTarget, bool) {
	target, ok := p.metrics[key]

	return target, ok
}

// Band returns the target for a band, trying the name first and then its alias.
// The second return is the key the target was found under.
func (p *TargetProfile) Band(name string) (BandTarget, string, bool) {
	if target, ok := p.bands[name]; ok {
		return target, name, true
	}

	if alias, ok := keys.Alias(name); ok {
		if target, ok := p.bands[alias]; ok {
			return target, alias, true
		}
	}

	return BandTarget{}, "", false
}

// MetricKeys returns the metric keys present, in table order.
func (p *TargetProfile) MetricKeys() []string {
	var out []string

	for _, key := range keys.Metrics {
		if _, ok := p.metrics[key]; ok {
			out = append(out, key)
		}
	}

	return out
}

// BandNames returns the declared band names, canonical bands first in frequency order, others sorted.
func (p *TargetProfile) BandNames() []string {
	out := make([]string, 0, len(p.bands))
	seen := make(map[string]bool, len(p.bands))

	for _, band := range keys.Bands {
		if _, name, ok := p.Band(band); ok && !seen[name] {
			out = append(out, name)
			seen[name] = true
		}
	}

	rest := make([]string, 0)

	for name := range p.bands {
		if !seen[name] {
			rest = append(rest, name)
		}
	}

	slices.Sort(rest)

	return append(out, rest...)
}
