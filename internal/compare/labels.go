package compare

import (
	"fmt"
	"strings"

	"github.com/farcloser/cambium/internal/audit/spectral"
	"github.com/farcloser/cambium/internal/keys"
	"github.com/farcloser/cambium/internal/types"
)

// Categories group rows for presentation.
const (
	CategoryLoudness  = "LOUDNESS"
	CategoryMastering = "MASTERING"
	CategoryDynamics  = "DYNAMICS"
	CategoryStereo    = "STEREO"
	CategorySpectral  = "SPECTRAL"
)

type descriptor struct {
	label     string
	unit      string
	category  string
	precision int
}

//nolint:gochecknoglobals // read-only tables
var (
	metricDescriptors = map[string]descriptor{
		keys.LUFS:     {"Loudness (LUFS)", "LUFS", CategoryLoudness, 1},
		keys.TruePeak: {"True Peak", "dBTP", CategoryMastering, 1},
		keys.DR:       {"Dynamic Range", "dB", CategoryDynamics, 1},
		keys.LRA:      {"Loudness Range", "LU", CategoryDynamics, 1},
		keys.Stereo:   {"Stereo Correlation", "", CategoryStereo, 2},
	}

	bandTitles = map[string]string{
		keys.Sub:      "Sub",
		keys.Bass:     "Bass",
		keys.LowMid:   "Low Mid",
		keys.Mid:      "Mid",
		keys.HighMid:  "High Mid",
		keys.Presence: "Presence",
		keys.Air:      "Air",
	}
)

func describe(key string) descriptor {
	if d, ok := metricDescriptors[key]; ok {
		return d
	}

	title, ok := bandTitles[key]
	if !ok {
		title = key
	}

	for _, band := range spectral.Bands {
		if band.Name == key {
			title = fmt.Sprintf("%s (%.0f-%.0f Hz)", title, band.Low, band.High)

			break
		}
	}

	return descriptor{label: title, unit: "dB", category: CategorySpectral, precision: 1}
}

// Label returns the display label of a metric or band key.
func Label(key string) string {
	return describe(key).label
}

// Unit returns the display unit of a metric or band key.
func Unit(key string) string {
	return describe(key).unit
}

func formatValue(value float64, d descriptor) string {
	return strings.TrimSpace(fmt.Sprintf("%.*f %s", d.precision, value, d.unit))
}

func formatTarget(row types.ComparisonRow, d descriptor) string {
	return fmt.Sprintf("%s (%.*f to %.*f)", formatValue(row.Target, d), d.precision, row.Min, d.precision, row.Max)
}

func action(row types.ComparisonRow, d descriptor) string {
	switch {
	case row.Severity == types.SeverityOK:
		return "OK"
	case row.Key == keys.TruePeak:
		return "Lower ceiling"
	case row.Diff < 0:
		return "Increase " + formatValue(-row.Diff, d)
	default:
		return "Decrease " + formatValue(row.Diff, d)
	}
}
