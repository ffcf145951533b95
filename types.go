package cambium

import (
	"runtime"
	"time"

	"github.com/farcloser/cambium/internal/audit/bpm"
	"github.com/farcloser/cambium/internal/audit/spectral"
	"github.com/farcloser/cambium/internal/finalize"
	"github.com/farcloser/cambium/internal/types"
)

// Re-exported data model.
type (
	SampleBuffer    = types.SampleBuffer
	MetricsResult   = types.MetricsResult
	TargetProfile   = types.TargetProfile
	MetricTarget    = types.MetricTarget
	ComparisonRow   = types.ComparisonRow
	ComparisonTable = types.ComparisonTable
	Suggestion      = types.Suggestion
	Severity        = types.Severity
	Finalized       = finalize.Finalized
)

// Check selects one metric family.
type Check int

const (
	CheckLoudness Check = 1 << iota
	CheckTruePeak
	CheckStereo
	CheckDynamics
	CheckDCOffset
	CheckSpectral
	CheckBPM

	// Presets.
	ChecksMastering = CheckLoudness | CheckTruePeak | CheckStereo | CheckDynamics
	ChecksAll       = ChecksMastering | CheckDCOffset | CheckSpectral | CheckBPM
)

func (c Check) String() string {
	switch c {
	case CheckLoudness:
		return "loudness"
	case CheckTruePeak:
		return "true-peak"
	case CheckStereo:
		return "stereo"
	case CheckDynamics:
		return "dynamics"
	case CheckDCOffset:
		return "dc-offset"
	case CheckSpectral:
		return "spectral"
	case CheckBPM:
		return "bpm"
	}

	return "unknown"
}

// DefaultBPMBudget bounds tempo detection.
const DefaultBPMBudget = 10 * time.Second

// Options configures the analysis.
type Options struct {
	Checks Check // which metrics to compute (default: ChecksAll)

	// Workers bounds concurrent metric computations (default: runtime.NumCPU()).
	Workers int

	// BPMBudget bounds tempo detection; past it BPM is reported as absent.
	BPMBudget time.Duration

	Spectral spectral.Options
	BPM      bpm.Options

	// FallbackToDefaults makes AnalyzeGenre use DefaultProfile when a genre document cannot be resolved.
	FallbackToDefaults bool
}

// DefaultOptions returns options computing every metric.
func DefaultOptions() Options {
	return Options{
		Checks:    ChecksAll,
		Workers:   runtime.NumCPU(),
		BPMBudget: DefaultBPMBudget,
		Spectral:  spectral.DefaultOptions(),
		BPM:       bpm.DefaultOptions(),
	}
}

func applyDefaults(opts *Options) {
	defaults := DefaultOptions()

	if opts.Checks == 0 {
		opts.Checks = defaults.Checks
	}

	if opts.Workers <= 0 {
		opts.Workers = defaults.Workers
	}

	if opts.BPMBudget <= 0 {
		opts.BPMBudget = defaults.BPMBudget
	}
}

// Diagnostics reports producer disagreements. Nothing in it alters the results.
type Diagnostics struct {
	Finalized finalize.Finalized
	// Parity lists keys on which table-driven and legacy suggestions disagree.
	Parity []string
}

// Result contains one complete analysis.
type Result struct {
	Metrics     *types.MetricsResult
	Profile     *types.TargetProfile
	Table       *types.ComparisonTable
	Suggestions []types.Suggestion // finalized
	Diagnostics Diagnostics
}
