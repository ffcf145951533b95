// Package cambium measures a decoded mix, judges it against a genre's targets and turns every deviation
// into a corrective suggestion.
package cambium

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/farcloser/primordium/fault"
	"golang.org/x/sync/errgroup"

	"github.com/farcloser/cambium/internal/audit/bpm"
	"github.com/farcloser/cambium/internal/audit/dcoffset"
	"github.com/farcloser/cambium/internal/audit/dynamics"
	"github.com/farcloser/cambium/internal/audit/loudness"
	"github.com/farcloser/cambium/internal/audit/spectral"
	"github.com/farcloser/cambium/internal/audit/stereo"
	"github.com/farcloser/cambium/internal/audit/truepeak"
	"github.com/farcloser/cambium/internal/compare"
	"github.com/farcloser/cambium/internal/finalize"
	"github.com/farcloser/cambium/internal/suggest"
	"github.com/farcloser/cambium/internal/targets"
	"github.com/farcloser/cambium/internal/types"
)

/*
Usage:

normalizer := targets.New(targets.Embedded(), targets.ModeClub)
result, err := cambium.AnalyzeGenre(ctx, buf, normalizer, "funk_mandela", cambium.DefaultOptions())

for _, row := range result.Table.Rows {
    fmt.Printf("%-28s %10s %s\n", row.Label, row.ValueText, row.Severity)
}

for _, suggestion := range result.Suggestions {
    fmt.Println(suggestion.Message)
}

// Metrics only
metrics, err := cambium.Measure(ctx, buf, cambium.Options{Checks: cambium.ChecksMastering})
*/

// ErrNoProfile is returned when Analyze is called without targets.
var ErrNoProfile = errors.New("no target profile")

// Measure computes every requested metric. A metric that cannot be computed, fails or panics is left nil;
// only an invalid buffer or a cancelled context is an error.
func Measure(ctx context.Context, buf *types.SampleBuffer, opts Options) (*types.MetricsResult, error) {
	applyDefaults(&opts)

	if err := buf.Validate(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrTimeout, err)
	}

	slog.Debug("cambium.Measure", "stage", "start",
		"channels", buf.NumChannels(), "duration", buf.Duration(), "workers", opts.Workers)

	metrics := &types.MetricsResult{
		SampleRate: buf.SampleRate,
		Channels:   buf.NumChannels(),
		Duration:   buf.Duration(),
	}

	// Tempo detection is the slowest metric: it runs on its own, bounded by the BPM budget.
	var tempo chan *types.BPMResult

	if opts.Checks&CheckBPM != 0 {
		tempo = make(chan *types.BPMResult, 1)

		go func() {
			bpmCtx, cancel := context.WithTimeout(ctx, opts.BPMBudget)
			defer cancel()

			var result *types.BPMResult

			run("bpm", &result, func() (*types.BPMResult, error) {
				return bpm.Detect(bpmCtx, buf, opts.BPM)
			})

			if result == nil {
				result = &types.BPMResult{}
			}

			tempo <- result
		}()
	}

	var group errgroup.Group

	group.SetLimit(opts.Workers)

	if opts.Checks&CheckLoudness != 0 {
		group.Go(func() error {
			run("loudness", &metrics.Loudness, func() (*types.LoudnessResult, error) { return loudness.Analyze(buf) })

			return nil
		})
	}

	if opts.Checks&CheckTruePeak != 0 {
		group.Go(func() error {
			run("truepeak", &metrics.TruePeak, func() (*types.TruePeakResult, error) { return truepeak.Detect(buf) })

			return nil
		})
	}

	if opts.Checks&CheckStereo != 0 {
		group.Go(func() error {
			run("stereo", &metrics.Stereo, func() (*types.StereoResult, error) { return stereo.Analyze(buf) })

			return nil
		})
	}

	if opts.Checks&CheckDynamics != 0 {
		group.Go(func() error {
			run("dynamics", &metrics.Dynamics, func() (*types.DynamicsResult, error) { return dynamics.Analyze(buf) })

			return nil
		})
	}

	if opts.Checks&CheckDCOffset != 0 {
		group.Go(func() error {
			run("dcoffset", &metrics.DCOffset, func() (*types.DCOffsetResult, error) { return dcoffset.Detect(buf) })

			return nil
		})
	}

	if opts.Checks&CheckSpectral != 0 {
		group.Go(func() error {
			run("spectral", &metrics.Spectral, func() (*types.SpectralResult, error) {
				return spectral.Analyze(buf, opts.Spectral)
			})

			return nil
		})
	}

	_ = group.Wait()

	if tempo != nil {
		metrics.BPM = <-tempo
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrTimeout, err)
	}

	slog.Debug("cambium.Measure", "stage", "done")

	return metrics, nil
}

// run stores the outcome of one metric in dst. Errors and panics leave dst nil.
func run[T any](name string, dst **T, measure func() (*T, error)) {
	defer func() {
		if recovered := recover(); recovered != nil {
			slog.Error("cambium.Measure: metric panicked", "metric", name, "panic", recovered)

			*dst = nil
		}
	}()

	result, err := measure()
	if err != nil {
		slog.Warn("cambium.Measure: metric unavailable", "metric", name, "error", err)

		return
	}

	*dst = result
}

// Analyze measures buf and judges it against profile.
func Analyze(ctx context.Context, buf *types.SampleBuffer, profile *types.TargetProfile, opts Options) (*Result, error) {
	if profile == nil {
		return nil, ErrNoProfile
	}

	metrics, err := Measure(ctx, buf, opts)
	if err != nil {
		return nil, err
	}

	return Judge(metrics, profile), nil
}

// AnalyzeGenre resolves genre through normalizer, then analyzes buf against it.
func AnalyzeGenre(
	ctx context.Context,
	buf *types.SampleBuffer,
	normalizer *targets.Normalizer,
	genre string,
	opts Options,
) (*Result, error) {
	profile, err := normalizer.Profile(ctx, genre)
	if err != nil {
		if !opts.FallbackToDefaults {
			return nil, err
		}

		mode := normalizer.Mode
		if mode == "" {
			mode = targets.ModeClub
		}

		slog.Warn("cambium: using default targets", "genre", genre, "mode", mode, "error", err)

		profile = targets.DefaultProfile(mode)
	}

	return Analyze(ctx, buf, profile, opts)
}

// Judge compares already computed metrics against profile and produces the finalized suggestions.
func Judge(metrics *types.MetricsResult, profile *types.TargetProfile) *Result {
	var (
		table  *types.ComparisonTable
		legacy []types.Suggestion
		group  errgroup.Group
	)

	group.Go(func() error {
		table = compare.Compare(metrics, profile)

		return nil
	})

	group.Go(func() error {
		legacy = suggest.Generate(metrics, profile, nil)

		return nil
	})

	_ = group.Wait()

	suggestions := suggest.Generate(metrics, profile, table)

	parity := suggest.Parity(suggestions, legacy)
	if len(parity) > 0 {
		slog.Warn("cambium: table and legacy suggestions disagree", "keys", parity)
	}

	finalized := finalize.Finalize(suggestions, table)

	return &Result{
		Metrics:     metrics,
		Profile:     profile,
		Table:       table,
		Suggestions: finalized.Suggestions,
		Diagnostics: Diagnostics{Finalized: finalized, Parity: parity},
	}
}

// ClassifyTruePeak is the true peak rule every classifying path uses.
func ClassifyTruePeak(value float64, target types.MetricTarget) (types.Severity, string) {
	return compare.ClassifyTruePeak(value, target)
}
