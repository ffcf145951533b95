package cambium_test

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/farcloser/cambium"
	"github.com/farcloser/cambium/internal/keys"
	"github.com/farcloser/cambium/internal/targets"
	"github.com/farcloser/cambium/internal/types"
)

func sine(seconds float64, amplitude float64) *types.SampleBuffer {
	const rate = 48000

	n := int(seconds * rate)
	left := make([]float64, n)
	right := make([]float64, n)

	for i := range n {
		left[i] = amplitude * math.Sin(2*math.Pi*1000*float64(i)/rate)
		right[i] = amplitude * math.Sin(2*math.Pi*1000*float64(i)/rate+0.3)
	}

	return &types.SampleBuffer{SampleRate: rate, Channels: [][]float64{left, right}}
}

func TestMeasureShortInput(t *testing.T) {
	metrics, err := cambium.Measure(context.Background(), sine(0.01, 0.5), cambium.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if metrics.TruePeak == nil {
		t.Error("true peak is defined for any non-silent input")
	}

	if metrics.Spectral != nil || metrics.Stereo != nil || metrics.Dynamics != nil {
		t.Errorf("short input must leave spectral, stereo and dynamics absent: %+v", metrics)
	}

	if metrics.BPM == nil || metrics.BPM.Value != nil || metrics.BPM.Confidence != nil {
		t.Errorf("short input must report an empty tempo, got %+v", metrics.BPM)
	}
}

func TestMeasureChecks(t *testing.T) {
	metrics, err := cambium.Measure(context.Background(), sine(1, 0.5), cambium.Options{Checks: cambium.CheckTruePeak})
	if err != nil {
		t.Fatal(err)
	}

	if metrics.TruePeak == nil {
		t.Error("requested true peak missing")
	}

	if metrics.Loudness != nil || metrics.Spectral != nil || metrics.BPM != nil {
		t.Error("unrequested metrics were computed")
	}
}

// pulses is a stereo kick pattern every period seconds.
func pulses(seconds, period float64) *types.SampleBuffer {
	const rate = 44100

	samples := make([]float64, int(seconds*rate))
	step := int(period * rate)

	for start := 0; start < len(samples); start += step {
		for i := 0; i < rate/5 && start+i < len(samples); i++ {
			at := float64(i) / rate
			samples[start+i] = 0.9 * math.Exp(-at/0.015) * math.Sin(2*math.Pi*100*at)
		}
	}

	return &types.SampleBuffer{SampleRate: rate, Channels: [][]float64{samples, slices.Clone(samples)}}
}

func TestMeasureBPMBudget(t *testing.T) {
	buf := pulses(30, 0.5)

	full, err := cambium.Measure(context.Background(), buf, cambium.Options{Checks: cambium.CheckBPM})
	if err != nil {
		t.Fatal(err)
	}

	if full.BPM == nil || full.BPM.Value == nil {
		t.Fatalf("expected a tempo within the default budget, got %+v", full.BPM)
	}

	opts := cambium.Options{Checks: cambium.ChecksMastering | cambium.CheckBPM, BPMBudget: time.Nanosecond}

	metrics, err := cambium.Measure(context.Background(), buf, opts)
	if err != nil {
		t.Fatalf("an exhausted tempo budget must not fail the measurement: %v", err)
	}

	if metrics.BPM == nil || metrics.BPM.Value != nil || metrics.BPM.Confidence != nil {
		t.Errorf("expected an empty tempo past the budget, got %+v", metrics.BPM)
	}

	if metrics.Loudness == nil || metrics.TruePeak == nil || metrics.Dynamics == nil {
		t.Errorf("sibling metrics must survive the tempo timeout: %+v", metrics)
	}
}

func TestMeasureErrors(t *testing.T) {
	if _, err := cambium.Measure(context.Background(), nil, cambium.DefaultOptions()); !errors.Is(err, types.ErrInvalidBuffer) {
		t.Errorf("nil buffer: got %v, want ErrInvalidBuffer", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := cambium.Measure(ctx, sine(1, 0.5), cambium.DefaultOptions()); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context: got %v, want context.Canceled", err)
	}
}

func TestAnalyzeGenre(t *testing.T) {
	normalizer := targets.New(targets.Embedded(), targets.ModeClub)

	result, err := cambium.AnalyzeGenre(context.Background(), sine(5, 0.1), normalizer, "Funk Mandela", cambium.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Profile.Genre() != "funk_mandela" {
		t.Errorf("genre = %q, want funk_mandela", result.Profile.Genre())
	}

	if len(result.Diagnostics.Parity) != 0 {
		t.Errorf("table and legacy suggestions disagree on %v", result.Diagnostics.Parity)
	}

	if !result.Diagnostics.Finalized.Consistent() {
		t.Errorf("inconsistent suggestions: %+v", result.Diagnostics.Finalized)
	}

	counts := result.Table.Counts
	if len(result.Suggestions) != counts.Attention+counts.Critical {
		t.Errorf("%d suggestions for %d non-OK rows", len(result.Suggestions), counts.Attention+counts.Critical)
	}

	// A quiet tone is far below a club loudness target.
	row, ok := result.Table.Row(keys.LUFS)
	if !ok || row.Severity != types.SeverityCritical {
		t.Errorf("lufs row = %+v, want critical", row)
	}
}

func TestAnalyzeGenreFallback(t *testing.T) {
	normalizer := targets.New(targets.Embedded(), targets.ModeStreaming)

	_, err := cambium.AnalyzeGenre(context.Background(), sine(1, 0.5), normalizer, "polka", cambium.DefaultOptions())
	if !errors.Is(err, targets.ErrGenreNotFound) {
		t.Fatalf("got %v, want ErrGenreNotFound", err)
	}

	opts := cambium.DefaultOptions()
	opts.FallbackToDefaults = true

	result, err := cambium.AnalyzeGenre(context.Background(), sine(1, 0.5), normalizer, "polka", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Profile.Strategy() != targets.StrategyDefaults || result.Profile.Mode() != "streaming" {
		t.Errorf("profile = %s/%s, want defaults/streaming", result.Profile.Strategy(), result.Profile.Mode())
	}
}

func TestAnalyzeWithoutProfile(t *testing.T) {
	if _, err := cambium.Analyze(context.Background(), sine(1, 0.5), nil, cambium.DefaultOptions()); !errors.Is(err, cambium.ErrNoProfile) {
		t.Errorf("got %v, want ErrNoProfile", err)
	}
}

func TestJudgeRemovesNothingForCleanMix(t *testing.T) {
	lufs := -14.0
	metrics := &types.MetricsResult{
		Loudness: &types.LoudnessResult{Integrated: &lufs},
		TruePeak: &types.TruePeakResult{MaxDbtp: -1.2},
	}

	result := cambium.Judge(metrics, targets.DefaultProfile(targets.ModeStreaming))

	if len(result.Suggestions) != 0 || result.Table.Counts.OK != 2 {
		t.Errorf("clean mix: %d suggestions, counts %+v", len(result.Suggestions), result.Table.Counts)
	}
}

func TestClassifyTruePeak(t *testing.T) {
	hardCap := 0.0
	target := types.MetricTarget{Target: -1, Min: -3, Max: -1, Tolerance: 5, HardCap: &hardCap}

	for _, value := range []float64{3.9, 1.0, 0.5, 0.1} {
		if severity, _ := cambium.ClassifyTruePeak(value, target); severity != types.SeverityCritical {
			t.Errorf("ClassifyTruePeak(%v) = %v, want CRITICAL", value, severity)
		}
	}
}
