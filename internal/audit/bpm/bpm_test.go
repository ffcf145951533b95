package bpm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/farcloser/cambium/internal/types"
)

// kicks renders decaying 100 Hz pulses every period seconds over a quiet noise bed.
func kicks(rate int, seconds, period float64) *types.SampleBuffer {
	rng := rand.New(rand.NewSource(42))
	samples := make([]float64, int(seconds*float64(rate)))

	for i := range samples {
		samples[i] = rng.NormFloat64() * 0.001
	}

	pulse := int(period * float64(rate))
	for start := 0; start < len(samples); start += pulse {
		for i := 0; i < rate/5 && start+i < len(samples); i++ {
			t := float64(i) / float64(rate)
			samples[start+i] += 0.9 * math.Exp(-t/0.015) * math.Sin(2*math.Pi*100*t)
		}
	}

	return &types.SampleBuffer{SampleRate: rate, Channels: [][]float64{samples}}
}

func TestDetectKickPattern(t *testing.T) {
	result, err := Detect(context.Background(), kicks(48000, 2, 0.5), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Value == nil || result.Confidence == nil {
		t.Fatalf("expected a tempo, got %+v", result)
	}

	if math.Abs(*result.Value-120) > 2 {
		t.Errorf("bpm = %.1f, want 120", *result.Value)
	}

	if *result.Confidence <= 0.5 {
		t.Errorf("confidence = %.2f, want above 0.5", *result.Confidence)
	}

	if result.Method != MethodCombined {
		t.Errorf("method = %q, want both estimators to agree", result.Method)
	}

	if result.Onsets != 4 {
		t.Errorf("onsets = %d, want 4", result.Onsets)
	}
}

func TestDetectTempoGrid(t *testing.T) {
	detected := 0

	for _, want := range []float64{90, 100, 110, 124, 128, 135, 140, 174} {
		t.Run(fmt.Sprintf("%.0f bpm", want), func(t *testing.T) {
			result, err := Detect(context.Background(), kicks(44100, 20, 60/want), DefaultOptions())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			// No tempo is acceptable, a wrong one is not.
			if result.Value == nil {
				t.Logf("no tempo reported (%d onsets)", result.Onsets)

				return
			}

			detected++

			if math.Abs(*result.Value-want) > 2 {
				t.Errorf("bpm = %.1f (%s, confidence %.2f), want %.0f", *result.Value, result.Method, *result.Confidence, want)
			}
		})
	}

	if detected < 4 {
		t.Errorf("only %d of 8 regular pulses produced a tempo", detected)
	}
}

func TestDetectOnsetsStraddlingWindows(t *testing.T) {
	const rate = 44100

	// Hits 75 ms into a 100 ms window spill into the next one; each must count once, at its start.
	buf := kicks(rate, 4, 0.5)
	shifted := make([]float64, len(buf.Channels[0]))
	shift := 0.075
	offset := int(shift * rate)
	copy(shifted[offset:], buf.Channels[0])

	mono := shifted
	onsets := detectOnsets(mono, rate, DefaultOptions().OnsetRatio, newEnvelope(mono, rate))

	if len(onsets) != 8 {
		t.Fatalf("onsets = %v, want 8", onsets)
	}

	for i, at := range onsets {
		want := 0.075 + 0.5*float64(i)
		if math.Abs(at-want) > 0.011 {
			t.Errorf("onset %d at %.3f s, want %.3f s", i, at, want)
		}
	}
}

func TestDetectNoTempo(t *testing.T) {
	steady := make([]float64, 48000*2)
	for i := range steady {
		steady[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/48000)
	}

	tests := []struct {
		name string
		buf  *types.SampleBuffer
	}{
		{"too short", &types.SampleBuffer{SampleRate: 48000, Channels: [][]float64{make([]float64, 900)}}},
		{"steady tone", &types.SampleBuffer{SampleRate: 48000, Channels: [][]float64{steady}}},
		{"silence", &types.SampleBuffer{SampleRate: 48000, Channels: [][]float64{make([]float64, 48000)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Detect(context.Background(), tt.buf, DefaultOptions())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.Value != nil || result.Confidence != nil {
				t.Errorf("expected no tempo, got %+v", result)
			}
		})
	}
}

func TestDetectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Detect(ctx, kicks(48000, 2, 0.5), DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{120, 120},
		{40, 80},
		{240, 120},
		{420, 105},
		{0, 0},
	}

	for _, tt := range tests {
		if got := fold(tt.in, 60, 200); got != tt.want {
			t.Errorf("fold(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCrossValidate(t *testing.T) {
	tests := []struct {
		name           string
		interval, acf  estimate
		wantBPM        float64
		wantConfidence float64
		wantMethod     string
	}{
		{"agree", estimate{120, 1}, estimate{122, 0.6}, (120 + 122*0.6) / 1.6, 0.8, MethodCombined},
		{"octave apart", estimate{70, 0.9}, estimate{140, 0.3}, 70, 0.6, MethodCombined},
		{"disagree", estimate{100, 0.4}, estimate{150, 0.8}, 150, 0.4, MethodAutocorrelation},
		{"interval only", estimate{128, 0.9}, estimate{}, 128, 0.45, MethodInterval},
		{"nothing", estimate{}, estimate{}, 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, method := crossValidate(tt.interval, tt.acf)

			if math.Abs(got.bpm-tt.wantBPM) > 1e-9 {
				t.Errorf("bpm = %v, want %v", got.bpm, tt.wantBPM)
			}

			if math.Abs(got.confidence-tt.wantConfidence) > 1e-9 {
				t.Errorf("confidence = %v, want %v", got.confidence, tt.wantConfidence)
			}

			if method != tt.wantMethod {
				t.Errorf("method = %q, want %q", method, tt.wantMethod)
			}
		})
	}
}
