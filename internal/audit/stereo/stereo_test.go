package stereo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/farcloser/cambium/internal/types"
)

func tone(n int, freq, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/48000)
	}

	return out
}

func scaled(in []float64, factor float64) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = v * factor
	}

	return out
}

func TestAnalyze(t *testing.T) {
	const n = 48000

	rng := rand.New(rand.NewSource(7))
	noiseL := make([]float64, n)
	noiseR := make([]float64, n)

	for i := range n {
		noiseL[i] = rng.Float64() - 0.5
		noiseR[i] = rng.Float64() - 0.5
	}

	base := tone(n, 440, 0.5)

	tests := []struct {
		name        string
		left, right []float64
		correlation float64
		width       float64
		phaseIssues bool
		monoCompat  bool
		balanceSign int
		tolerance   float64
		// noise sits on the mono-compatibility boundary and has no exact width.
		noisy bool
	}{
		{"dual mono", base, base, 1, 0, false, true, 0, 0.001, false},
		{"inverted", base, scaled(base, -1), -1, 1, true, false, 0, 0.001, false},
		{"uncorrelated noise", noiseL, noiseR, 0, 1, false, false, 0, 0.05, true},
		{"left heavy", base, scaled(base, 0.5), 1, 0.5, false, true, -1, 0.01, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Analyze(&types.SampleBuffer{SampleRate: 48000, Channels: [][]float64{tt.left, tt.right}})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result == nil {
				t.Fatal("expected a result")
			}

			if math.Abs(result.Correlation-tt.correlation) > tt.tolerance {
				t.Errorf("correlation = %.3f, want %.3f", result.Correlation, tt.correlation)
			}

			if !tt.noisy && math.Abs(result.Width-tt.width) > 0.01 {
				t.Errorf("width = %.3f, want %.3f", result.Width, tt.width)
			}

			if result.HasPhaseIssues != tt.phaseIssues {
				t.Errorf("phase issues = %v, want %v", result.HasPhaseIssues, tt.phaseIssues)
			}

			if !tt.noisy && result.IsMonoCompatible != tt.monoCompat {
				t.Errorf("mono compatible = %v, want %v", result.IsMonoCompatible, tt.monoCompat)
			}

			switch {
			case tt.balanceSign < 0 && result.Balance >= 0:
				t.Errorf("balance = %.3f, want left-leaning", result.Balance)
			case tt.balanceSign == 0 && math.Abs(result.Balance) > 0.01:
				t.Errorf("balance = %.3f, want centered", result.Balance)
			}

			if result.Correlation < -1 || result.Correlation > 1 || result.Width < 0 || result.Width > 1 {
				t.Errorf("values out of range: %+v", result)
			}
		})
	}
}

func TestAnalyzeAbsent(t *testing.T) {
	tests := []struct {
		name string
		buf  *types.SampleBuffer
	}{
		{"mono", &types.SampleBuffer{SampleRate: 48000, Channels: [][]float64{tone(4800, 440, 0.5)}}},
		{"too short", &types.SampleBuffer{SampleRate: 48000, Channels: [][]float64{tone(100, 440, 0.5), tone(100, 440, 0.5)}}},
		{"silent", &types.SampleBuffer{SampleRate: 48000, Channels: [][]float64{make([]float64, 4800), make([]float64, 4800)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Analyze(tt.buf)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result != nil {
				t.Errorf("expected no result, got %+v", result)
			}
		})
	}
}
