package dynamics

import (
	"math"
	"testing"

	"github.com/farcloser/cambium/internal/types"
)

const rate = 44100

func sine(seconds, amplitude float64) []float64 {
	out := make([]float64, int(seconds*rate))
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*220*float64(i)/rate)
	}

	return out
}

func TestAnalyzeSteadyTone(t *testing.T) {
	samples := sine(10, 0.5)

	result, err := Analyze(&types.SampleBuffer{SampleRate: rate, Channels: [][]float64{samples, samples}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result == nil {
		t.Fatal("expected a result")
	}

	if result.DynamicRange > 0.1 {
		t.Errorf("dynamic range = %.2f dB, want about 0 for a steady tone", result.DynamicRange)
	}

	if math.Abs(result.CrestFactor-3.01) > 0.05 {
		t.Errorf("crest factor = %.2f dB, want about 3.01 for a sine", result.CrestFactor)
	}

	if result.DRScore != 3 {
		t.Errorf("DR score = %d, want 3", result.DRScore)
	}
}

func TestAnalyzeContrast(t *testing.T) {
	var samples []float64
	for range 5 {
		samples = append(samples, sine(1, 0.8)...)
		samples = append(samples, sine(1, 0.05)...)
	}

	result, err := Analyze(&types.SampleBuffer{SampleRate: rate, Channels: [][]float64{samples}})
	if err != nil {
		t.Fatal(err)
	}

	if result.DynamicRange < 5 {
		t.Errorf("dynamic range = %.2f dB, want a wide range for loud/quiet alternation", result.DynamicRange)
	}

	if result.PeakRmsDb <= result.AverageRmsDb {
		t.Errorf("peak window %.2f dB must exceed the average %.2f dB", result.PeakRmsDb, result.AverageRmsDb)
	}

	if result.DRScore < 1 || result.DRScore > 20 {
		t.Errorf("DR score %d out of range", result.DRScore)
	}
}

func TestAnalyzeAbsent(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
	}{
		{"shorter than ten windows", sine(1, 0.5)},
		{"silence", make([]float64, rate*3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Analyze(&types.SampleBuffer{SampleRate: rate, Channels: [][]float64{tt.samples}})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result != nil {
				t.Errorf("expected no result, got %+v", result)
			}
		})
	}
}

func TestDRScoreClamp(t *testing.T) {
	if got := drScore(nil); got != minDRScore {
		t.Errorf("drScore(nil) = %d, want %d", got, minDRScore)
	}

	if got := drScore([]block{{peak: 1, rms: 1e-6}, {peak: 1, rms: 1e-6}}); got != maxDRScore {
		t.Errorf("drScore = %d, want clamp at %d", got, maxDRScore)
	}
}
