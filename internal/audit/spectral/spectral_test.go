package spectral

import (
	"math"
	"math/rand"
	"testing"

	"github.com/farcloser/cambium/internal/keys"
	"github.com/farcloser/cambium/internal/types"
)

func tone(rate int, seconds, freq float64) *types.SampleBuffer {
	samples := make([]float64, int(seconds*float64(rate)))
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}

	return &types.SampleBuffer{SampleRate: rate, Channels: [][]float64{samples, samples}}
}

func TestAnalyzeTone(t *testing.T) {
	result, err := Analyze(tone(48000, 2, 1000), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result == nil {
		t.Fatal("expected a result")
	}

	if math.Abs(result.CentroidHz-1000) > 50 {
		t.Errorf("centroid = %.1f Hz, want about 1000", result.CentroidHz)
	}

	if math.Abs(result.RolloffHz-1000) > 50 {
		t.Errorf("rolloff = %.1f Hz, want about 1000", result.RolloffHz)
	}

	if result.Flatness > 0.1 {
		t.Errorf("flatness = %.3f, want near 0 for a pure tone", result.Flatness)
	}

	if len(result.Bands) != len(Bands) {
		t.Fatalf("got %d bands, want %d", len(result.Bands), len(Bands))
	}

	mid := result.Bands[keys.Mid]
	if mid.EnergyPct < 95 {
		t.Errorf("mid band holds %.1f%% of the energy, want nearly all", mid.EnergyPct)
	}

	for name, band := range result.Bands {
		if name != keys.Mid && band.RmsDb >= mid.RmsDb {
			t.Errorf("band %s (%.1f dB) is not below mid (%.1f dB)", name, band.RmsDb, mid.RmsDb)
		}

		if band.PeakDb < band.RmsDb {
			t.Errorf("band %s peak %.1f dB below its average %.1f dB", name, band.PeakDb, band.RmsDb)
		}
	}
}

func TestAnalyzeNoise(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	samples := make([]float64, 48000)
	for i := range samples {
		samples[i] = rng.Float64() - 0.5
	}

	result, err := Analyze(&types.SampleBuffer{SampleRate: 48000, Channels: [][]float64{samples}}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	if result.Flatness < 0.4 {
		t.Errorf("flatness = %.3f, want high for white noise", result.Flatness)
	}

	if result.CentroidHz < 8000 {
		t.Errorf("centroid = %.1f Hz, want in the upper half for white noise", result.CentroidHz)
	}

	// White noise spreads power evenly, so the widest band holds the most energy.
	if result.Bands[keys.Air].EnergyPct < result.Bands[keys.Sub].EnergyPct {
		t.Errorf("air %.2f%% below sub %.2f%%", result.Bands[keys.Air].EnergyPct, result.Bands[keys.Sub].EnergyPct)
	}
}

func TestAnalyzeLowSampleRate(t *testing.T) {
	result, err := Analyze(tone(16000, 1, 440), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := result.Bands[keys.Air]; ok {
		t.Error("air band lies above nyquist and must be omitted")
	}

	if _, ok := result.Bands[keys.Presence]; !ok {
		t.Error("presence band starts below nyquist and must be kept")
	}
}

func TestAnalyzeAbsent(t *testing.T) {
	tests := []struct {
		name string
		buf  *types.SampleBuffer
	}{
		{"shorter than a frame", tone(48000, 0.05, 1000)},
		{"silence", &types.SampleBuffer{SampleRate: 48000, Channels: [][]float64{make([]float64, 48000)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Analyze(tt.buf, Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result != nil {
				t.Errorf("expected no result, got %+v", result)
			}
		})
	}
}

func TestFramePositions(t *testing.T) {
	opts := Options{FFTSize: 4096, HopSize: 1024, MaxFrames: 4}

	positions := framePositions(4096+1024*10, opts)
	if len(positions) != 4 {
		t.Fatalf("got %d frames, want 4", len(positions))
	}

	if positions[0] != 0 || positions[3] != 1024*10 {
		t.Errorf("frames %v do not span the signal", positions)
	}

	positions = framePositions(4096+1024*2, opts)
	if len(positions) != 3 || positions[2] != 2048 {
		t.Errorf("frames = %v, want every hop", positions)
	}
}
