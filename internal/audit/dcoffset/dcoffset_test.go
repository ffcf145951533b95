package dcoffset

import (
	"math"
	"testing"

	"github.com/farcloser/cambium/internal/audit/shared"
	"github.com/farcloser/cambium/internal/types"
)

func TestDetect(t *testing.T) {
	left := make([]float64, 48000)
	right := make([]float64, 48000)

	for i := range left {
		left[i] = 0.5*math.Sin(2*math.Pi*100*float64(i)/48000) + 0.01
		right[i] = 0.5 * math.Sin(2*math.Pi*100*float64(i)/48000)
	}

	result, err := Detect(&types.SampleBuffer{SampleRate: 48000, Channels: [][]float64{left, right}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(result.Channels[0]-0.01) > 1e-6 {
		t.Errorf("left offset = %v, want 0.01", result.Channels[0])
	}

	if math.Abs(result.Channels[1]) > 1e-6 {
		t.Errorf("right offset = %v, want 0", result.Channels[1])
	}

	if math.Abs(result.MaxDb-(-40)) > 0.01 {
		t.Errorf("max = %.2f dB, want -40", result.MaxDb)
	}
}

func TestDetectSilence(t *testing.T) {
	result, err := Detect(&types.SampleBuffer{SampleRate: 48000, Channels: [][]float64{make([]float64, 10)}})
	if err != nil {
		t.Fatal(err)
	}

	if result.MaxDb != shared.FloorDb {
		t.Errorf("silence = %.2f dB, want floor %.0f", result.MaxDb, shared.FloorDb)
	}
}

func TestDetectEmpty(t *testing.T) {
	result, err := Detect(&types.SampleBuffer{SampleRate: 48000, Channels: [][]float64{{}}})
	if err != nil {
		t.Fatal(err)
	}

	if result != nil {
		t.Errorf("expected no result, got %+v", result)
	}
}
