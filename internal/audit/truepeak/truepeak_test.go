package truepeak

import (
	"math"
	"testing"

	"github.com/farcloser/cambium/internal/types"
)

func quarterRateSine(n int, amplitude float64) []float64 {
	// fs/4 sine shifted by 45 degrees: every sample lands at 0.707 of the real peak.
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(math.Pi/2*float64(i)+math.Pi/4)
	}

	return out
}

func TestDetectInterSamplePeak(t *testing.T) {
	samples := quarterRateSine(4800, 1.0)
	buf := &types.SampleBuffer{SampleRate: 48000, Channels: [][]float64{samples, samples}}

	result, err := Detect(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result == nil {
		t.Fatal("expected a result")
	}

	if result.OversamplingFactor != 4 {
		t.Errorf("oversampling = %d, want 4", result.OversamplingFactor)
	}

	if math.Abs(result.SamplePeakDb-(-3.01)) > 0.05 {
		t.Errorf("sample peak = %.2f dB, want about -3.01", result.SamplePeakDb)
	}

	if result.MaxDbtp < result.SamplePeakDb+2 {
		t.Errorf("true peak %.2f dBTP does not reveal the inter-sample overshoot (sample peak %.2f)",
			result.MaxDbtp, result.SamplePeakDb)
	}

	if result.MaxDbtp > 0.5 {
		t.Errorf("true peak %.2f dBTP overshoots the real 0 dB peak", result.MaxDbtp)
	}

	if result.LeftPeak == nil || result.RightPeak == nil {
		t.Fatal("expected per-channel peaks for stereo input")
	}

	if *result.LeftPeak != *result.RightPeak {
		t.Errorf("identical channels report different peaks: %.3f vs %.3f", *result.LeftPeak, *result.RightPeak)
	}
}

func TestDetectClipping(t *testing.T) {
	samples := make([]float64, 44100)
	for i := range samples {
		samples[i] = math.Max(-1, math.Min(1, 1.5*math.Sin(2*math.Pi*100*float64(i)/44100)))
	}

	result, err := Detect(&types.SampleBuffer{SampleRate: 44100, Channels: [][]float64{samples}})
	if err != nil {
		t.Fatal(err)
	}

	if result.ClippedSamples == 0 {
		t.Error("expected clipped samples")
	}

	if result.ClippingCount == 0 {
		t.Error("expected oversampled points at or above 0 dBTP")
	}

	if result.MaxDbtp < 0 {
		t.Errorf("max = %.2f dBTP, want >= 0 for a clipped signal", result.MaxDbtp)
	}

	if result.LeftPeak != nil {
		t.Error("mono input has no left/right peaks")
	}
}

func TestDetectSilence(t *testing.T) {
	tests := []struct {
		name string
		buf  *types.SampleBuffer
	}{
		{"empty", &types.SampleBuffer{SampleRate: 48000, Channels: [][]float64{{}, {}}}},
		{"digital silence", &types.SampleBuffer{SampleRate: 48000, Channels: [][]float64{make([]float64, 1000)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Detect(tt.buf)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result != nil {
				t.Errorf("expected no result, got %+v", result)
			}
		})
	}
}

func TestPolyphaseUnityGain(t *testing.T) {
	for phase := range Oversample {
		var sum float64
		for tap := range tapsPerPhase {
			sum += polyphaseCoeffs[phase][tap]
		}

		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("phase %d gain = %v, want 1", phase, sum)
		}
	}
}
