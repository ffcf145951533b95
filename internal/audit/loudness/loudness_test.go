package loudness

import (
	"math"
	"testing"

	"github.com/farcloser/cambium/internal/types"
)

func sine(sampleRate int, seconds, freq, amplitude float64, channels int) *types.SampleBuffer {
	n := int(seconds * float64(sampleRate))
	buf := &types.SampleBuffer{SampleRate: sampleRate, Channels: make([][]float64, channels)}

	for ch := range channels {
		buf.Channels[ch] = make([]float64, n)
		for i := range n {
			buf.Channels[ch][i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
		}
	}

	return buf
}

func TestAnalyzeReferenceTone(t *testing.T) {
	// A 1 kHz sine at -20 dBFS peak on two channels reads close to -20 LUFS
	// (K-weighting is ~+0.7 dB at 1 kHz, offset -0.691, two channels +3 dB, sine RMS -3 dB).
	buf := sine(48000, 5, 1000, math.Pow(10, -20.0/20), 2)

	result, err := Analyze(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Integrated == nil {
		t.Fatal("expected integrated loudness")
	}

	if math.Abs(*result.Integrated-(-20)) > 0.5 {
		t.Errorf("integrated = %.2f LUFS, want about -20", *result.Integrated)
	}

	if result.ShortTerm == nil || result.Momentary == nil {
		t.Fatal("expected short-term and momentary maxima")
	}

	if result.LRA == nil {
		t.Fatal("expected loudness range")
	}

	if *result.LRA > 0.5 {
		t.Errorf("LRA = %.2f LU for a steady tone, want near 0", *result.LRA)
	}
}

func TestAnalyzeShortInput(t *testing.T) {
	buf := sine(48000, 1, 1000, 0.5, 2)

	result, err := Analyze(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Integrated == nil {
		t.Error("expected integrated loudness for a 1 s tone")
	}

	if result.ShortTerm != nil {
		t.Error("short-term loudness needs 3 s of audio")
	}

	if result.LRA != nil {
		t.Error("loudness range needs at least two short-term blocks")
	}
}

func TestAnalyzeSilence(t *testing.T) {
	buf := &types.SampleBuffer{SampleRate: 44100, Channels: [][]float64{make([]float64, 44100*4)}}

	result, err := Analyze(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Integrated != nil || result.Momentary != nil || result.ShortTerm != nil || result.LRA != nil {
		t.Error("silence must not produce loudness values")
	}
}

func TestAnalyzeLouderIsLouder(t *testing.T) {
	quiet, err := Analyze(sine(44100, 4, 440, 0.1, 2))
	if err != nil {
		t.Fatal(err)
	}

	loud, err := Analyze(sine(44100, 4, 440, 0.4, 2))
	if err != nil {
		t.Fatal(err)
	}

	// Four times the amplitude is +12 dB.
	delta := *loud.Integrated - *quiet.Integrated
	if math.Abs(delta-12.04) > 0.2 {
		t.Errorf("loudness delta = %.2f, want about 12.04", delta)
	}
}

func TestAnalyzeInvalidBuffer(t *testing.T) {
	if _, err := Analyze(&types.SampleBuffer{SampleRate: 0, Channels: [][]float64{{0}}}); err == nil {
		t.Error("expected an error for a zero sample rate")
	}
}
