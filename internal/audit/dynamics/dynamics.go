package dynamics

import (
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/cambium/internal/audit/shared"
	"github.com/farcloser/cambium/internal/types"
)

const (
	windowSeconds = 0.3
	hopSeconds    = 0.1

	// MinWindows is the number of RMS windows needed before a dynamic range is reported.
	MinWindows = 10

	drBlockSeconds = 3.0
	minDRScore     = 1
	maxDRScore     = 20
)

type block struct {
	peak, rms float64
}

// Analyze measures windowed dynamic range, crest factor and a DR meter style score on the mono mix.
// It returns nil when the input is shorter than MinWindows windows or silent.
func Analyze(buf *types.SampleBuffer) (*types.DynamicsResult, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	window := int(windowSeconds * float64(buf.SampleRate))
	hop := int(hopSeconds * float64(buf.SampleRate))

	if window == 0 || hop == 0 || buf.Len() < window+(MinWindows-1)*hop {
		return nil, nil //nolint:nilnil // absent result is not an error
	}

	slog.Debug("dynamics.Analyze", "stage", "start", "frames", buf.Len())

	mono := shared.Mono(buf)

	levels := make([]float64, 0, (len(mono)-window)/hop+1)

	for start := 0; start+window <= len(mono); start += hop {
		rms := shared.RMS(mono[start : start+window])
		// Silent windows carry no level and would drag the mean to the floor.
		if rms < shared.MinRMS {
			continue
		}

		levels = append(levels, shared.AmplitudeDb(rms))
	}

	if len(levels) == 0 {
		return nil, nil //nolint:nilnil // silence has no dynamics
	}

	var peak float64
	for _, s := range mono {
		peak = math.Max(peak, math.Abs(s))
	}

	result := &types.DynamicsResult{
		PeakRmsDb:    floats.Max(levels),
		AverageRmsDb: stat.Mean(levels, nil),
		CrestFactor:  shared.AmplitudeDb(peak) - shared.AmplitudeDb(shared.RMS(mono)),
		DRScore:      drScore(drBlocks(mono, buf.SampleRate)),
		Windows:      len(levels),
	}

	result.DynamicRange = result.PeakRmsDb - result.AverageRmsDb

	slog.Debug("dynamics.Analyze", "stage", "done",
		"dynamic_range", result.DynamicRange, "crest", result.CrestFactor, "dr", result.DRScore)

	return result, nil
}

// drBlocks splits the signal into 3 s blocks. A trailing partial block counts when longer than 1 s.
func drBlocks(mono []float64, sampleRate int) []block {
	size := int(drBlockSeconds * float64(sampleRate))

	var blocks []block

	for start := 0; start < len(mono); start += size {
		end := min(start+size, len(mono))
		if end-start < size && end-start <= sampleRate {
			break
		}

		var peak float64
		for _, s := range mono[start:end] {
			peak = math.Max(peak, math.Abs(s))
		}

		blocks = append(blocks, block{peak: peak, rms: shared.RMS(mono[start:end])})
	}

	return blocks
}

// drScore is 20*log10(second highest block peak / mean of the loudest 20% block RMS), rounded and clamped.
func drScore(blocks []block) int {
	if len(blocks) == 0 {
		return minDRScore
	}

	peaks := make([]float64, len(blocks))
	levels := make([]float64, len(blocks))

	for i, b := range blocks {
		peaks[i] = b.peak
		levels[i] = b.rms
	}

	slices.Sort(peaks)
	slices.Reverse(peaks)
	slices.Sort(levels)
	slices.Reverse(levels)

	// Second-highest peak avoids a single outlier.
	peak := peaks[min(1, len(peaks)-1)]

	top := max(len(levels)/5, 1)
	rms := stat.Mean(levels[:top], nil)

	if rms < shared.MinRMS || peak == 0 {
		return minDRScore
	}

	score := int(math.Round(20 * math.Log10(peak/rms)))

	return min(max(score, minDRScore), maxDRScore)
}
