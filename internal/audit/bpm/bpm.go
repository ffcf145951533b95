package bpm

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/farcloser/primordium/fault"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/cambium/internal/audit/shared"
	"github.com/farcloser/cambium/internal/types"
)

const (
	MethodCombined        = "combined"
	MethodInterval        = "interval"
	MethodAutocorrelation = "autocorrelation"
)

type Options struct {
	MaxSeconds    float64 // analyzed prefix, default 30
	MinBPM        float64 // default 60
	MaxBPM        float64 // default 200
	MinConfidence float64 // below this no tempo is reported, default 0.3
	OnsetRatio    float64 // window energy over previous window, default 1.3
}

func DefaultOptions() Options {
	return Options{
		MaxSeconds:    30,
		MinBPM:        60,
		MaxBPM:        200,
		MinConfidence: 0.3,
		OnsetRatio:    1.3,
	}
}

const (
	// MinSamples is the shortest input a tempo is estimated for.
	MinSamples = 1024

	// MinOnsets is the fewest onsets a tempo is estimated from.
	MinOnsets = 4

	onsetWindowSeconds = 0.1
	envelopeSeconds    = 0.01

	// intervalSpread is the relative distance from the median interval still counted as on the beat.
	intervalSpread = 0.10

	// agreement is the relative distance under which both estimators are taken to agree.
	agreement = 0.04
)

type estimate struct {
	bpm        float64
	confidence float64
}

// Detect estimates the tempo of the first MaxSeconds of the mono mix.
// Value and Confidence stay nil when the input is too short, has fewer than MinOnsets onsets,
// or no estimate reaches MinConfidence inside [MinBPM, MaxBPM].
func Detect(ctx context.Context, buf *types.SampleBuffer, opts Options) (*types.BPMResult, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	opts = applyDefaults(opts)
	result := &types.BPMResult{}

	if buf.Len() < MinSamples {
		return result, nil
	}

	buf = buf.Head(int(opts.MaxSeconds * float64(buf.SampleRate)))

	slog.Debug("bpm.Detect", "stage", "start", "frames", buf.Len())

	mono := shared.Mono(buf)
	env := newEnvelope(mono, buf.SampleRate)

	onsets := detectOnsets(mono, buf.SampleRate, opts.OnsetRatio, env)
	result.Onsets = len(onsets)

	if len(onsets) < MinOnsets {
		slog.Debug("bpm.Detect", "stage", "done", "onsets", len(onsets))

		return result, nil
	}

	byInterval := intervalEstimate(onsets, opts)

	byAutocorrelation, err := autocorrelationEstimate(ctx, env, opts)
	if err != nil {
		return nil, err
	}

	combined, method := crossValidate(byInterval, byAutocorrelation)

	if combined.bpm < opts.MinBPM || combined.bpm > opts.MaxBPM || combined.confidence < opts.MinConfidence {
		slog.Debug("bpm.Detect", "stage", "done", "rejected", combined.bpm, "confidence", combined.confidence)

		return result, nil
	}

	result.Value = shared.Finite(math.Round(combined.bpm*10) / 10)
	result.Confidence = shared.Finite(combined.confidence)
	result.Method = method

	slog.Debug("bpm.Detect", "stage", "done", "bpm", combined.bpm, "confidence", combined.confidence, "method", method)

	return result, nil
}

func applyDefaults(opts Options) Options {
	def := DefaultOptions()

	if opts.MaxSeconds <= 0 {
		opts.MaxSeconds = def.MaxSeconds
	}

	if opts.MinBPM <= 0 {
		opts.MinBPM = def.MinBPM
	}

	if opts.MaxBPM <= opts.MinBPM {
		opts.MaxBPM = max(def.MaxBPM, 2*opts.MinBPM)
	}

	if opts.MinConfidence <= 0 {
		opts.MinConfidence = def.MinConfidence
	}

	if opts.OnsetRatio <= 1 {
		opts.OnsetRatio = def.OnsetRatio
	}

	return opts
}

// envelope is the half-wave rectified energy difference of consecutive 10 ms frames.
type envelope struct {
	novelty      []float64
	frameSize    int     // samples per frame
	frameSeconds float64 // exact frame duration
}

func newEnvelope(mono []float64, sampleRate int) envelope {
	size := int(envelopeSeconds * float64(sampleRate))
	if size == 0 {
		return envelope{}
	}

	energies := frameEnergies(mono, size)
	novelty := make([]float64, len(energies))

	var previous float64

	for i, energy := range energies {
		novelty[i] = math.Max(0, energy-previous)
		previous = energy
	}

	return envelope{novelty: novelty, frameSize: size, frameSeconds: float64(size) / float64(sampleRate)}
}

// peak returns the frame with the largest novelty among the frames covering samples [from, to).
func (e envelope) peak(from, to int) int {
	lo := max(from/e.frameSize, 0)
	hi := min((to+e.frameSize-1)/e.frameSize, len(e.novelty))

	best := lo
	for frame := lo; frame < hi; frame++ {
		if e.novelty[frame] > e.novelty[best] {
			best = frame
		}
	}

	return best
}

// detectOnsets returns onset times in seconds. A 100 ms window is an onset when its energy exceeds
// ratio times the previous window and half the mean window energy. The onset is timed at the novelty
// peak of that window and the one before it, so a hit straddling two windows is counted once.
func detectOnsets(mono []float64, sampleRate int, ratio float64, env envelope) []float64 {
	size := int(onsetWindowSeconds * float64(sampleRate))
	if size == 0 || env.frameSize == 0 {
		return nil
	}

	energies := frameEnergies(mono, size)
	if len(energies) == 0 {
		return nil
	}

	floor := stat.Mean(energies, nil) / 2

	var (
		onsets   []float64
		previous float64
	)

	for i, energy := range energies {
		if energy > ratio*previous && energy > floor {
			at := float64(env.peak((i-1)*size, (i+1)*size)) * env.frameSeconds

			if len(onsets) == 0 || at-onsets[len(onsets)-1] >= onsetWindowSeconds {
				onsets = append(onsets, at)
			}
		}

		previous = energy
	}

	return onsets
}

// frameEnergies is the mean square of consecutive non-overlapping frames; a trailing partial frame is dropped.
func frameEnergies(mono []float64, size int) []float64 {
	energies := make([]float64, 0, len(mono)/size)

	for start := 0; start+size <= len(mono); start += size {
		var sum float64
		for _, s := range mono[start : start+size] {
			sum += s * s
		}

		energies = append(energies, sum/float64(size))
	}

	return energies
}

// intervalEstimate keeps the inter-onset intervals within intervalSpread of the median and takes their
// mean as the beat. Confidence is the share of intervals kept.
func intervalEstimate(onsets []float64, opts Options) estimate {
	intervals := make([]float64, 0, len(onsets)-1)
	for i := 1; i < len(onsets); i++ {
		intervals = append(intervals, onsets[i]-onsets[i-1])
	}

	slices.Sort(intervals)

	median := stat.Quantile(0.5, stat.Empirical, intervals, nil)
	if median <= 0 {
		return estimate{}
	}

	var regular []float64

	for _, interval := range intervals {
		if math.Abs(interval-median) <= intervalSpread*median {
			regular = append(regular, interval)
		}
	}

	// The mean of the regular intervals resolves the beat below the envelope frame.
	beat := stat.Mean(regular, nil)

	return estimate{
		bpm:        fold(60/beat, opts.MinBPM, opts.MaxBPM),
		confidence: float64(len(regular)) / float64(len(intervals)),
	}
}

// autocorrelationEstimate autocorrelates the novelty envelope over the lags of the tempo band.
// The peak lag is refined by parabolic interpolation. Confidence is the peak over the zero-lag energy.
func autocorrelationEstimate(ctx context.Context, env envelope, opts Options) (estimate, error) {
	novelty := env.novelty

	zeroLag := correlate(novelty, 0)
	if zeroLag <= 0 {
		return estimate{}, nil
	}

	minLag := int(math.Round(60 / (opts.MaxBPM * env.frameSeconds)))
	maxLag := int(math.Round(60 / (opts.MinBPM * env.frameSeconds)))

	bestLag := 0
	bestValue := 0.0

	for lag := max(minLag, 1); lag <= maxLag && lag < len(novelty); lag++ {
		if err := ctx.Err(); err != nil {
			return estimate{}, fmt.Errorf("%w: %w", fault.ErrTimeout, err)
		}

		value := correlate(novelty, lag)
		if value > bestValue {
			bestValue = value
			bestLag = lag
		}
	}

	if bestValue == 0 {
		return estimate{}, nil
	}

	lag := float64(bestLag)

	if bestLag+1 < len(novelty) {
		before, after := correlate(novelty, bestLag-1), correlate(novelty, bestLag+1)
		if curvature := before - 2*bestValue + after; curvature < 0 {
			lag += shared.Clamp(0.5*(before-after)/curvature, -0.5, 0.5)
		}
	}

	return estimate{
		bpm:        fold(60/(lag*env.frameSeconds), opts.MinBPM, opts.MaxBPM),
		confidence: shared.Clamp(bestValue/zeroLag, 0, 1),
	}, nil
}

// correlate is the biased autocorrelation of signal at lag.
func correlate(signal []float64, lag int) float64 {
	var sum float64
	for i := 0; i+lag < len(signal); i++ {
		sum += signal[i] * signal[i+lag]
	}

	return sum
}

// fold moves bpm by octaves into [low, high].
func fold(bpm, low, high float64) float64 {
	if bpm <= 0 {
		return 0
	}

	for bpm < low {
		bpm *= 2
	}

	for bpm > high {
		bpm /= 2
	}

	return bpm
}

// crossValidate combines both estimates. When they agree, directly or an octave apart, the result
// is their confidence-weighted average at the stronger estimate's octave with the mean confidence.
// Otherwise the stronger estimate wins with its confidence halved.
func crossValidate(interval, autocorrelation estimate) (estimate, string) {
	switch {
	case interval.bpm == 0 && autocorrelation.bpm == 0:
		return estimate{}, ""
	case autocorrelation.bpm == 0:
		return estimate{bpm: interval.bpm, confidence: interval.confidence / 2}, MethodInterval
	case interval.bpm == 0:
		return estimate{bpm: autocorrelation.bpm, confidence: autocorrelation.confidence / 2}, MethodAutocorrelation
	}

	strong, weak, method := interval, autocorrelation, MethodInterval
	if autocorrelation.confidence > interval.confidence {
		strong, weak, method = autocorrelation, interval, MethodAutocorrelation
	}

	for _, factor := range []float64{1, 2, 0.5} {
		candidate := weak.bpm * factor
		if math.Abs(candidate-strong.bpm) > agreement*strong.bpm {
			continue
		}

		total := strong.confidence + weak.confidence
		if total == 0 {
			return estimate{}, ""
		}

		return estimate{
			bpm:        (strong.bpm*strong.confidence + candidate*weak.confidence) / total,
			confidence: total / 2,
		}, MethodCombined
	}

	return estimate{bpm: strong.bpm, confidence: strong.confidence / 2}, method
}
