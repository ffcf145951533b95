package truepeak

import (
	"log/slog"
	"math"

	"github.com/farcloser/cambium/internal/audit/shared"
	"github.com/farcloser/cambium/internal/types"
)

const (
	Oversample   = 4  // 4x oversampling per ITU-R BS.1770
	tapsPerPhase = 12 // filter taps per phase
	totalTaps    = Oversample * tapsPerPhase

	// fullScale is the sample-domain level counted as clipped (one 16-bit LSB below 1.0).
	fullScale = 1.0 - 1.0/shared.MaxValue16
)

// Polyphase filter coefficients for 4x oversampling.
// Generated from windowed sinc with Kaiser window (beta=5).
//
//nolint:gochecknoglobals // computed once, read-only
var polyphaseCoeffs [Oversample][tapsPerPhase]float64

//nolint:gochecknoinits // coefficient table
func init() {
	// Lowpass at the Nyquist of the original signal.
	beta := 5.0

	center := float64(totalTaps-1) / 2.0

	for phase := range Oversample {
		for tap := range tapsPerPhase {
			n := tap*Oversample + phase
			x := float64(n) - center

			sinc := 1.0
			if math.Abs(x) >= 1e-10 {
				sinc = math.Sin(math.Pi*x/float64(Oversample)) / (math.Pi * x / float64(Oversample))
			}

			alpha := x / center
			if math.Abs(alpha) <= 1.0 {
				window := bessel0(beta*math.Sqrt(1-alpha*alpha)) / bessel0(beta)
				polyphaseCoeffs[phase][tap] = sinc * window * float64(Oversample)
			}
		}
	}

	// Unity DC gain per phase.
	for phase := range Oversample {
		var sum float64
		for tap := range tapsPerPhase {
			sum += polyphaseCoeffs[phase][tap]
		}

		for tap := range tapsPerPhase {
			polyphaseCoeffs[phase][tap] /= sum
		}
	}
}

// Bessel function I0 (modified Bessel function of the first kind, order 0).
func bessel0(x float64) float64 {
	sum := 1.0
	term := 1.0

	for k := 1; k <= 25; k++ {
		term *= (x * x) / (4.0 * float64(k) * float64(k))

		sum += term
		if term < 1e-12 {
			break
		}
	}

	return sum
}

type channelPeaks struct {
	samplePeak     float64
	truePeak       float64
	clippingCount  uint64
	clippedSamples uint64
}

func scanChannel(samples []float64) channelPeaks {
	var (
		peaks   channelPeaks
		history [tapsPerPhase]float64
	)

	// Flush the filter with zeros so the final samples are interpolated too.
	total := len(samples) + tapsPerPhase

	for i := range total {
		sample := 0.0
		if i < len(samples) {
			sample = samples[i]

			absSample := math.Abs(sample)
			peaks.samplePeak = math.Max(peaks.samplePeak, absSample)

			if absSample >= fullScale {
				peaks.clippedSamples++
			}
		}

		copy(history[0:], history[1:])
		history[tapsPerPhase-1] = sample

		for phase := range Oversample {
			var interp float64
			for tap := range tapsPerPhase {
				interp += history[tap] * polyphaseCoeffs[phase][tap]
			}

			absInterp := math.Abs(interp)
			peaks.truePeak = math.Max(peaks.truePeak, absInterp)

			if absInterp >= 1.0 {
				peaks.clippingCount++
			}
		}
	}

	// The reconstruction can never be lower than the samples it passes through.
	peaks.truePeak = math.Max(peaks.truePeak, peaks.samplePeak)

	return peaks
}

// Detect measures the oversampled true peak of every channel.
// It returns nil for empty or digitally silent input.
func Detect(buf *types.SampleBuffer) (*types.TruePeakResult, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	if buf.Len() == 0 {
		return nil, nil //nolint:nilnil // absent result is not an error
	}

	slog.Debug("truepeak.Detect", "stage", "start", "channels", buf.NumChannels())

	result := &types.TruePeakResult{
		OversamplingFactor: Oversample,
		ChannelPeaksDbtp:   make([]float64, buf.NumChannels()),
		Frames:             uint64(buf.Len()), //nolint:gosec // length is never negative
	}

	var samplePeak float64

	for ch, samples := range buf.Channels {
		peaks := scanChannel(samples)

		result.ChannelPeaksDbtp[ch] = shared.AmplitudeDb(peaks.truePeak)
		result.ClippingCount += peaks.clippingCount
		result.ClippedSamples += peaks.clippedSamples
		result.MaxLinear = math.Max(result.MaxLinear, peaks.truePeak)
		samplePeak = math.Max(samplePeak, peaks.samplePeak)
	}

	if result.MaxLinear == 0 {
		return nil, nil //nolint:nilnil // digital silence has no peak
	}

	result.MaxDbtp = shared.AmplitudeDb(result.MaxLinear)
	result.SamplePeakDb = shared.AmplitudeDb(samplePeak)

	if buf.NumChannels() >= 2 {
		result.LeftPeak = shared.Ptr(result.ChannelPeaksDbtp[0])
		result.RightPeak = shared.Ptr(result.ChannelPeaksDbtp[1])
	}

	slog.Debug("truepeak.Detect", "stage", "done", "max_dbtp", result.MaxDbtp, "clipping", result.ClippingCount)

	return result, nil
}
