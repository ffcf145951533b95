package loudness

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/cambium/internal/audit/shared"
	"github.com/farcloser/cambium/internal/types"
)

const (
	absoluteGate     = -70.0 // LUFS
	relativeGate     = -10.0 // LU below the ungated mean, integrated
	lraRelativeGate  = -20.0 // LU below the ungated mean, loudness range
	lraLowQuantile   = 0.10
	lraHighQuantile  = 0.95
	loudnessOffset   = -0.691
	momentaryMillis  = 400
	shortTermSeconds = 3
	hopMillis        = 100
)

// Biquad filter coefficients.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// Biquad filter state.
type biquadState struct {
	z1, z2 float64
}

func (s *biquadState) process(b *biquad, in float64) float64 {
	out := b.b0*in + s.z1
	s.z1 = b.b1*in - b.a1*out + s.z2
	s.z2 = b.b2*in - b.a2*out

	return out
}

// K-weighting filter coefficients for an arbitrary sample rate.
// Pre-filter (high shelf) + RLB weighting (high pass).
func getKWeightingFilters(sampleRate int) (pre, rlb biquad) {
	// Coefficients from ITU-R BS.1770-4, derived from the analog prototypes.
	fs := float64(sampleRate)

	// Pre-filter (high shelf), models the acoustic effect of the head.
	f0 := 1681.974450955533
	G := 3.999843853973347
	Q := 0.7071752369554196

	K := math.Tan(math.Pi * f0 / fs)
	Vh := math.Pow(10, G/20)
	Vb := math.Pow(Vh, 0.4996667741545416)

	a0 := 1 + K/Q + K*K
	pre.b0 = (Vh + Vb*K/Q + K*K) / a0
	pre.b1 = 2 * (K*K - Vh) / a0
	pre.b2 = (Vh - Vb*K/Q + K*K) / a0
	pre.a1 = 2 * (K*K - 1) / a0
	pre.a2 = (1 - K/Q + K*K) / a0

	// RLB weighting (high pass).
	f0 = 38.13547087602444
	Q = 0.5003270373238773

	K = math.Tan(math.Pi * f0 / fs)

	a0 = 1 + K/Q + K*K
	rlb.b0 = 1 / a0
	rlb.b1 = -2 / a0
	rlb.b2 = 1 / a0
	rlb.a1 = 2 * (K*K - 1) / a0
	rlb.a2 = (1 - K/Q + K*K) / a0

	return pre, rlb
}

// Channel weights. L, R, C = 1.0; Ls, Rs = 1.41 (~+1.5dB). LFE is not treated specially.
func getChannelWeight(ch, numChannels int) float64 {
	if numChannels <= 2 {
		return 1.0
	}

	if ch >= 3 && ch <= 4 && numChannels > 4 {
		return 1.41
	}

	return 1.0
}

// window is a running mean-square over a fixed number of frames.
type window struct {
	buf    []float64
	pos    int
	sum    float64
	filled int
}

func newWindow(size int) *window {
	return &window{buf: make([]float64, size)}
}

func (w *window) push(power float64) {
	old := w.buf[w.pos]
	w.buf[w.pos] = power
	w.sum = w.sum - old + power

	w.pos = (w.pos + 1) % len(w.buf)
	if w.filled < len(w.buf) {
		w.filled++
	}
}

func (w *window) full() bool {
	return w.filled == len(w.buf)
}

func (w *window) meanSquare() float64 {
	// The running subtraction can leave a tiny negative residue on silence.
	return math.Max(w.sum, 0) / float64(len(w.buf))
}

// Analyze computes integrated, maximum short-term, maximum momentary loudness and loudness range.
// Fields that the input is too short or too quiet to support are left nil.
func Analyze(buf *types.SampleBuffer) (*types.LoudnessResult, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("loudness.Analyze", "stage", "start", "frames", buf.Len())

	sampleRate := buf.SampleRate
	numChannels := buf.NumChannels()

	pre, rlb := getKWeightingFilters(sampleRate)
	preState := make([]biquadState, numChannels)
	rlbState := make([]biquadState, numChannels)

	momentarySize := max(sampleRate*momentaryMillis/1000, 1)
	shortTermSize := max(sampleRate*shortTermSeconds, 1)
	hopSize := max(sampleRate*hopMillis/1000, 1)

	momentary := newWindow(momentarySize)
	shortTerm := newWindow(shortTermSize)

	var (
		momentaryPowers []float64 // gating blocks for integrated loudness
		shortTermPowers []float64 // gating blocks for loudness range
		momentaryMax    = math.Inf(-1)
		shortTermMax    = math.Inf(-1)
	)

	frames := buf.Len()

	for i := range frames {
		var framePower float64

		for ch := range numChannels {
			filtered := preState[ch].process(&pre, buf.Channels[ch][i])
			filtered = rlbState[ch].process(&rlb, filtered)

			framePower += getChannelWeight(ch, numChannels) * filtered * filtered
		}

		momentary.push(framePower)
		shortTerm.push(framePower)

		if (i+1)%hopSize != 0 {
			continue
		}

		if momentary.full() {
			power := momentary.meanSquare()
			momentaryPowers = append(momentaryPowers, power)
			momentaryMax = math.Max(momentaryMax, toLUFS(power))
		}

		if shortTerm.full() {
			power := shortTerm.meanSquare()
			shortTermPowers = append(shortTermPowers, power)
			shortTermMax = math.Max(shortTermMax, toLUFS(power))
		}
	}

	result := &types.LoudnessResult{
		Integrated: calculateIntegratedLoudness(momentaryPowers),
		LRA:        calculateLoudnessRange(shortTermPowers),
		Frames:     uint64(frames), //nolint:gosec // length is never negative
	}

	if len(momentaryPowers) > 0 && momentaryMax > absoluteGate {
		result.Momentary = shared.Finite(momentaryMax)
	}

	if len(shortTermPowers) > 0 && shortTermMax > absoluteGate {
		result.ShortTerm = shared.Finite(shortTermMax)
	}

	slog.Debug("loudness.Analyze", "stage", "done", "blocks", len(momentaryPowers))

	return result, nil
}

func toLUFS(power float64) float64 {
	if power <= 0 {
		return math.Inf(-1)
	}

	return loudnessOffset + 10*math.Log10(power)
}

func calculateIntegratedLoudness(powers []float64) *float64 {
	// First pass: absolute gate.
	var (
		sum   float64
		count int
	)

	for _, p := range powers {
		if toLUFS(p) > absoluteGate {
			sum += p
			count++
		}
	}

	if count == 0 {
		return nil
	}

	threshold := toLUFS(sum/float64(count)) + relativeGate

	// Second pass: relative gate.
	sum = 0
	count = 0

	for _, p := range powers {
		if toLUFS(p) > threshold {
			sum += p
			count++
		}
	}

	if count == 0 {
		return nil
	}

	return shared.Finite(toLUFS(sum / float64(count)))
}

func calculateLoudnessRange(powers []float64) *float64 {
	var (
		gatedPowers []float64
		sum         float64
	)

	for _, p := range powers {
		if toLUFS(p) > absoluteGate {
			gatedPowers = append(gatedPowers, p)
			sum += p
		}
	}

	if len(gatedPowers) < 2 {
		return nil
	}

	threshold := toLUFS(sum/float64(len(gatedPowers))) + lraRelativeGate

	var gated []float64

	for _, p := range gatedPowers {
		if l := toLUFS(p); l > threshold {
			gated = append(gated, l)
		}
	}

	if len(gated) < 2 {
		return nil
	}

	sort.Float64s(gated)

	low := stat.Quantile(lraLowQuantile, stat.Empirical, gated, nil)
	high := stat.Quantile(lraHighQuantile, stat.Empirical, gated, nil)

	return shared.Finite(high - low)
}
