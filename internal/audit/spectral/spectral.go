package spectral

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/farcloser/cambium/internal/audit/shared"
	"github.com/farcloser/cambium/internal/keys"
	"github.com/farcloser/cambium/internal/types"
)

type Options struct {
	FFTSize   int // default 4096
	HopSize   int // default 1024
	MaxFrames int // frames analyzed at most, evenly spread (default 2048)
}

func DefaultOptions() Options {
	return Options{
		FFTSize:   4096,
		HopSize:   1024,
		MaxFrames: 2048,
	}
}

const (
	minFrequency   = 20.0
	maxFrequency   = 20000.0
	rolloffPercent = 0.85
	powerFloor     = 1e-10
)

// Band is a named frequency range in Hz, lower bound inclusive.
type Band struct {
	Name string
	Low  float64
	High float64
}

// Bands are the analysis bands, keyed by canonical band names.
//
//nolint:gochecknoglobals // read-only table
var Bands = []Band{
	{keys.Sub, 20, 60},
	{keys.Bass, 60, 150},
	{keys.LowMid, 150, 500},
	{keys.Mid, 500, 2000},
	{keys.HighMid, 2000, 4000},
	{keys.Presence, 4000, 10000},
	{keys.Air, 10000, 20000},
}

type frameStats struct {
	centroid, rolloff, bandwidth, flatness float64
	bandPower                              []float64
	bandBins                               []int
	totalPower                             float64
}

// Analyze computes frame-averaged spectral descriptors and band energies on the mono mix.
// A band level is the mean power of its bins relative to the total power of the frame, in dB.
// It returns nil when the input is shorter than one FFT frame or carries no energy.
func Analyze(buf *types.SampleBuffer, opts Options) (*types.SpectralResult, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	opts = applyDefaults(opts)

	if buf.Len() < opts.FFTSize {
		return nil, nil //nolint:nilnil // absent result is not an error
	}

	slog.Debug("spectral.Analyze", "stage", "start", "frames", buf.Len(), "fft", opts.FFTSize)

	mono := shared.Mono(buf)
	positions := framePositions(len(mono), opts)

	fftSize := opts.FFTSize
	binHz := float64(buf.SampleRate) / float64(fftSize)
	nyquist := float64(buf.SampleRate) / 2

	bands := bandsBelow(nyquist)

	window := makeHannWindow(fftSize)
	fft := fourier.NewFFT(fftSize)
	fftIn := make([]float64, fftSize)
	coeffs := make([]complex128, fftSize/2+1)
	magnitude := make([]float64, fftSize/2+1)
	power := make([]float64, fftSize/2+1)

	var (
		sumCentroid, sumRolloff, sumBandwidth, sumFlatness float64
		active                                             int
	)

	bandSumDb := make([]float64, len(bands))
	bandPeakDb := make([]float64, len(bands))
	bandPowerSum := make([]float64, len(bands))

	var totalPowerSum float64

	for i := range bandPeakDb {
		bandPeakDb[i] = shared.FloorDb
	}

	for _, pos := range positions {
		for i := range fftSize {
			fftIn[i] = mono[pos+i] * window[i]
		}

		coeffs = fft.Coefficients(coeffs, fftIn)

		for i, c := range coeffs {
			power[i] = real(c)*real(c) + imag(c)*imag(c)
			magnitude[i] = math.Sqrt(power[i])
		}

		stats, ok := analyzeFrame(magnitude, power, binHz, bands)
		if !ok {
			continue
		}

		active++
		sumCentroid += stats.centroid
		sumRolloff += stats.rolloff
		sumBandwidth += stats.bandwidth
		sumFlatness += stats.flatness
		totalPowerSum += stats.totalPower

		for b := range bands {
			level := shared.FloorDb
			if stats.bandBins[b] > 0 {
				level = shared.PowerDb(stats.bandPower[b] / float64(stats.bandBins[b]) / stats.totalPower)
			}

			bandSumDb[b] += level
			bandPeakDb[b] = math.Max(bandPeakDb[b], level)
			bandPowerSum[b] += stats.bandPower[b]
		}
	}

	if active == 0 {
		return nil, nil //nolint:nilnil // silence has no spectrum
	}

	count := float64(active)

	result := &types.SpectralResult{
		CentroidHz:  sumCentroid / count,
		RolloffHz:   sumRolloff / count,
		BandwidthHz: sumBandwidth / count,
		Flatness:    sumFlatness / count,
		Bands:       make(map[string]types.BandEnergy, len(bands)),
		Frames:      active,
		FFTSize:     fftSize,
	}

	for b, band := range bands {
		result.Bands[band.Name] = types.BandEnergy{
			RmsDb:     bandSumDb[b] / count,
			PeakDb:    bandPeakDb[b],
			EnergyPct: 100 * bandPowerSum[b] / totalPowerSum,
		}
	}

	slog.Debug("spectral.Analyze", "stage", "done", "frames", active, "centroid", result.CentroidHz)

	return result, nil
}

func applyDefaults(opts Options) Options {
	def := DefaultOptions()

	if opts.FFTSize <= 0 {
		opts.FFTSize = def.FFTSize
	}

	if opts.HopSize <= 0 {
		opts.HopSize = def.HopSize
	}

	if opts.MaxFrames <= 0 {
		opts.MaxFrames = def.MaxFrames
	}

	return opts
}

// framePositions returns frame start offsets: every hop, or MaxFrames evenly spread when there are more.
func framePositions(total int, opts Options) []int {
	span := total - opts.FFTSize
	count := span/opts.HopSize + 1

	if count <= opts.MaxFrames {
		positions := make([]int, count)
		for i := range positions {
			positions[i] = i * opts.HopSize
		}

		return positions
	}

	positions := make([]int, opts.MaxFrames)
	if opts.MaxFrames == 1 {
		return positions
	}

	for i := range positions {
		positions[i] = i * span / (opts.MaxFrames - 1)
	}

	return positions
}

// bandsBelow drops bands starting at or above nyquist and trims the last one to it.
func bandsBelow(nyquist float64) []Band {
	out := make([]Band, 0, len(Bands))

	for _, band := range Bands {
		if band.Low >= nyquist {
			continue
		}

		band.High = math.Min(band.High, nyquist)
		out = append(out, band)
	}

	return out
}

// analyzeFrame computes the descriptors of one frame over the audible bins (DC skipped).
// ok is false for a frame without energy.
func analyzeFrame(magnitude, power []float64, binHz float64, bands []Band) (frameStats, bool) {
	stats := frameStats{bandPower: make([]float64, len(bands)), bandBins: make([]int, len(bands))}

	var weighted, totalMag float64

	first := max(1, int(math.Ceil(minFrequency/binHz)))
	last := min(len(magnitude)-1, int(maxFrequency/binHz))

	for i := first; i <= last; i++ {
		freq := float64(i) * binHz
		weighted += freq * magnitude[i]
		totalMag += magnitude[i]
		stats.totalPower += power[i]

		for b, band := range bands {
			if freq >= band.Low && freq < band.High {
				stats.bandPower[b] += power[i]
				stats.bandBins[b]++

				break
			}
		}
	}

	if totalMag < shared.MinRMS || stats.totalPower < powerFloor {
		return stats, false
	}

	stats.centroid = weighted / totalMag

	var spread float64

	for i := first; i <= last; i++ {
		d := float64(i)*binHz - stats.centroid
		spread += d * d * magnitude[i]
	}

	stats.bandwidth = math.Sqrt(spread / totalMag)

	threshold := rolloffPercent * stats.totalPower

	var cumulative float64

	for i := first; i <= last; i++ {
		cumulative += power[i]
		if cumulative >= threshold {
			stats.rolloff = float64(i) * binHz

			break
		}
	}

	stats.flatness = flatness(power[first : last+1])

	return stats, true
}

// flatness is the geometric over arithmetic mean of power, floored at powerFloor.
// 1.0 for white noise, near 0 for a pure tone.
func flatness(power []float64) float64 {
	if len(power) == 0 {
		return 0
	}

	var logSum, sum float64

	for _, p := range power {
		p = math.Max(p, powerFloor)
		logSum += math.Log(p)
		sum += p
	}

	n := float64(len(power))

	return math.Exp(logSum/n) / (sum / n)
}

func makeHannWindow(size int) []float64 {
	window := make([]float64, size)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}

	return window
}
