package shared

import (
	"math"

	"github.com/farcloser/cambium/internal/types"
)

// Finite returns a pointer to v, or nil when v is NaN or infinite.
func Finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return &v
}

// Ptr returns a pointer to v.
func Ptr(v float64) *float64 {
	return &v
}

// AmplitudeDb converts a linear amplitude to dB, floored at FloorDb.
func AmplitudeDb(linear float64) float64 {
	if linear <= 0 || math.IsNaN(linear) {
		return FloorDb
	}

	return max(20*math.Log10(linear), FloorDb)
}

// PowerDb converts a power ratio to dB, floored at FloorDb.
func PowerDb(power float64) float64 {
	if power <= 0 || math.IsNaN(power) {
		return FloorDb
	}

	return max(10*math.Log10(power), FloorDb)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Mono mixes all channels of the buffer down to one, averaging.
func Mono(buf *types.SampleBuffer) []float64 {
	numChannels := buf.NumChannels()
	if numChannels == 1 {
		return buf.Channels[0]
	}

	mono := make([]float64, buf.Len())
	scale := 1 / float64(numChannels)

	for _, channel := range buf.Channels {
		for i, sample := range channel {
			mono[i] += sample * scale
		}
	}

	return mono
}

// RMS returns the root mean square of samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		sum += s * s
	}

	return math.Sqrt(sum / float64(len(samples)))
}
