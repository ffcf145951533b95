package dcoffset

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/cambium/internal/audit/shared"
	"github.com/farcloser/cambium/internal/types"
)

// Detect measures the mean value of every channel.
// It returns nil for an empty buffer.
func Detect(buf *types.SampleBuffer) (*types.DCOffsetResult, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	if buf.Len() == 0 {
		return nil, nil //nolint:nilnil // absent result is not an error
	}

	result := &types.DCOffsetResult{
		Channels: make([]float64, buf.NumChannels()),
	}

	for ch, samples := range buf.Channels {
		result.Channels[ch] = stat.Mean(samples, nil)
		result.MaxAbs = math.Max(result.MaxAbs, math.Abs(result.Channels[ch]))
	}

	result.MaxDb = shared.AmplitudeDb(result.MaxAbs)

	slog.Debug("dcoffset.Detect", "stage", "done", "max_db", result.MaxDb)

	return result, nil
}
