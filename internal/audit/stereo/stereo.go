package stereo

import (
	"log/slog"
	"math"

	"github.com/farcloser/cambium/internal/audit/shared"
	"github.com/farcloser/cambium/internal/types"
)

const (
	// MinSamples is the shortest input a correlation is computed for.
	MinSamples = 1024

	// PhaseIssueCorrelation flags content that largely cancels when folded to mono.
	PhaseIssueCorrelation = -0.3

	// monoCancellationDb is the largest mono-sum loss still considered mono compatible.
	monoCancellationDb = 3.0
)

// Analyze measures correlation, width and balance of the first two channels.
// It returns nil for mono, too short or silent input.
func Analyze(buf *types.SampleBuffer) (*types.StereoResult, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	if buf.NumChannels() < 2 || buf.Len() < MinSamples {
		return nil, nil //nolint:nilnil // absent result is not an error
	}

	slog.Debug("stereo.Analyze", "stage", "start", "frames", buf.Len())

	left, right := buf.Channels[0], buf.Channels[1]

	var sumL, sumR, sumLL, sumRR, sumLR float64

	var sumMidSq, sumSideSq, sumStereoSq float64

	for i := range left {
		l, r := left[i], right[i]

		sumL += l
		sumR += r
		sumLL += l * l
		sumRR += r * r
		sumLR += l * r

		mid := (l + r) / 2
		side := (l - r) / 2
		sumMidSq += mid * mid
		sumSideSq += side * side
		sumStereoSq += (l*l + r*r) / 2
	}

	n := float64(len(left))

	leftRMS := math.Sqrt(sumLL / n)
	rightRMS := math.Sqrt(sumRR / n)

	if leftRMS < shared.MinRMS && rightRMS < shared.MinRMS {
		return nil, nil //nolint:nilnil // silence has no stereo image
	}

	result := &types.StereoResult{
		Correlation:    correlation(n, sumL, sumR, sumLL, sumRR, sumLR),
		Width:          width(math.Sqrt(sumMidSq/n), math.Sqrt(sumSideSq/n)),
		Balance:        balance(leftRMS, rightRMS),
		BalanceDb:      shared.AmplitudeDb(leftRMS) - shared.AmplitudeDb(rightRMS),
		CancellationDb: shared.PowerDb(sumStereoSq/n) - shared.PowerDb(sumMidSq/n),
		Frames:         uint64(len(left)), //nolint:gosec // length is never negative
	}

	result.HasPhaseIssues = result.Correlation < PhaseIssueCorrelation
	result.IsMonoCompatible = result.Correlation >= 0 && result.CancellationDb < monoCancellationDb

	slog.Debug("stereo.Analyze", "stage", "done", "correlation", result.Correlation, "width", result.Width)

	return result, nil
}

// correlation is the Pearson coefficient of L and R, clamped to [-1, 1].
// A channel without variance (silent or DC only) correlates at 0 with anything except an identical copy.
func correlation(n, sumL, sumR, sumLL, sumRR, sumLR float64) float64 {
	covariance := sumLR/n - (sumL/n)*(sumR/n)
	varianceL := sumLL/n - (sumL/n)*(sumL/n)
	varianceR := sumRR/n - (sumR/n)*(sumR/n)

	denominator := math.Sqrt(varianceL * varianceR)
	if denominator < shared.MinRMS*shared.MinRMS {
		if varianceL < shared.MinRMS && varianceR < shared.MinRMS {
			return 1
		}

		return 0
	}

	return shared.Clamp(covariance/denominator, -1, 1)
}

// width is 2*Side/(Mid+Side) on RMS values: 0 for mono, 1 for side-only content.
func width(midRMS, sideRMS float64) float64 {
	if midRMS < shared.MinRMS {
		if sideRMS > shared.MinRMS {
			return 1
		}

		return 0
	}

	return shared.Clamp(2*sideRMS/(midRMS+sideRMS), 0, 1)
}

// balance is (R-L)/(R+L) on channel RMS: -1 hard left, 0 centered, 1 hard right.
func balance(leftRMS, rightRMS float64) float64 {
	total := leftRMS + rightRMS
	if total == 0 {
		return 0
	}

	return shared.Clamp((rightRMS-leftRMS)/total, -1, 1)
}
