package ffmpeg

import (
	"strconv"
	"time"

	"github.com/farcloser/cambium/internal/types"
)

const (
	name = "ffmpeg"
	// Full-length decodes of long sets on slow storage take a while.
	timeout = 5 * time.Minute
)

// bitDepthToSpec returns the raw sample format: 32 = s32le, 24 = s24le, 16 = s16le.
func bitDepthToSpec(bitDepth types.BitDepth) string {
	//nolint:gosec // small constants
	return "s" + strconv.Itoa(int(bitDepth)) + "le"
}

func codecFor(bitDepth types.BitDepth) string {
	return "pcm_" + bitDepthToSpec(bitDepth)
}
