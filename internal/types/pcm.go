package types

type BitDepth uint

const (
	Depth16 BitDepth = 16
	Depth24 BitDepth = 24
	Depth32 BitDepth = 32
)

// PCMFormat describes interleaved little-endian signed PCM as produced by the decoder collaborators.
type PCMFormat struct {
	SampleRate int
	BitDepth   BitDepth
	Channels   uint
}
