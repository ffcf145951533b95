package decode

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/go-audio/wav"

	"github.com/farcloser/cambium/internal/types"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// FromWAV decodes an integer PCM WAV file.
func FromWAV(r io.ReadSeeker) (*types.SampleBuffer, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: not a WAV file", ErrUnsupportedFormat)
	}

	if decoder.WavAudioFormat != wavFormatPCM && decoder.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: WAV audio format %d", ErrUnsupportedFormat, decoder.WavAudioFormat)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	numChannels := pcm.Format.NumChannels
	bitDepth := pcm.SourceBitDepth

	if numChannels <= 0 || pcm.Format.SampleRate <= 0 || bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %d channels, %d Hz, %d bit",
			ErrUnsupportedFormat, numChannels, pcm.Format.SampleRate, bitDepth)
	}

	scale := float64(int64(1) << (bitDepth - 1))
	frames := len(pcm.Data) / numChannels

	buf := &types.SampleBuffer{SampleRate: pcm.Format.SampleRate, Channels: make([][]float64, numChannels)}
	for ch := range numChannels {
		buf.Channels[ch] = make([]float64, frames)
	}

	for i := range frames * numChannels {
		value := pcm.Data[i]
		// 8-bit WAV is unsigned.
		if bitDepth == 8 {
			value -= 128
		}

		buf.Channels[i%numChannels][i/numChannels] = float64(value) / scale
	}

	slog.Debug("decode.FromWAV", "stage", "done", "frames", frames, "channels", numChannels, "bit depth", bitDepth)

	return buf, nil
}
