// Package decode turns audio files and raw PCM into sample buffers for analysis.
package decode

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/cambium/internal/types"
)

var ErrUnsupportedFormat = errors.New("unsupported PCM format")

const readBufferSize = 1 << 16

// FromPCM de-interleaves little-endian signed PCM into a buffer scaled to [-1, 1).
// A trailing partial frame is dropped.
func FromPCM(r io.Reader, format types.PCMFormat) (*types.SampleBuffer, error) {
	bytesPerSample := int(format.BitDepth / 8)
	if format.SampleRate <= 0 || format.Channels == 0 ||
		(format.BitDepth != types.Depth16 && format.BitDepth != types.Depth24 && format.BitDepth != types.Depth32) {
		return nil, fmt.Errorf("%w: %+v", ErrUnsupportedFormat, format)
	}

	numChannels := int(format.Channels) //nolint:gosec // channel counts are small
	scale := float64(int64(1) << (format.BitDepth - 1))
	frame := make([]byte, bytesPerSample*numChannels)

	buf := &types.SampleBuffer{SampleRate: format.SampleRate, Channels: make([][]float64, numChannels)}
	reader := bufio.NewReaderSize(r, readBufferSize)

	for {
		_, err := io.ReadFull(reader, frame)
		if errors.Is(err, io.EOF) {
			break
		}

		if errors.Is(err, io.ErrUnexpectedEOF) {
			slog.Warn("decode.FromPCM: dropping partial frame")

			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}

		for ch := range numChannels {
			buf.Channels[ch] = append(buf.Channels[ch], float64(sample(frame[ch*bytesPerSample:], format.BitDepth))/scale)
		}
	}

	slog.Debug("decode.FromPCM", "stage", "done", "frames", buf.Len(), "channels", numChannels)

	return buf, nil
}

func sample(data []byte, bitDepth types.BitDepth) int32 {
	switch bitDepth {
	case types.Depth16:
		return int32(int16(binary.LittleEndian.Uint16(data)))
	case types.Depth24:
		value := int32(data[0]) | int32(data[1])<<8 | int32(data[2])<<16
		if value&0x800000 != 0 {
			value |= ^0xFFFFFF
		}

		return value
	default:
		return int32(binary.LittleEndian.Uint32(data)) //nolint:gosec // reinterpretation is intended
	}
}
