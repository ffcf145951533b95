package decode

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/cambium/internal/integration/ffmpeg"
	"github.com/farcloser/cambium/internal/integration/ffprobe"
	"github.com/farcloser/cambium/internal/types"
)

// File decodes audio stream streamIndex of path. WAV files are read natively; anything else, or a WAV the
// native reader rejects, goes through ffprobe and ffmpeg.
func File(ctx context.Context, path string, streamIndex int) (*types.SampleBuffer, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") && streamIndex == 0 {
		buf, err := wavFile(path)
		if err == nil {
			return buf, nil
		}

		slog.Debug("decode.File", "stage", "wav fallback", "file", path, "error", err)
	}

	probe, err := ffprobe.Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	format, err := Format(probe, streamIndex)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified audio files
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}
	defer file.Close()

	var pcm bytes.Buffer

	if err = ffmpeg.ExtractStream(ctx, file, &pcm, streamIndex, format.BitDepth); err != nil {
		return nil, err
	}

	return FromPCM(&pcm, format)
}

// Format returns the 32-bit PCM layout ffmpeg produces for an audio stream.
func Format(probe *ffprobe.Result, streamIndex int) (types.PCMFormat, error) {
	stream, err := probe.AudioStream(streamIndex)
	if err != nil {
		return types.PCMFormat{}, err
	}

	rate, err := stream.Rate()
	if err != nil {
		return types.PCMFormat{}, err
	}

	channels, err := stream.ChannelCount()
	if err != nil {
		return types.PCMFormat{}, err
	}

	return types.PCMFormat{SampleRate: rate, BitDepth: types.Depth32, Channels: channels}, nil
}

func wavFile(path string) (*types.SampleBuffer, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified audio files
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}
	defer file.Close()

	return FromWAV(file)
}
