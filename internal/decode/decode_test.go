package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/farcloser/cambium/internal/types"
)

func TestFromPCM(t *testing.T) {
	tests := []struct {
		name  string
		depth types.BitDepth
		raw   []int32
		want  []float64
	}{
		{"16 bit", types.Depth16, []int32{16384, -32768, 0, 32767}, []float64{0.5, -1, 0, 32767.0 / 32768}},
		{"24 bit", types.Depth24, []int32{-4194304, 4194304}, []float64{-0.5, 0.5}},
		{"32 bit", types.Depth32, []int32{math.MinInt32, 1 << 30}, []float64{-1, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data bytes.Buffer

			for _, v := range tt.raw {
				var word [4]byte

				binary.LittleEndian.PutUint32(word[:], uint32(v)) //nolint:gosec // test data

				data.Write(word[:tt.depth/8])
			}

			// One stereo frame per pair, plus a dangling byte that must be ignored.
			data.WriteByte(0x7f)

			buf, err := FromPCM(&data, types.PCMFormat{SampleRate: 48000, BitDepth: tt.depth, Channels: 2})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if buf.NumChannels() != 2 || buf.Len() != len(tt.want)/2 {
				t.Fatalf("got %d channels of %d frames", buf.NumChannels(), buf.Len())
			}

			for i, want := range tt.want {
				if got := buf.Channels[i%2][i/2]; math.Abs(got-want) > 1e-9 {
					t.Errorf("sample %d = %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestFromPCMRejectsFormat(t *testing.T) {
	_, err := FromPCM(bytes.NewReader(nil), types.PCMFormat{SampleRate: 48000, BitDepth: 12, Channels: 2})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
}

func TestFromWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")

	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	pcm := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 44100},
		SourceBitDepth: 16,
		Data:           make([]int, 2*4410),
	}

	for i := range 4410 {
		value := int(16000 * math.Sin(2*math.Pi*441*float64(i)/44100))
		pcm.Data[2*i] = value
		pcm.Data[2*i+1] = -value
	}

	encoder := wav.NewEncoder(file, 44100, 16, 2, 1)
	if err := encoder.Write(pcm); err != nil {
		t.Fatal(err)
	}

	if err := encoder.Close(); err != nil {
		t.Fatal(err)
	}

	if err := file.Close(); err != nil {
		t.Fatal(err)
	}

	buf, err := wavFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if buf.SampleRate != 44100 || buf.NumChannels() != 2 || buf.Len() != 4410 {
		t.Fatalf("got %d Hz, %d channels, %d frames", buf.SampleRate, buf.NumChannels(), buf.Len())
	}

	for i := range buf.Len() {
		if buf.Channels[0][i] != -buf.Channels[1][i] {
			t.Fatalf("frame %d: channels are not inverted copies", i)
		}
	}

	if want := float64(pcm.Data[20]) / 32768; buf.Channels[0][10] != want {
		t.Errorf("frame 10 = %v, want %v", buf.Channels[0][10], want)
	}
}

func TestFromWAVRejectsGarbage(t *testing.T) {
	if _, err := FromWAV(bytes.NewReader([]byte("definitely not RIFF"))); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
}
