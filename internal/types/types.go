//nolint:staticcheck // too dumb on Db vs. DB
package types

import (
	"errors"
	"fmt"
)

var ErrInvalidBuffer = errors.New("invalid sample buffer")

// SampleBuffer is a decoded, de-interleaved multi-channel signal with samples in [-1, 1].
// The core only reads it.
type SampleBuffer struct {
	SampleRate int
	Channels   [][]float64
}

// NumChannels returns the channel count.
func (b *SampleBuffer) NumChannels() int {
	return len(b.Channels)
}

// Len returns the number of samples per channel.
func (b *SampleBuffer) Len() int {
	if len(b.Channels) == 0 {
		return 0
	}

	return len(b.Channels[0])
}

// Duration returns the buffer length in seconds.
func (b *SampleBuffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}

	return float64(b.Len()) / float64(b.SampleRate)
}

// Validate checks the buffer shape.
func (b *SampleBuffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil", ErrInvalidBuffer)
	}

	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidBuffer, b.SampleRate)
	}

	if len(b.Channels) == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidBuffer)
	}

	for ch := range b.Channels {
		if len(b.Channels[ch]) != len(b.Channels[0]) {
			return fmt.Errorf("%w: channel %d has %d samples, expected %d",
				ErrInvalidBuffer, ch, len(b.Channels[ch]), len(b.Channels[0]))
		}
	}

	return nil
}

// Head returns a view of the first n samples of every channel.
func (b *SampleBuffer) Head(n int) *SampleBuffer {
	if n >= b.Len() {
		return b
	}

	head := &SampleBuffer{SampleRate: b.SampleRate, Channels: make([][]float64, len(b.Channels))}
	for ch := range b.Channels {
		head.Channels[ch] = b.Channels[ch][:n]
	}

	return head
}
