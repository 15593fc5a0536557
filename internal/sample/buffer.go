package sample

import (
	"math"
	"time"

	"github.com/go-audio/audio"
)

// Buffer is a decoded, normalized sample buffer. Samples are interleaved by
// channel and lie in [-1, 1). A Buffer is never modified after decoding.
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Frames returns the number of complete frames in the buffer.
func (b *Buffer) Frames() int {
	if b == nil || b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration returns the playback length at the buffer's own sample rate.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}

// Frame returns the value of channel ch at frame i, or 0 when out of range.
func (b *Buffer) Frame(i, ch int) float32 {
	if b == nil || i < 0 || ch < 0 || ch >= b.Channels {
		return 0
	}
	idx := i*b.Channels + ch
	if idx >= len(b.Samples) {
		return 0
	}
	return b.Samples[idx]
}

// IntBuffer converts the buffer to a go-audio IntBuffer at the given bit
// depth, clipping to the representable range.
func (b *Buffer) IntBuffer(bitDepth int) *audio.IntBuffer {
	scale := fullScale(bitDepth)
	data := make([]int, len(b.Samples))
	for i, s := range b.Samples {
		v := math.Round(float64(s) * scale)
		if v > scale-1 {
			v = scale - 1
		}
		if v < -scale {
			v = -scale
		}
		data[i] = int(v)
	}
	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: b.Channels,
			SampleRate:  b.SampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
}

func fullScale(bitDepth int) float64 {
	switch bitDepth {
	case 24:
		return 8388608
	case 32:
		return 2147483648
	default:
		return 32768
	}
}
