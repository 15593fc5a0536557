package effects

import (
	"math"
	"sync/atomic"
)

// Bus is the master output stage: EQ, then reverb, then gain and a ±1
// ceiling. The EQ and reverb are skipped while flat or dry.
type Bus struct {
	EQ     *EQ
	Reverb *Reverb
	gain   atomic.Uint32
	reset  atomic.Bool
}

// NewBus returns a bus at unity gain with a flat EQ and the given room.
func NewBus(sampleRate int, reverb ReverbParams) *Bus {
	b := &Bus{
		EQ:     NewEQ(sampleRate),
		Reverb: NewReverb(sampleRate, reverb),
	}
	b.SetGain(1)
	return b
}

// SetGain sets the linear output gain, clamped to 0..2.
func (b *Bus) SetGain(g float32) {
	b.gain.Store(math.Float32bits(clamp(g, 0, 2)))
}

func (b *Bus) Gain() float32 {
	return math.Float32frombits(b.gain.Load())
}

func (b *Bus) Process(l, r float32) (float32, float32) {
	b.applyReset()
	if !b.EQ.Flat() {
		l, r = b.EQ.Process(l, r)
	}
	if b.Reverb.Mix() > 0 {
		l, r = b.Reverb.Process(l, r)
	}
	g := b.Gain()
	return clamp(l*g, -1, 1), clamp(r*g, -1, 1)
}

// ProcessInterleaved runs the bus over an interleaved stereo block in place.
func (b *Bus) ProcessInterleaved(buf []float32) {
	b.applyReset()
	eq := !b.EQ.Flat()
	wet := b.Reverb.Mix() > 0
	g := b.Gain()
	for i := 0; i+1 < len(buf); i += 2 {
		l, r := buf[i], buf[i+1]
		if eq {
			l, r = b.EQ.Process(l, r)
		}
		if wet {
			l, r = b.Reverb.Process(l, r)
		}
		buf[i], buf[i+1] = clamp(l*g, -1, 1), clamp(r*g, -1, 1)
	}
}

// Reset clears the EQ and reverb state before the next processed sample.
// It is safe to call while another goroutine is processing.
func (b *Bus) Reset() {
	b.reset.Store(true)
}

func (b *Bus) applyReset() {
	if b.reset.Swap(false) {
		b.EQ.Reset()
		b.Reverb.Reset()
	}
}
