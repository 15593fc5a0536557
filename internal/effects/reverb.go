package effects

import (
	"math"
	"sync/atomic"
)

// ReverbParams shapes the room.
type ReverbParams struct {
	RoomSize float32 // 0..1, scales the comb delay lengths
	Decay    float32 // 0..1, comb feedback
	Damping  float32 // 0..1, high-frequency loss inside the combs
	Mix      float32 // 0..1, wet share of the output
}

// DefaultReverbParams returns a small, mostly dry room.
func DefaultReverbParams() ReverbParams {
	return ReverbParams{RoomSize: 0.5, Decay: 0.7, Damping: 0.3, Mix: 0.15}
}

// Reverb is a Schroeder reverb: four damped combs in parallel feeding two
// allpasses in series. Each channel gets its own comb set with a small
// length spread for stereo width.
type Reverb struct {
	combs   [2][4]combFilter
	allpass [2][2]allpassFilter
	mix     atomic.Uint32
}

type combFilter struct {
	buf     []float32
	pos     int
	fb      float32
	damp    float32
	lowpass float32
}

type allpassFilter struct {
	buf []float32
	pos int
	fb  float32
}

var (
	combRatios    = [4]int{1000, 1117, 1271, 1437}
	allpassRatios = [2]int{347, 213}
)

const stereoSpread = 23

func NewReverb(sampleRate int, p ReverbParams) *Reverb {
	base := int(float32(sampleRate) * clamp(p.RoomSize, 0, 1) * 0.05)
	if base < 10 {
		base = 10
	}
	fb := clamp(p.Decay, 0, 0.95)
	damp := clamp(p.Damping, 0, 1)
	r := &Reverb{}
	for ch := range r.combs {
		spread := ch * stereoSpread
		for i := range r.combs[ch] {
			r.combs[ch][i] = combFilter{
				buf:  make([]float32, base*combRatios[i]/1000+spread),
				fb:   fb,
				damp: damp,
			}
		}
		for i := range r.allpass[ch] {
			r.allpass[ch][i] = allpassFilter{
				buf: make([]float32, max(base*allpassRatios[i]/1000+spread, 1)),
				fb:  0.5,
			}
		}
	}
	r.SetMix(p.Mix)
	return r
}

// SetMix sets the wet share, clamped to 0..1. Safe from any goroutine.
func (r *Reverb) SetMix(mix float32) {
	r.mix.Store(math.Float32bits(clamp(mix, 0, 1)))
}

func (r *Reverb) Mix() float32 {
	return math.Float32frombits(r.mix.Load())
}

func (r *Reverb) Process(l, rr float32) (float32, float32) {
	mix := r.Mix()
	in := (l + rr) * 0.5
	wetL := r.channel(0, in)
	wetR := r.channel(1, in)
	return l*(1-mix) + wetL*mix, rr*(1-mix) + wetR*mix
}

func (r *Reverb) channel(ch int, in float32) float32 {
	var out float32
	for i := range r.combs[ch] {
		out += r.combs[ch][i].process(in)
	}
	out *= 0.25
	for i := range r.allpass[ch] {
		out = r.allpass[ch][i].process(out)
	}
	return out
}

func (r *Reverb) Reset() {
	for ch := range r.combs {
		for i := range r.combs[ch] {
			c := &r.combs[ch][i]
			clear(c.buf)
			c.pos, c.lowpass = 0, 0
		}
		for i := range r.allpass[ch] {
			a := &r.allpass[ch][i]
			clear(a.buf)
			a.pos = 0
		}
	}
}

func (c *combFilter) process(in float32) float32 {
	out := c.buf[c.pos]
	c.lowpass = out*(1-c.damp) + c.lowpass*c.damp
	c.buf[c.pos] = in + c.lowpass*c.fb
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

func (a *allpassFilter) process(in float32) float32 {
	bufOut := a.buf[a.pos]
	out := -in + bufOut
	a.buf[a.pos] = in + bufOut*a.fb
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}
