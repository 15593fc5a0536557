// Package lfo provides the low-frequency oscillators that modulate a voice's
// pitch and amplitude.
package lfo

import "math"

type Shape int

const (
	Triangle Shape = iota
	Sine
	Square
	Saw
)

// FromWave maps an lfo wave opcode value to a shape: 0 triangle, 1 sine,
// 3 square, 6 saw. The pulse and ramp-down variants fall back to triangle.
func FromWave(n int) Shape {
	switch n {
	case 1:
		return Sine
	case 3:
		return Square
	case 6:
		return Saw
	}
	return Triangle
}

// LFO produces one modulation value per sample. The zero value is inactive.
// All shapes but Square start at zero and rise.
type LFO struct {
	depth float64
	rate  float64
	shape Shape
	phase float64
}

// New returns an oscillator swinging between -depth and +depth at rateHz.
func New(shape Shape, rateHz, depth float64) LFO {
	if shape < Triangle || shape > Saw {
		shape = Triangle
	}
	return LFO{depth: depth, rate: rateHz, shape: shape}
}

// Active reports whether the oscillator produces anything but zero.
func (l *LFO) Active() bool {
	return l.depth != 0 && l.rate > 0
}

// Next returns the value at the current phase and advances by one sample.
func (l *LFO) Next(sampleRate float64) float64 {
	if !l.Active() || sampleRate <= 0 {
		return 0
	}
	v := l.depth * wave(l.shape, l.phase)
	l.phase += l.rate / sampleRate
	l.phase -= math.Floor(l.phase)
	return v
}

func wave(s Shape, p float64) float64 {
	switch s {
	case Sine:
		return math.Sin(2 * math.Pi * p)
	case Square:
		if p < 0.5 {
			return 1
		}
		return -1
	case Saw:
		if p < 0.5 {
			return 2 * p
		}
		return 2*p - 2
	default:
		switch {
		case p < 0.25:
			return 4 * p
		case p < 0.75:
			return 2 - 4*p
		default:
			return 4*p - 4
		}
	}
}
