package lfo

import (
	"math"
	"testing"
)

func TestShapes(t *testing.T) {
	const sr = 128.0 // 1 Hz: 128 samples per cycle
	for _, tc := range []struct {
		shape Shape
		at    map[int]float64
	}{
		{Triangle, map[int]float64{0: 0, 32: 1, 64: 0, 96: -1, 128: 0}},
		{Sine, map[int]float64{0: 0, 32: 1, 96: -1}},
		{Square, map[int]float64{0: 1, 63: 1, 64: -1, 127: -1}},
		{Saw, map[int]float64{0: 0, 32: 0.5, 96: -0.5}},
	} {
		l := New(tc.shape, 1, 1)
		for i := 0; i <= 128; i++ {
			v := l.Next(sr)
			if want, ok := tc.at[i]; ok && math.Abs(v-want) > 1e-9 {
				t.Fatalf("shape %d sample %d = %f, want %f", tc.shape, i, v, want)
			}
		}
	}
}

func TestDepthScalesAndBounds(t *testing.T) {
	l := New(Triangle, 7, 30)
	for i := 0; i < 10000; i++ {
		if v := l.Next(44100); v < -30 || v > 30 {
			t.Fatalf("sample %d = %f out of range", i, v)
		}
	}
}

func TestInactive(t *testing.T) {
	var zero LFO
	if zero.Active() || zero.Next(44100) != 0 {
		t.Fatalf("zero LFO should be inactive")
	}
	l := New(Sine, 0, 5)
	if l.Active() || l.Next(44100) != 0 {
		t.Fatalf("zero-rate LFO should be inactive")
	}
	l = New(Shape(42), 2, 1)
	l.Next(8)
	if v := l.Next(8); math.Abs(v-1) > 1e-9 {
		t.Fatalf("unknown shape should fall back to triangle, got %f", v)
	}
}

func TestFromWave(t *testing.T) {
	for _, tc := range []struct {
		wave int
		want Shape
	}{
		{0, Triangle},
		{1, Sine},
		{3, Square},
		{6, Saw},
		{2, Triangle},
		{-1, Triangle},
	} {
		if got := FromWave(tc.wave); got != tc.want {
			t.Fatalf("FromWave(%d) = %d, want %d", tc.wave, got, tc.want)
		}
	}
}
