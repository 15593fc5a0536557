package effects

import (
	"math"
	"testing"
)

func TestFlatEQPassesSignal(t *testing.T) {
	eq := NewEQ(44100)
	if !eq.Flat() {
		t.Fatalf("new EQ should be flat")
	}
	for i := 0; i < 1000; i++ {
		in := float32(math.Sin(float64(i) * 0.05))
		l, r := eq.Process(in, -in)
		if math.Abs(float64(l-in)) > 1e-5 || math.Abs(float64(r+in)) > 1e-5 {
			t.Fatalf("frame %d: flat EQ changed signal %f -> %f", i, in, l)
		}
	}
}

func TestEQGainClampsAndCutsBand(t *testing.T) {
	eq := NewEQ(44100)
	eq.SetGainDB(BandLow, 40)
	if got := eq.GainDB(BandLow); math.Abs(got-MaxBandDB) > 1e-4 {
		t.Fatalf("gain = %f dB, want %d", got, MaxBandDB)
	}
	eq.SetGainDB(BandLow, -MaxBandDB)
	if eq.Flat() {
		t.Fatalf("EQ should not be flat after a cut")
	}

	// A DC input lives entirely in the low band.
	var l float32
	for i := 0; i < 44100; i++ {
		l, _ = eq.Process(1, 1)
	}
	want := math.Pow(10, -MaxBandDB/20.0)
	if math.Abs(float64(l)-want) > 0.01 {
		t.Fatalf("DC through cut low band = %f, want %f", l, want)
	}

	eq.SetGainDB(Band(9), 3)
	if eq.GainDB(Band(9)) != 0 {
		t.Fatalf("invalid band should report 0 dB")
	}
}

func TestParseBand(t *testing.T) {
	for _, tc := range []struct {
		name string
		want Band
		ok   bool
	}{
		{"low", BandLow, true},
		{"mid", BandMid, true},
		{"high", BandHigh, true},
		{"treble", 0, false},
	} {
		got, ok := ParseBand(tc.name)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseBand(%q) = %v, %v", tc.name, got, ok)
		}
		if ok && got.String() != tc.name {
			t.Fatalf("String() = %q, want %q", got.String(), tc.name)
		}
	}
}

func TestReverbProducesTail(t *testing.T) {
	r := NewReverb(44100, ReverbParams{RoomSize: 0.5, Decay: 0.7, Damping: 0.2, Mix: 0.5})
	r.Process(1, 1)
	var maxL, maxR float32
	for i := 0; i < 10000; i++ {
		l, rr := r.Process(0, 0)
		maxL = max(maxL, l)
		maxR = max(maxR, rr)
	}
	if maxL < 0.001 || maxR < 0.001 {
		t.Fatalf("expected reverb tail, got L=%f R=%f", maxL, maxR)
	}

	r.Reset()
	for i := 0; i < 5000; i++ {
		if l, rr := r.Process(0, 0); l != 0 || rr != 0 {
			t.Fatalf("reset reverb still ringing")
		}
	}
}

func TestReverbDryMixIsTransparent(t *testing.T) {
	p := DefaultReverbParams()
	p.Mix = 0
	r := NewReverb(44100, p)
	for i := 0; i < 100; i++ {
		if l, rr := r.Process(0.3, -0.3); l != 0.3 || rr != -0.3 {
			t.Fatalf("dry reverb changed signal: %f %f", l, rr)
		}
	}
	r.SetMix(3)
	if r.Mix() != 1 {
		t.Fatalf("mix not clamped: %f", r.Mix())
	}
}

func TestBusGainAndCeiling(t *testing.T) {
	p := DefaultReverbParams()
	p.Mix = 0
	b := NewBus(44100, p)
	b.SetGain(0.5)
	buf := []float32{0.8, -0.4, 4, -4}
	b.ProcessInterleaved(buf)
	want := []float32{0.4, -0.2, 1, -1}
	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("sample %d = %f, want %f", i, buf[i], want[i])
		}
	}
	b.SetGain(10)
	if b.Gain() != 2 {
		t.Fatalf("gain not clamped: %f", b.Gain())
	}
}

func TestBusResetClearsTail(t *testing.T) {
	b := NewBus(44100, ReverbParams{RoomSize: 0.5, Decay: 0.7, Damping: 0.2, Mix: 0.5})
	b.EQ.SetGainDB(BandLow, 6)
	b.ProcessInterleaved([]float32{1, 1})
	tail := make([]float32, 4000)
	b.ProcessInterleaved(tail)
	var peak float32
	for _, v := range tail {
		peak = max(peak, v, -v)
	}
	if peak < 0.001 {
		t.Fatalf("expected a tail before reset, peak %f", peak)
	}

	b.Reset()
	silence := make([]float32, 8000)
	b.ProcessInterleaved(silence)
	for i, v := range silence {
		if v != 0 {
			t.Fatalf("sample %d = %f after reset, want 0", i, v)
		}
	}
}
