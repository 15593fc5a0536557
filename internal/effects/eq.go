package effects

import (
	"math"
	"sync/atomic"
)

// Band indexes the EQ bands from lowest to highest.
type Band int

const (
	BandLow Band = iota
	BandLowMid
	BandMid
	BandHighMid
	BandHigh
	bandCount
)

// MaxBandDB bounds each band's boost or cut.
const MaxBandDB = 12

var bandNames = [bandCount]string{"low", "lowmid", "mid", "highmid", "high"}

func (b Band) String() string {
	if b < 0 || b >= bandCount {
		return "invalid"
	}
	return bandNames[b]
}

// ParseBand maps a band name to its index.
func ParseBand(name string) (Band, bool) {
	for i, n := range bandNames {
		if n == name {
			return Band(i), true
		}
	}
	return 0, false
}

var crossovers = [bandCount - 1]float64{200, 800, 2500, 8000}

// EQ splits the signal into five bands with cascaded one-pole crossovers and
// recombines them with per-band gains. Gains are bit-cast float32 so the
// audio goroutine reads them without locking.
type EQ struct {
	gains  [bandCount]atomic.Uint32
	alphas [bandCount - 1]float32
	lpL    [bandCount - 1]float32
	lpR    [bandCount - 1]float32
}

// NewEQ returns a flat EQ.
func NewEQ(sampleRate int) *EQ {
	eq := &EQ{}
	dt := 1.0 / float64(sampleRate)
	for i, freq := range crossovers {
		rc := 1.0 / (2.0 * math.Pi * freq)
		eq.alphas[i] = float32(dt / (rc + dt))
	}
	for i := range eq.gains {
		eq.gains[i].Store(math.Float32bits(1))
	}
	return eq
}

// SetGainDB sets a band's gain in dB, clamped to ±MaxBandDB.
func (eq *EQ) SetGainDB(b Band, db float64) {
	if b < 0 || b >= bandCount {
		return
	}
	db = math.Max(-MaxBandDB, math.Min(MaxBandDB, db))
	eq.gains[b].Store(math.Float32bits(dbToGain(db)))
}

// GainDB returns a band's gain in dB.
func (eq *EQ) GainDB(b Band) float64 {
	if b < 0 || b >= bandCount {
		return 0
	}
	g := math.Float32frombits(eq.gains[b].Load())
	return 20 * math.Log10(float64(g))
}

// Flat reports whether every band is at unity.
func (eq *EQ) Flat() bool {
	for i := range eq.gains {
		if math.Float32frombits(eq.gains[i].Load()) != 1 {
			return false
		}
	}
	return true
}

func (eq *EQ) Process(l, r float32) (float32, float32) {
	var outL, outR float32
	remL, remR := l, r
	for i := range eq.alphas {
		eq.lpL[i] += eq.alphas[i] * (remL - eq.lpL[i])
		eq.lpR[i] += eq.alphas[i] * (remR - eq.lpR[i])
		g := math.Float32frombits(eq.gains[i].Load())
		outL += eq.lpL[i] * g
		outR += eq.lpR[i] * g
		remL -= eq.lpL[i]
		remR -= eq.lpR[i]
	}
	g := math.Float32frombits(eq.gains[BandHigh].Load())
	return outL + remL*g, outR + remR*g
}

func (eq *EQ) Reset() {
	eq.lpL = [bandCount - 1]float32{}
	eq.lpR = [bandCount - 1]float32{}
}
