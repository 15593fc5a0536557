// Package effects implements the master bus applied to the mixed voice output.
package effects

import "math"

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func dbToGain(db float64) float32 {
	return float32(math.Pow(10, db/20))
}
