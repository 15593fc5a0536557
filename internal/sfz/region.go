package sfz

import "math"

// KeyBounds returns the effective key range, collapsing to Key when set.
func (r *Region) KeyBounds() (lo, hi int) {
	if r.Key != NoKey {
		return r.Key, r.Key
	}
	return r.LoKey, r.HiKey
}

// Matches reports whether the region responds to note at velocity.
func (r *Region) Matches(note, velocity int) bool {
	if velocity < r.LoVel || velocity > r.HiVel {
		return false
	}
	lo, hi := r.KeyBounds()
	return note >= lo && note <= hi
}

// PitchRatio returns the equal-tempered resampling ratio for note.
func (r *Region) PitchRatio(note int) float64 {
	cents := float64((note-r.PitchKeycenter+r.Transpose)*100 + r.Tune)
	return math.Pow(2, cents/1200)
}
