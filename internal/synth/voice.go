package synth

import (
	"math"

	"github.com/cbegin/sfzpad-go/internal/lfo"
	"github.com/cbegin/sfzpad-go/internal/sample"
	"github.com/cbegin/sfzpad-go/internal/sfz"
)

type envPhase int

const (
	phaseIdle envPhase = iota
	phaseAttack
	phaseHold
	phaseDecay
	phaseSustain
	phaseRelease
)

func (p envPhase) String() string {
	switch p {
	case phaseAttack:
		return "attack"
	case phaseHold:
		return "hold"
	case phaseDecay:
		return "decay"
	case phaseSustain:
		return "sustain"
	case phaseRelease:
		return "release"
	default:
		return "idle"
	}
}

const (
	minPitchRatio  = 0.1
	maxPitchRatio  = 10.0
	maxHoldSec     = 10.0
	maxReleaseSec  = 3.0
	minReleaseLvl  = 0.01
	sustainFloor   = 0.5
	minVelocityAmp = 0.1
)

// voice is one pool slot. Slots are reconfigured in place on every NoteOn and
// never reallocated.
type voice struct {
	note   int
	buf    *sample.Buffer
	frames int

	pos        int
	frac       float64
	pitchRatio float64
	volume     float64
	panL       float64
	panR       float64
	rate       float64
	pitchLFO   lfo.LFO
	ampLFO     lfo.LFO

	loopMode  sfz.LoopMode
	loopStart int
	loopEnd   int
	endPos    int
	ended     bool

	phase             envPhase
	envPos            int
	level             float64
	attackSamples     int
	holdSamples       int
	decaySamples      int
	releaseSamples    int
	sustainLevel      float64
	releaseStartLevel float64

	startStamp   uint64
	releaseStamp uint64

	// gen changes whenever the slot is reassigned, envGen whenever the
	// control thread moves the envelope. Render write-back compares both.
	gen    uint64
	envGen uint64
}

func (v *voice) configure(r *sfz.Region, note, velocity int, buf *sample.Buffer, sampleRate float64) {
	frames := buf.Frames()
	endPos := frames - 1
	if r.End > 0 && r.End < endPos {
		endPos = r.End
	}
	loopStart := clampInt(r.LoopStart, 0, max(frames-1, 0))
	loopEnd := r.LoopEnd
	if loopEnd <= loopStart {
		loopEnd = frames - 1
		if r.End > 0 {
			loopEnd = r.End
		}
	}

	sustain := clamp(r.Sustain/100, 0, 1)
	if r.Sustain < 1 && (r.Decay > 0.1 || r.Hold < 0.1) {
		sustain = math.Max(sustain, sustainFloor)
	}

	vel := float64(velocity) / 127
	velScale := math.Max(minVelocityAmp, vel*vel)

	angle := (clamp(r.Pan, -100, 100) + 100) / 200 * (math.Pi / 2)

	gen := v.gen + 1
	*v = voice{
		note:           note,
		buf:            buf,
		frames:         frames,
		pos:            clampInt(r.Offset, 0, max(frames-1, 0)),
		pitchRatio:     clamp(r.PitchRatio(note), minPitchRatio, maxPitchRatio),
		volume:         dbToLinear(r.Volume) * velScale,
		panL:           math.Cos(angle),
		panR:           math.Sin(angle),
		rate:           sampleRate,
		pitchLFO:       lfo.New(lfo.FromWave(r.PitchLFOWave), r.PitchLFOFreq, r.PitchLFODepth),
		ampLFO:         lfo.New(lfo.FromWave(r.AmpLFOWave), r.AmpLFOFreq, r.AmpLFODepth),
		loopMode:       r.LoopMode,
		loopStart:      loopStart,
		loopEnd:        loopEnd,
		endPos:         endPos,
		phase:          phaseAttack,
		attackSamples:  max(1, int(sampleRate*math.Max(r.Attack, 0))),
		holdSamples:    int(sampleRate * clamp(r.Hold, 0, maxHoldSec)),
		decaySamples:   max(1, int(sampleRate*math.Max(r.Decay, 0))),
		releaseSamples: max(1, int(sampleRate*clamp(r.Release, 0, maxReleaseSec))),
		sustainLevel:   sustain,
		gen:            gen,
		envGen:         v.envGen,
	}
}

func (v *voice) release(stamp uint64) {
	v.releaseStartLevel = math.Max(v.level, minReleaseLvl)
	v.phase = phaseRelease
	v.envPos = 0
	v.releaseStamp = stamp
	v.envGen++
}

// cut silences the slot at once. The slot identity changes so an in-flight
// render does not resurrect it.
func (v *voice) cut() {
	v.phase = phaseIdle
	v.level = 0
	v.gen++
}

// clear drops references held by an idle slot.
func (v *voice) clear() {
	v.buf = nil
	v.frames = 0
	v.level = 0
	v.note = -1
}

func (v *voice) sounding() bool {
	return v.phase != phaseIdle && v.phase != phaseRelease
}

// advanceEnvelope steps the AHDSR state machine by one sample and returns the
// new level.
func (v *voice) advanceEnvelope() float64 {
	switch v.phase {
	case phaseAttack:
		v.envPos++
		if v.envPos >= v.attackSamples {
			v.level = 1
			v.envPos = 0
			if v.holdSamples > 0 {
				v.phase = phaseHold
			} else {
				v.phase = phaseDecay
			}
		} else {
			v.level = float64(v.envPos) / float64(v.attackSamples)
		}
	case phaseHold:
		v.level = 1
		v.envPos++
		if v.envPos >= v.holdSamples {
			v.envPos = 0
			v.phase = phaseDecay
		}
	case phaseDecay:
		v.envPos++
		if v.envPos >= v.decaySamples {
			v.level = v.sustainLevel
			v.envPos = 0
			v.phase = phaseSustain
		} else {
			v.level = 1 - (1-v.sustainLevel)*float64(v.envPos)/float64(v.decaySamples)
		}
	case phaseSustain:
		v.level = v.sustainLevel
	case phaseRelease:
		v.envPos++
		if v.envPos >= v.releaseSamples {
			v.level = 0
			v.phase = phaseIdle
		} else {
			v.level = v.releaseStartLevel * (1 - float64(v.envPos)/float64(v.releaseSamples))
		}
	default:
		v.level = 0
	}
	return v.level
}

// value reads the interpolated sample at the playback position. ch < 0 mixes
// all channels down.
func (v *voice) value(ch int) float64 {
	s0 := v.at(v.pos, ch)
	s1 := v.at(v.pos+1, ch)
	return s0 + (s1-s0)*v.frac
}

func (v *voice) at(frame, ch int) float64 {
	if frame < 0 || frame >= v.frames {
		return 0
	}
	b := v.buf
	if ch >= 0 {
		return float64(b.Frame(frame, min(ch, b.Channels-1)))
	}
	if b.Channels == 1 {
		return float64(b.Samples[frame])
	}
	var sum float64
	base := frame * b.Channels
	for c := 0; c < b.Channels; c++ {
		sum += float64(b.Samples[base+c])
	}
	return sum / float64(b.Channels)
}

// ampMod returns the amplitude LFO's gain for the current sample.
func (v *voice) ampMod() float64 {
	if !v.ampLFO.Active() {
		return 1
	}
	return dbToLinear(v.ampLFO.Next(v.rate))
}

// advance steps the playback position by the pitch ratio and applies the
// loop mode's end-of-sample handling.
func (v *voice) advance() {
	ratio := v.pitchRatio
	if v.pitchLFO.Active() {
		ratio = clamp(ratio*math.Pow(2, v.pitchLFO.Next(v.rate)/1200), minPitchRatio, maxPitchRatio)
	}
	v.frac += ratio
	for v.frac >= 1 {
		v.frac--
		v.pos++
	}
	if v.looping() {
		v.wrap()
		return
	}
	if v.pos > v.endPos {
		v.phase = phaseIdle
		v.level = 0
		v.ended = true
	}
}

// looping reports whether the voice wraps at loopEnd instead of stopping at
// endPos. Frames past the sample's data read as silence.
func (v *voice) looping() bool {
	if v.loopEnd <= v.loopStart {
		return false
	}
	switch v.loopMode {
	case sfz.LoopContinuous:
		return true
	case sfz.LoopSustain:
		return v.phase != phaseRelease
	}
	return false
}

func (v *voice) wrap() {
	for v.pos >= v.loopEnd {
		v.pos = v.loopStart + (v.pos - v.loopEnd)
	}
}

func dbToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
