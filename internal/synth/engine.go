// Package synth plays regions of a loaded instrument through a fixed pool of
// sample voices with per-voice AHDSR envelopes.
package synth

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/cbegin/sfzpad-go/internal/sample"
	"github.com/cbegin/sfzpad-go/internal/sfz"
)

const defaultPolyphony = 32

// Params controls the voice engine.
type Params struct {
	Polyphony  int
	Monophonic bool
	MasterGain float64
	Logger     *slog.Logger
}

// DefaultParams returns the engine defaults: 32 voices, polyphonic, unity gain.
func DefaultParams() Params {
	return Params{
		Polyphony:  defaultPolyphony,
		MasterGain: 1,
	}
}

// Engine owns the voice pool. Control calls (NoteOn, NoteOff, StopAll,
// LoadInstrument) may come from any goroutine; rendering is expected from a
// single audio goroutine but is safe to call concurrently.
//
// Rendering copies the pool under the lock, mixes the copy without holding
// it, and writes the advanced state back afterwards. Slots that a control call
// reassigned in the meantime keep the control call's state.
type Engine struct {
	sampleRate float64
	params     Params
	log        *slog.Logger
	masterGain uint64

	mu       sync.Mutex
	voices   []voice
	inst     *sfz.Instrument
	injected *sample.Buffer
	clock    uint64
	epoch    uint64

	renderMu sync.Mutex
	scratch  []voice
}

// New creates an engine rendering at sampleRate.
func New(sampleRate int, params Params) *Engine {
	if params.Polyphony <= 0 {
		params.Polyphony = defaultPolyphony
	}
	if params.MasterGain < 0 {
		params.MasterGain = 0
	}
	log := params.Logger
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{
		sampleRate: float64(sampleRate),
		params:     params,
		log:        log,
		masterGain: math.Float64bits(params.MasterGain),
		voices:     make([]voice, params.Polyphony),
		scratch:    make([]voice, params.Polyphony),
	}
	for i := range e.voices {
		e.voices[i].note = -1
	}
	return e
}

// SampleRate returns the rendering rate in Hz.
func (e *Engine) SampleRate() int { return int(e.sampleRate) }

// Polyphony returns the size of the voice pool.
func (e *Engine) Polyphony() int { return len(e.voices) }

// LoadInstrument swaps the active instrument and silences every voice.
// Renders in flight when the swap happens discard their results.
func (e *Engine) LoadInstrument(inst *sfz.Instrument) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inst = inst
	e.epoch++
	for i := range e.voices {
		e.voices[i].cut()
		e.voices[i].clear()
	}
	if inst != nil {
		e.log.Debug("instrument loaded", "name", inst.Name, "regions", len(inst.Regions), "samples", len(inst.Samples))
	}
}

// InjectSample makes every region play buf regardless of its sample path.
// Passing nil restores the instrument's sample cache.
func (e *Engine) InjectSample(buf *sample.Buffer) {
	e.mu.Lock()
	e.injected = buf
	e.mu.Unlock()
}

// NoteOn starts the first region matching note and velocity. Velocity is
// clamped to 1..127. Notes with no region or no sample data are ignored.
func (e *Engine) NoteOn(note, velocity int) {
	velocity = clampInt(velocity, 1, 127)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inst == nil {
		return
	}
	regions := e.inst.FindRegions(note, velocity)
	if len(regions) == 0 {
		return
	}
	r := regions[0]
	buf := e.injected
	if buf == nil {
		buf = e.inst.Sample(e.inst.SamplePath(r))
	}
	if buf == nil || buf.Frames() == 0 {
		e.log.Debug("no sample data for region", "note", note, "sample", r.Sample)
		return
	}

	idx := e.retriggerSlot(note)
	if e.params.Monophonic {
		for i := range e.voices {
			if i != idx && e.voices[i].phase != phaseIdle {
				e.voices[i].cut()
				e.voices[i].clear()
			}
		}
	}
	if idx < 0 {
		idx = e.allocate()
	}
	v := &e.voices[idx]
	v.configure(r, note, velocity, buf, e.sampleRate)
	e.clock++
	v.startStamp = e.clock
}

// NoteOff moves every sounding voice on note into release.
func (e *Engine) NoteOff(note int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.voices {
		v := &e.voices[i]
		if v.note == note && v.sounding() {
			e.clock++
			v.release(e.clock)
		}
	}
}

// StopAll releases every sounding voice.
func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.voices {
		v := &e.voices[i]
		if v.sounding() {
			e.clock++
			v.release(e.clock)
		}
	}
}

// EnvelopeLevel returns the highest envelope level among active voices
// playing note, or 0 when none is.
func (e *Engine) EnvelopeLevel(note int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	level := 0.0
	for i := range e.voices {
		v := &e.voices[i]
		if v.note == note && v.phase != phaseIdle && v.level > level {
			level = v.level
		}
	}
	return level
}

// ActiveVoiceCount returns the number of voices not in the idle state.
func (e *Engine) ActiveVoiceCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for i := range e.voices {
		if e.voices[i].phase != phaseIdle {
			n++
		}
	}
	return n
}

// SetMasterGain sets the master gain atomically.
func (e *Engine) SetMasterGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	atomic.StoreUint64(&e.masterGain, math.Float64bits(gain))
}

func (e *Engine) masterGainValue() float64 {
	return math.Float64frombits(atomic.LoadUint64(&e.masterGain))
}

// GenerateSamples fills buf with mono output. Multi-channel samples are
// mixed down. Voices are summed without normalization.
func (e *Engine) GenerateSamples(buf []float32) {
	e.render(buf, 1)
}

// GenerateStereo fills buf with interleaved stereo output, applying each
// region's pan with an equal-power law.
func (e *Engine) GenerateStereo(buf []float32) {
	e.render(buf, 2)
}

func (e *Engine) render(buf []float32, channels int) {
	for i := range buf {
		buf[i] = 0
	}

	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	e.mu.Lock()
	epoch := e.epoch
	snap := e.scratch[:len(e.voices)]
	copy(snap, e.voices)
	e.mu.Unlock()

	gain := e.masterGainValue()
	frames := len(buf) / channels
	for i := range snap {
		v := &snap[i]
		for f := 0; f < frames && v.phase != phaseIdle; f++ {
			amp := v.advanceEnvelope() * v.volume * gain * v.ampMod()
			if channels == 1 {
				buf[f] += float32(v.value(-1) * amp)
			} else {
				buf[f*2] += float32(v.value(0) * amp * v.panL)
				buf[f*2+1] += float32(v.value(1) * amp * v.panR)
			}
			v.advance()
		}
	}

	e.mu.Lock()
	e.commit(snap, epoch)
	e.mu.Unlock()
}

// commit writes rendered voice state back into the pool. Caller holds mu.
func (e *Engine) commit(snap []voice, epoch uint64) {
	if e.epoch != epoch {
		return
	}
	for i := range snap {
		live, s := &e.voices[i], &snap[i]
		if live.gen != s.gen {
			continue
		}
		if live.envGen == s.envGen {
			*live = *s
		} else {
			// Released mid-block: keep the new envelope, take the playback
			// progress.
			live.pos, live.frac = s.pos, s.frac
			live.pitchLFO, live.ampLFO = s.pitchLFO, s.ampLFO
			if s.ended {
				live.phase = phaseIdle
				live.ended = true
			}
		}
		if live.phase == phaseIdle {
			live.clear()
		}
	}
}

// retriggerSlot returns the voice already sounding note, or -1.
func (e *Engine) retriggerSlot(note int) int {
	for i := range e.voices {
		if e.voices[i].note == note && e.voices[i].sounding() {
			return i
		}
	}
	return -1
}

// allocate picks a slot for a new note: an idle voice, else the voice that
// entered release first, else the voice that started first.
func (e *Engine) allocate() int {
	for i := range e.voices {
		if e.voices[i].phase == phaseIdle {
			return i
		}
	}
	best := -1
	for i := range e.voices {
		v := &e.voices[i]
		if v.phase == phaseRelease && (best < 0 || v.releaseStamp < e.voices[best].releaseStamp) {
			best = i
		}
	}
	if best >= 0 {
		return best
	}
	best = 0
	for i := range e.voices {
		if e.voices[i].startStamp < e.voices[best].startStamp {
			best = i
		}
	}
	e.log.Debug("voice stolen", "note", e.voices[best].note)
	return best
}
