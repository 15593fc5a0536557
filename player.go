package sfzpad

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	intaudio "github.com/cbegin/sfzpad-go/internal/audio"
	intfx "github.com/cbegin/sfzpad-go/internal/effects"
	"github.com/cbegin/sfzpad-go/internal/loader"
	"github.com/cbegin/sfzpad-go/internal/sfz"
	"github.com/cbegin/sfzpad-go/internal/synth"
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	params      synth.Params
	backend     intaudio.Backend
	sampleTap   func([]float32)
	reverb      intfx.ReverbParams
	logger      *slog.Logger
	concurrency int
}

func defaultPlayerConfig() playerConfig {
	reverb := intfx.DefaultReverbParams()
	reverb.Mix = 0
	return playerConfig{
		params:  synth.DefaultParams(),
		backend: intaudio.BackendEbiten,
		reverb:  reverb,
	}
}

// WithPolyphony sets the size of the voice pool.
func WithPolyphony(voices int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.params.Polyphony = voices
	}
}

// WithMonophonic makes every NoteOn cut the sounding voice.
func WithMonophonic(enabled bool) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.params.Monophonic = enabled
	}
}

// WithBackend selects the output device implementation.
func WithBackend(b intaudio.Backend) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.backend = b
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// WithReverb sets the master reverb room. A zero Mix leaves the bus dry.
func WithReverb(p intfx.ReverbParams) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.reverb = p
	}
}

func WithLogger(l *slog.Logger) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.logger = l
	}
}

// WithLoadConcurrency bounds the number of samples decoded at once.
func WithLoadConcurrency(n int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.concurrency = n
	}
}

// Player plays an instrument in real time: notes go to the voice engine, its
// stereo output runs through the master bus and into the audio device.
type Player struct {
	mu         sync.Mutex
	sampleRate int
	engine     *synth.Engine
	bus        *intfx.Bus
	src        *busSource
	backend    intaudio.Backend
	sink       intaudio.Sink
	inst       *sfz.Instrument
	volume     float64
	log        *slog.Logger
	loadOpts   loader.Options
}

// busSource feeds the audio sink: engine output, then the master bus, then
// the optional tap.
type busSource struct {
	engine    *synth.Engine
	bus       *intfx.Bus
	sampleTap func([]float32)
}

func (s *busSource) Process(dst []float32) {
	s.engine.GenerateStereo(dst)
	s.bus.ProcessInterleaved(dst)
	if s.sampleTap != nil {
		s.sampleTap(dst)
	}
}

func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.params.Polyphony < 0 {
		return nil, errors.New("polyphony must not be negative")
	}
	log := cfg.logger
	if log == nil {
		log = slog.Default()
	}
	cfg.params.Logger = log
	engine := synth.New(sampleRate, cfg.params)
	bus := intfx.NewBus(sampleRate, cfg.reverb)
	return &Player{
		sampleRate: sampleRate,
		engine:     engine,
		bus:        bus,
		src:        &busSource{engine: engine, bus: bus, sampleTap: cfg.sampleTap},
		backend:    cfg.backend,
		volume:     1,
		log:        log,
		loadOpts:   loader.Options{Concurrency: cfg.concurrency, Logger: log},
	}, nil
}

func (p *Player) SampleRate() int { return p.sampleRate }

// LoadFile parses an instrument file, decodes its samples and makes it the
// active instrument. Sample failures are returned but do not prevent the
// load; notes mapped to missing samples stay silent.
func (p *Player) LoadFile(ctx context.Context, path string) error {
	inst, err := loader.LoadFile(ctx, path, p.loadOpts)
	if inst == nil {
		return err
	}
	p.setInstrument(inst)
	return err
}

// Load decodes the samples of an already parsed instrument and activates it.
func (p *Player) Load(ctx context.Context, inst *sfz.Instrument) error {
	err := loader.Load(ctx, inst, p.loadOpts)
	if ctx.Err() != nil {
		return err
	}
	p.setInstrument(inst)
	return err
}

func (p *Player) setInstrument(inst *sfz.Instrument) {
	p.mu.Lock()
	p.inst = inst
	p.mu.Unlock()
	p.engine.LoadInstrument(inst)
	p.bus.Reset()
	lo, hi := inst.KeyRange()
	p.log.Info("instrument ready", "name", inst.Name, "regions", len(inst.Regions), "samples", len(inst.Samples), "lokey", lo, "hikey", hi)
}

// Instrument returns the active instrument, or nil.
func (p *Player) Instrument() *sfz.Instrument {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inst
}

func (p *Player) NoteOn(note, velocity int) { p.engine.NoteOn(note, velocity) }
func (p *Player) NoteOff(note int)          { p.engine.NoteOff(note) }
func (p *Player) StopAll()                  { p.engine.StopAll() }

func (p *Player) EnvelopeLevel(note int) float64 { return p.engine.EnvelopeLevel(note) }
func (p *Player) ActiveVoiceCount() int          { return p.engine.ActiveVoiceCount() }

// Start opens the audio device on first use and resumes output.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sink == nil {
		sink, err := intaudio.Open(p.backend, p.sampleRate, p.src)
		if err != nil {
			return err
		}
		p.sink = sink
		p.log.Debug("audio started", "backend", p.backend, "rate", p.sampleRate)
	}
	p.sink.Play()
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sink != nil {
		p.sink.Pause()
	}
}

// Stop releases every voice and closes the audio device.
func (p *Player) Stop() error {
	p.engine.StopAll()
	p.bus.Reset()
	p.mu.Lock()
	sink := p.sink
	p.sink = nil
	p.mu.Unlock()
	if sink == nil {
		return nil
	}
	return sink.Close()
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sink != nil && p.sink.IsPlaying()
}

// SetMasterVolume sets runtime volume scalar. 1.0 is default.
func (p *Player) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	p.engine.SetMasterGain(volume)
}

func (p *Player) MasterVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetEQBand sets a master EQ band's gain in dB (±12).
// This takes effect immediately on the audio thread (lock-free).
func (p *Player) SetEQBand(band intfx.Band, db float64) {
	p.bus.EQ.SetGainDB(band, db)
}

func (p *Player) EQBand(band intfx.Band) float64 {
	return p.bus.EQ.GainDB(band)
}

// SetReverbMix sets the reverb's wet share, 0 to 1.
func (p *Player) SetReverbMix(mix float64) {
	p.bus.Reverb.SetMix(float32(mix))
}

func (p *Player) ReverbMix() float64 {
	return float64(p.bus.Reverb.Mix())
}
