package sfzpad

import (
	intaudio "github.com/cbegin/sfzpad-go/internal/audio"
	intfx "github.com/cbegin/sfzpad-go/internal/effects"
	"github.com/cbegin/sfzpad-go/internal/sample"
	"github.com/cbegin/sfzpad-go/internal/sfz"
	"github.com/cbegin/sfzpad-go/internal/synth"
)

// Re-exported so callers outside this module can use the Player and the
// offline renderer.
type (
	Instrument   = sfz.Instrument
	Region       = sfz.Region
	Buffer       = sample.Buffer
	EngineParams = synth.Params
	Backend      = intaudio.Backend
	EQBand       = intfx.Band
	ReverbParams = intfx.ReverbParams
)

const (
	BackendEbiten = intaudio.BackendEbiten
	BackendOto    = intaudio.BackendOto
	BackendNone   = intaudio.BackendNone
)

const (
	EQLow     = intfx.BandLow
	EQLowMid  = intfx.BandLowMid
	EQMid     = intfx.BandMid
	EQHighMid = intfx.BandHighMid
	EQHigh    = intfx.BandHigh
)

// ParseFile parses an instrument definition without loading its samples.
func ParseFile(path string) (*Instrument, error) { return sfz.ParseFile(path) }

func ParseBackend(name string) (Backend, error) { return intaudio.ParseBackend(name) }

func DefaultEngineParams() EngineParams { return synth.DefaultParams() }

func DefaultReverbParams() ReverbParams { return intfx.DefaultReverbParams() }
