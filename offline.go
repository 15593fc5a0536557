package sfzpad

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-audio/wav"

	"github.com/cbegin/sfzpad-go/internal/sample"
	"github.com/cbegin/sfzpad-go/internal/sfz"
	"github.com/cbegin/sfzpad-go/internal/synth"
)

// NoteEvent is a timed note command for offline rendering. A zero Velocity
// marks a note-off.
type NoteEvent struct {
	Time     float64 // seconds from the start of the render
	Note     int
	Velocity int
}

// Sequence schedules notes one after another, step seconds apart, each held
// for hold seconds. A zero step plays them as a chord.
func Sequence(notes []int, velocity int, step, hold float64) []NoteEvent {
	events := make([]NoteEvent, 0, len(notes)*2)
	for i, n := range notes {
		on := float64(i) * step
		events = append(events,
			NoteEvent{Time: on, Note: n, Velocity: velocity},
			NoteEvent{Time: on + hold, Note: n},
		)
	}
	return events
}

const renderBlockFrames = 512

// Render plays events through a fresh engine for the given duration and
// returns interleaved stereo output. The instrument's sample cache must
// already be filled.
func Render(inst *sfz.Instrument, sampleRate int, events []NoteEvent, seconds float64) *sample.Buffer {
	return RenderWithParams(inst, sampleRate, events, seconds, synth.DefaultParams())
}

// RenderWithParams is Render with explicit engine parameters.
func RenderWithParams(inst *sfz.Instrument, sampleRate int, events []NoteEvent, seconds float64, params synth.Params) *sample.Buffer {
	engine := synth.New(sampleRate, params)
	engine.LoadInstrument(inst)

	sorted := make([]NoteEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	frames := int(float64(sampleRate) * seconds)
	out := make([]float32, frames*2)
	next := 0
	for pos := 0; pos < frames; {
		for next < len(sorted) && int(sorted[next].Time*float64(sampleRate)) <= pos {
			ev := sorted[next]
			if ev.Velocity > 0 {
				engine.NoteOn(ev.Note, ev.Velocity)
			} else {
				engine.NoteOff(ev.Note)
			}
			next++
		}
		end := min(pos+renderBlockFrames, frames)
		if next < len(sorted) {
			end = min(end, max(pos+1, int(sorted[next].Time*float64(sampleRate))))
		}
		engine.GenerateStereo(out[pos*2 : end*2])
		pos = end
	}
	return &sample.Buffer{Samples: out, SampleRate: sampleRate, Channels: 2}
}

// WriteWAV encodes buf as integer PCM at bitDepth (16, 24 or 32).
func WriteWAV(path string, buf *sample.Buffer, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeWAV(f, buf, bitDepth); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeWAV writes buf to w as a PCM WAV file.
func EncodeWAV(w io.WriteSeeker, buf *sample.Buffer, bitDepth int) error {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("unsupported bit depth %d", bitDepth)
	}
	enc := wav.NewEncoder(w, buf.SampleRate, bitDepth, buf.Channels, 1)
	if err := enc.Write(buf.IntBuffer(bitDepth)); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}
