package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sfzpad "github.com/cbegin/sfzpad-go"
	intaudio "github.com/cbegin/sfzpad-go/internal/audio"
	intfx "github.com/cbegin/sfzpad-go/internal/effects"
	"github.com/cbegin/sfzpad-go/internal/loader"
	"github.com/cbegin/sfzpad-go/internal/sfz"
	"github.com/cbegin/sfzpad-go/internal/synth"
)

func runInfo(ctx context.Context, cfg config) error {
	inst, err := sfz.NewParser(sfz.DefaultParserConfig()).ParseFile(cfg.Instrument)
	if err != nil {
		return err
	}
	lo, hi := inst.KeyRange()
	fmt.Printf("name:     %s\n", inst.Name)
	fmt.Printf("regions:  %d\n", len(inst.Regions))
	fmt.Printf("samples:  %d\n", len(inst.SamplePaths()))
	fmt.Printf("keys:     %s..%s (%d..%d)\n", sfz.NoteName(lo), sfz.NoteName(hi), lo, hi)
	for _, f := range metadataFields(inst.Metadata) {
		if f.value != "" {
			fmt.Printf("%-9s %s\n", f.label+":", f.value)
		}
	}
	for _, n := range inst.UniqueMIDINotes() {
		fmt.Printf("  %3d %-4s %s\n", n, sfz.NoteName(n), inst.RegionLabel(n))
	}
	return nil
}

type metadataField struct{ label, value string }

func metadataFields(m sfz.Metadata) []metadataField {
	return []metadataField{
		{"internal", m.InternalName},
		{"engineer", m.SoundEngineer},
		{"created", m.CreationDate},
		{"parent", m.ParentFile},
		{"sf2", m.SoundfontVersion},
		{"editor", m.Editor},
		{"converter", strings.TrimSpace(m.Converter + " " + m.ConverterCopyright)},
		{"converted", m.ConversionDate},
		{"optimised", m.OptimisedFor},
		{"intended", m.IntendedFor},
	}
}

func loadInstrument(ctx context.Context, cfg config) (*sfz.Instrument, error) {
	inst, err := loader.LoadFile(ctx, cfg.Instrument, loader.Options{})
	if inst == nil {
		return nil, err
	}
	if err != nil {
		slog.Warn("some samples failed to load", "err", err)
	}
	return inst, ctx.Err()
}

// noteEvents schedules the configured notes, defaulting to every mapped note,
// and returns them sorted with the total render length.
func noteEvents(cfg config, inst *sfz.Instrument) ([]sfzpad.NoteEvent, float64) {
	notes := cfg.Notes
	if len(notes) == 0 {
		notes = inst.UniqueMIDINotes()
	}
	events := sfzpad.Sequence(notes, cfg.Velocity, cfg.Step, cfg.Hold)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Time < events[j].Time })
	end := 0.0
	if len(events) > 0 {
		end = events[len(events)-1].Time
	}
	return events, end + cfg.Release
}

func runRender(ctx context.Context, cfg config) error {
	inst, err := loadInstrument(ctx, cfg)
	if err != nil {
		return err
	}
	events, seconds := noteEvents(cfg, inst)
	params := synth.DefaultParams()
	params.Polyphony = cfg.Polyphony
	params.Monophonic = cfg.Mono
	params.MasterGain = cfg.Volume
	buf := sfzpad.RenderWithParams(inst, cfg.SampleRate, events, seconds, params)

	out := cfg.Output
	if out == "" {
		out = strings.TrimSuffix(cfg.Instrument, filepath.Ext(cfg.Instrument)) + ".wav"
	}
	if err := sfzpad.WriteWAV(out, buf, cfg.Bits); err != nil {
		return err
	}
	slog.Info("rendered", "path", out, "seconds", buf.Duration().Seconds(), "notes", len(events)/2)
	return nil
}

func runPlay(ctx context.Context, cfg config) error {
	backend, err := intaudio.ParseBackend(cfg.Backend)
	if err != nil {
		return err
	}
	reverb := intfx.DefaultReverbParams()
	reverb.Mix = float32(cfg.Reverb)
	pl, err := sfzpad.NewPlayer(cfg.SampleRate,
		sfzpad.WithPolyphony(cfg.Polyphony),
		sfzpad.WithMonophonic(cfg.Mono),
		sfzpad.WithBackend(backend),
		sfzpad.WithReverb(reverb),
		sfzpad.WithLogger(slog.Default()),
	)
	if err != nil {
		return err
	}
	pl.SetMasterVolume(cfg.Volume)
	if err := reload(ctx, pl, cfg.Instrument); err != nil {
		return err
	}
	if err := pl.Start(); err != nil {
		return err
	}
	defer pl.Stop()

	if !cfg.Watch {
		return perform(ctx, pl, cfg)
	}

	changes, err := watchFile(ctx, cfg.Instrument)
	if err != nil {
		return err
	}
	for {
		if err := perform(ctx, pl, cfg); err != nil {
			return err
		}
		slog.Info("waiting for changes", "path", cfg.Instrument)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changes:
		}
		pl.StopAll()
		if err := reload(ctx, pl, cfg.Instrument); err != nil {
			slog.Error("reload failed", "err", err)
		}
	}
}

func reload(ctx context.Context, pl *sfzpad.Player, path string) error {
	err := pl.LoadFile(ctx, path)
	if pl.Instrument() == nil {
		return err
	}
	if err != nil {
		slog.Warn("some samples failed to load", "err", err)
	}
	return ctx.Err()
}

// perform plays the configured notes in real time and waits out the tail.
func perform(ctx context.Context, pl *sfzpad.Player, cfg config) error {
	inst := pl.Instrument()
	events, seconds := noteEvents(cfg, inst)
	start := time.Now()
	for _, ev := range events {
		if err := sleepUntil(ctx, start, ev.Time); err != nil {
			pl.StopAll()
			return err
		}
		if ev.Velocity > 0 {
			pl.NoteOn(ev.Note, ev.Velocity)
			slog.Debug("note on", "note", sfz.NoteName(ev.Note), "label", inst.RegionLabel(ev.Note))
		} else {
			pl.NoteOff(ev.Note)
		}
	}
	return sleepUntil(ctx, start, seconds)
}

func sleepUntil(ctx context.Context, start time.Time, offset float64) error {
	wait := time.Until(start.Add(time.Duration(offset * float64(time.Second))))
	if wait <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
