package main

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cbegin/sfzpad-go/internal/sfz"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("play", []string{"kit.sfz"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Instrument != "kit.sfz" || cfg.SampleRate != 44100 || cfg.Polyphony != 32 || cfg.Backend != "ebiten" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Velocity != 100 || cfg.Bits != 16 || cfg.Notes == nil || len(cfg.Notes) != 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sfzplay.yaml")
	content := "polyphony: 8\nmono: true\nvelocity: 50\nnotes: \"c4, 64\"\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("SFZPAD_VELOCITY", "90")
	t.Setenv("SFZPAD_SAMPLE_RATE", "22050")

	cfg, err := loadConfig("render", []string{"--config", file, "--sample-rate", "48000", "kit.sfz"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SampleRate != 48000 {
		t.Fatalf("flag should beat env: sample rate %d", cfg.SampleRate)
	}
	if cfg.Velocity != 90 {
		t.Fatalf("env should beat file: velocity %d", cfg.Velocity)
	}
	if cfg.Polyphony != 8 || !cfg.Mono {
		t.Fatalf("file values missing: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Notes, []int{60, 64}) {
		t.Fatalf("notes = %v", cfg.Notes)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
	}{
		{"no instrument", nil},
		{"two instruments", []string{"a.sfz", "b.sfz"}},
		{"bad velocity", []string{"--velocity", "0", "a.sfz"}},
		{"bad bits", []string{"--bits", "12", "a.sfz"}},
		{"bad polyphony", []string{"--polyphony", "0", "a.sfz"}},
		{"negative hold", []string{"--hold", "-1", "a.sfz"}},
		{"bad note", []string{"--notes", "60,x9", "a.sfz"}},
		{"note out of range", []string{"--notes", "128", "a.sfz"}},
		{"missing config file", []string{"--config", "/nonexistent/sfzplay.yaml", "a.sfz"}},
		{"unknown flag", []string{"--loud", "a.sfz"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := loadConfig("play", tc.args); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestNoteEventsDefaultsToMappedNotes(t *testing.T) {
	inst := sfz.Parse("<region> key=40 <region> key=36 <region> lokey=38 hikey=39")
	cfg := config{Velocity: 100, Step: 0.5, Hold: 0.25, Release: 1}
	events, seconds := noteEvents(cfg, inst)
	if len(events) != 8 {
		t.Fatalf("events = %d, want 8", len(events))
	}
	if events[0].Note != 36 || events[0].Velocity != 100 {
		t.Fatalf("first event = %+v", events[0])
	}
	for i := 1; i < len(events); i++ {
		if events[i].Time < events[i-1].Time {
			t.Fatalf("events not sorted at %d", i)
		}
	}
	if seconds != 1.75+1 {
		t.Fatalf("seconds = %f, want 2.75", seconds)
	}
}

func TestRelevantEvents(t *testing.T) {
	path := filepath.Join(string(filepath.Separator), "kits", "pad.sfz")
	for _, tc := range []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: filepath.Join(filepath.Dir(path), "other.sfz"), Op: fsnotify.Write}, false},
	} {
		if got := relevant(tc.ev, path); got != tc.want {
			t.Fatalf("relevant(%v) = %v, want %v", tc.ev, got, tc.want)
		}
	}
}

func TestWatchFileSignalsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pad.sfz")
	if err := os.WriteFile(path, []byte("<region> key=60"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := watchFile(ctx, path)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(path, []byte("<region> key=62"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatalf("no change signalled")
	}
}
