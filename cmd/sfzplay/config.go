package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cbegin/sfzpad-go/internal/sfz"
)

const envPrefix = "SFZPAD"

type config struct {
	Instrument string
	SampleRate int
	Polyphony  int
	Mono       bool
	Backend    string
	Volume     float64
	Reverb     float64
	Velocity   int
	Notes      []int
	Step       float64
	Hold       float64
	Release    float64
	Output     string
	Bits       int
	Watch      bool
	Verbose    bool
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "config file (yaml, toml or json)")
	fs.Int("sample-rate", 44100, "output sample rate")
	fs.Int("polyphony", 32, "voice pool size")
	fs.Bool("mono", false, "monophonic: each note cuts the previous one")
	fs.String("backend", "ebiten", "audio backend: ebiten|oto|none")
	fs.Float64("volume", 1.0, "master volume scalar")
	fs.Float64("reverb", 0, "reverb mix 0..1")
	fs.Int("velocity", 100, "note velocity 1..127")
	fs.String("notes", "", "comma separated notes, MIDI numbers or names like c4 (default: every mapped note)")
	fs.Float64("step", 0.5, "seconds between note starts (0 plays a chord)")
	fs.Float64("hold", 0.4, "seconds each note is held")
	fs.Float64("release", 1.0, "seconds rendered after the last note-off")
	fs.StringP("output", "o", "", "output WAV path (render; default <instrument>.wav)")
	fs.Int("bits", 16, "output bit depth: 16|24|32")
	fs.Bool("watch", false, "reload and replay when the instrument file changes (play)")
	fs.BoolP("verbose", "v", false, "debug logging")
	return fs
}

// loadConfig merges flags, SFZPAD_* environment variables and an optional
// config file, in that order of precedence.
func loadConfig(name string, args []string) (config, error) {
	fs := newFlagSet(name)
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return config{}, err
	}
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if fs.NArg() != 1 {
		return config{}, errors.New("expected exactly one instrument file")
	}
	notes, err := parseNotes(v.GetString("notes"))
	if err != nil {
		return config{}, err
	}
	cfg := config{
		Instrument: fs.Arg(0),
		SampleRate: v.GetInt("sample-rate"),
		Polyphony:  v.GetInt("polyphony"),
		Mono:       v.GetBool("mono"),
		Backend:    v.GetString("backend"),
		Volume:     v.GetFloat64("volume"),
		Reverb:     v.GetFloat64("reverb"),
		Velocity:   v.GetInt("velocity"),
		Notes:      notes,
		Step:       v.GetFloat64("step"),
		Hold:       v.GetFloat64("hold"),
		Release:    v.GetFloat64("release"),
		Output:     v.GetString("output"),
		Bits:       v.GetInt("bits"),
		Watch:      v.GetBool("watch"),
		Verbose:    v.GetBool("verbose"),
	}
	return cfg, cfg.validate()
}

func (c config) validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("invalid sample-rate %d", c.SampleRate)
	case c.Polyphony <= 0:
		return fmt.Errorf("invalid polyphony %d", c.Polyphony)
	case c.Velocity < 1 || c.Velocity > 127:
		return fmt.Errorf("invalid velocity %d (expected 1..127)", c.Velocity)
	case c.Step < 0 || c.Hold < 0 || c.Release < 0:
		return errors.New("step, hold and release must not be negative")
	case c.Bits != 16 && c.Bits != 24 && c.Bits != 32:
		return fmt.Errorf("invalid bits %d (expected 16|24|32)", c.Bits)
	}
	return nil
}

func parseNotes(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	notes := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			var ok bool
			if n, ok = sfz.ParseNoteName(f); !ok {
				return nil, fmt.Errorf("invalid note %q", f)
			}
		}
		if n < 0 || n > 127 {
			return nil, fmt.Errorf("note %q out of range", f)
		}
		notes = append(notes, n)
	}
	return notes, nil
}
