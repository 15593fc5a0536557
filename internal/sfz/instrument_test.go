package sfz

import (
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cbegin/sfzpad-go/internal/sample"
)

func TestPitchRatio(t *testing.T) {
	r := NewRegion()
	r.PitchKeycenter = 60
	for _, tc := range []struct {
		note int
		want float64
	}{
		{60, 1.0},
		{72, 2.0},
		{48, 0.5},
		{84, 4.0},
	} {
		if got := r.PitchRatio(tc.note); got != tc.want {
			t.Fatalf("PitchRatio(%d) = %v, want %v", tc.note, got, tc.want)
		}
	}

	tuned := r
	tuned.Tune = 100
	transposed := r
	transposed.Transpose = 1
	for note := 40; note < 80; note++ {
		a, b := tuned.PitchRatio(note), transposed.PitchRatio(note)
		if math.Abs(a-b) > 1e-5 {
			t.Fatalf("note %d: tune=+100 ratio %v != transpose=+1 ratio %v", note, a, b)
		}
	}
}

func TestRegionMatches(t *testing.T) {
	ranged := NewRegion()
	ranged.LoKey, ranged.HiKey = 48, 60
	ranged.LoVel, ranged.HiVel = 20, 100

	exact := ranged
	exact.Key = 55

	for note := 0; note < 128; note++ {
		for vel := 0; vel < 128; vel++ {
			velOK := vel >= 20 && vel <= 100
			if got, want := ranged.Matches(note, vel), velOK && note >= 48 && note <= 60; got != want {
				t.Fatalf("ranged.Matches(%d,%d) = %v, want %v", note, vel, got, want)
			}
			if got, want := exact.Matches(note, vel), velOK && note == 55; got != want {
				t.Fatalf("exact.Matches(%d,%d) = %v, want %v", note, vel, got, want)
			}
		}
	}
}

func testInstrument() *Instrument {
	inst := Parse(`
<region> sample=samples/Kick.wav key=36
<region> sample=snare_l.wav lokey=38 hikey=40 region_label=Snare
<region> sample=snare_r.wav lokey=38 hikey=40
<region> lokey=50 hikey=52 hivel=64
`)
	inst.BasePath = "/kits/909"
	return inst
}

func TestFindRegionsKeepsSourceOrder(t *testing.T) {
	inst := testInstrument()
	got := inst.FindRegions(39, 100)
	if len(got) != 2 {
		t.Fatalf("expected overlapping pair, got %d regions", len(got))
	}
	if got[0].Sample != "snare_l.wav" || got[1].Sample != "snare_r.wav" {
		t.Fatalf("unexpected order: %q, %q", got[0].Sample, got[1].Sample)
	}
	if len(inst.FindRegions(51, 100)) != 0 {
		t.Fatalf("velocity above hivel should not match")
	}
	if len(inst.FindRegions(51, 10)) != 1 {
		t.Fatalf("expected soft hit to match")
	}
}

func TestKeyRangeAndUniqueNotes(t *testing.T) {
	inst := testInstrument()
	lo, hi := inst.KeyRange()
	if lo != 36 || hi != 52 {
		t.Fatalf("key range = %d-%d, want 36-52", lo, hi)
	}
	want := []int{36, 38, 39, 40, 50, 51, 52}
	if got := inst.UniqueMIDINotes(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unique notes = %v, want %v", got, want)
	}

	empty := &Instrument{}
	lo, hi = empty.KeyRange()
	if lo != 0 || hi != 127 {
		t.Fatalf("empty key range = %d-%d, want 0-127", lo, hi)
	}
	if len(empty.UniqueMIDINotes()) != 0 {
		t.Fatalf("expected no notes for empty instrument")
	}

	high := NewRegion()
	high.LoKey, high.HiKey = 200, 210
	lo, hi = (&Instrument{Regions: []Region{high}}).KeyRange()
	if lo != 200 || hi != 210 {
		t.Fatalf("out-of-range key range = %d-%d, want 200-210", lo, hi)
	}
}

func TestRegionLabel(t *testing.T) {
	inst := testInstrument()
	for _, tc := range []struct {
		note int
		want string
	}{
		{36, "Kick"},
		{38, "Snare"},
		{51, "D#3"},
		{60, "C4"},
		{0, "C-1"},
	} {
		if got := inst.RegionLabel(tc.note); got != tc.want {
			t.Fatalf("RegionLabel(%d) = %q, want %q", tc.note, got, tc.want)
		}
	}
}

func TestSamplePath(t *testing.T) {
	inst := testInstrument()
	if got, want := inst.SamplePath(&inst.Regions[0]), filepath.Join("/kits/909", "samples", "Kick.wav"); got != want {
		t.Fatalf("sample path = %q, want %q", got, want)
	}
	if got := inst.SamplePath(&inst.Regions[3]); got != "" {
		t.Fatalf("expected empty path without any sample, got %q", got)
	}
	inst.DefaultSample = `sf2\smpl.wav`
	if got, want := inst.SamplePath(&inst.Regions[3]), filepath.Join("/kits/909", "sf2", "smpl.wav"); got != want {
		t.Fatalf("default sample path = %q, want %q", got, want)
	}
	want := []string{
		filepath.Join("/kits/909", "samples", "Kick.wav"),
		filepath.Join("/kits/909", "snare_l.wav"),
		filepath.Join("/kits/909", "snare_r.wav"),
		filepath.Join("/kits/909", "sf2", "smpl.wav"),
	}
	if got := inst.SamplePaths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("sample paths = %v, want %v", got, want)
	}
}

func TestSampleCache(t *testing.T) {
	inst := &Instrument{}
	if inst.Sample("x.wav") != nil {
		t.Fatalf("expected empty cache")
	}
	buf := &sample.Buffer{Samples: []float32{0, 1}, SampleRate: 44100, Channels: 1}
	inst.SetSample("x.wav", buf)
	if inst.Sample("x.wav") != buf {
		t.Fatalf("expected cached buffer")
	}
}
