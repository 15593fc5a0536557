package sfz

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cbegin/sfzpad-go/internal/sample"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName renders a MIDI note as a pitch name with octave, 60 -> "C4".
func NoteName(note int) string {
	pc := ((note % 12) + 12) % 12
	octave := (note-pc)/12 - 1
	return fmt.Sprintf("%s%d", noteNames[pc], octave)
}

// FindRegions returns every region matching note and velocity, in source
// order. Overlapping regions (for example stereo mic pairs) all match.
func (in *Instrument) FindRegions(note, velocity int) []*Region {
	var out []*Region
	for i := range in.Regions {
		if in.Regions[i].Matches(note, velocity) {
			out = append(out, &in.Regions[i])
		}
	}
	return out
}

// KeyRange returns the lowest and highest key any region covers, or (0, 127)
// for an instrument without regions.
func (in *Instrument) KeyRange() (lo, hi int) {
	if len(in.Regions) == 0 {
		return 0, 127
	}
	lo, hi = in.Regions[0].KeyBounds()
	for i := 1; i < len(in.Regions); i++ {
		rlo, rhi := in.Regions[i].KeyBounds()
		lo = min(lo, rlo)
		hi = max(hi, rhi)
	}
	return lo, hi
}

// UniqueMIDINotes returns every note covered by at least one region,
// ascending.
func (in *Instrument) UniqueMIDINotes() []int {
	seen := make(map[int]struct{})
	for i := range in.Regions {
		lo, hi := in.Regions[i].KeyBounds()
		for n := max(lo, 0); n <= min(hi, 127); n++ {
			seen[n] = struct{}{}
		}
	}
	notes := make([]int, 0, len(seen))
	for n := range seen {
		notes = append(notes, n)
	}
	sort.Ints(notes)
	return notes
}

// RegionLabel names the pad for note: the first matching region's label,
// else its sample file name without extension, else the note name.
func (in *Instrument) RegionLabel(note int) string {
	for i := range in.Regions {
		r := &in.Regions[i]
		lo, hi := r.KeyBounds()
		if note < lo || note > hi {
			continue
		}
		if r.Label != "" {
			return r.Label
		}
		if r.Sample != "" {
			base := filepath.Base(normalizePath(r.Sample))
			return strings.TrimSuffix(base, filepath.Ext(base))
		}
		break
	}
	return NoteName(note)
}

// SamplePath resolves the file backing r: the region's own sample, else the
// instrument default, joined onto the base and default paths. It returns ""
// when neither sample is set.
func (in *Instrument) SamplePath(r *Region) string {
	name := r.Sample
	if name == "" {
		name = in.DefaultSample
	}
	if name == "" {
		return ""
	}
	name = normalizePath(name)
	if in.DefaultPath != "" {
		name = filepath.Join(normalizePath(in.DefaultPath), name)
	}
	if in.BasePath == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(in.BasePath, name)
}

// SamplePaths returns each distinct resolved sample path in region order.
func (in *Instrument) SamplePaths() []string {
	seen := make(map[string]struct{})
	var paths []string
	for i := range in.Regions {
		p := in.SamplePath(&in.Regions[i])
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}
	return paths
}

// Sample returns the cached buffer for a resolved sample path.
func (in *Instrument) Sample(path string) *sample.Buffer {
	if in.Samples == nil {
		return nil
	}
	return in.Samples[path]
}

// SetSample stores a decoded buffer in the cache. Not safe for concurrent use.
func (in *Instrument) SetSample(path string, buf *sample.Buffer) {
	if in.Samples == nil {
		in.Samples = make(map[string]*sample.Buffer)
	}
	in.Samples[path] = buf
}

func normalizePath(p string) string {
	return filepath.FromSlash(strings.ReplaceAll(p, `\`, "/"))
}
