// Package sfz parses SFZ instrument definitions into a region model and
// answers key/velocity lookups against it.
package sfz

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type scope int

const (
	scopeNone scope = iota
	scopeGlobal
	scopeGroup
	scopeRegion
	scopeControl
	scopeIgnored
)

type opcode struct {
	name  string
	value string
}

type ParserConfig struct {
	// Logger receives debug notes about ignored or malformed input. Nil
	// selects slog.Default().
	Logger *slog.Logger
}

func DefaultParserConfig() ParserConfig {
	return ParserConfig{}
}

type Parser struct{ log *slog.Logger }

func NewParser(cfg ParserConfig) *Parser {
	l := cfg.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Parser{log: l}
}

// Parse parses text with no display name and no base path.
func Parse(text string) *Instrument {
	return NewParser(DefaultParserConfig()).Parse(text, "", "")
}

// ParseFile reads and parses the definition at path.
func ParseFile(path string) (*Instrument, error) {
	return NewParser(DefaultParserConfig()).ParseFile(path)
}

// ParseFile reads path and parses it, naming the instrument after the file
// and resolving samples relative to the file's directory. Only I/O failures
// are reported as errors.
func (p *Parser) ParseFile(path string) (*Instrument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return p.Parse(string(data), name, filepath.Dir(path)), nil
}

// Parse builds an Instrument from definition text. Malformed input never
// aborts parsing: unknown headers and opcodes are skipped and unparsable
// numbers read as zero.
func (p *Parser) Parse(text, name, basePath string) *Instrument {
	inst := &Instrument{
		Name:     name,
		BasePath: basePath,
		Metadata: ParseMetadata(text),
	}
	st := &parseState{p: p, inst: inst}
	body := stripComments(text)

	i := 0
	for i < len(body) {
		ch := body[i]
		if isSpace(ch) {
			i++
			continue
		}
		if ch == '<' {
			end := strings.IndexByte(body[i:], '>')
			if end < 0 {
				p.log.Debug("sfz: unterminated header", "offset", i)
				break
			}
			st.header(strings.ToLower(strings.TrimSpace(body[i+1 : i+end])))
			i += end + 1
			continue
		}
		j := i
		for j < len(body) && !isSpace(body[j]) && body[j] != '<' {
			j++
		}
		st.token(body[i:j])
		i = j
	}
	st.closeRegion()

	p.log.Debug("sfz: parsed instrument", "name", name, "regions", len(inst.Regions))
	return inst
}

type parseState struct {
	p          *Parser
	inst       *Instrument
	scope      scope
	globalOps  []opcode
	groupOps   []opcode
	region     Region
	regionOpen bool
}

func (st *parseState) header(name string) {
	st.closeRegion()
	switch name {
	case "global":
		st.scope = scopeGlobal
		st.globalOps = st.globalOps[:0]
	case "group", "master":
		st.scope = scopeGroup
		st.groupOps = st.groupOps[:0]
	case "region":
		st.scope = scopeRegion
		st.region = NewRegion()
		for _, op := range st.globalOps {
			if op.name == "sample" {
				continue
			}
			st.p.apply(&st.region, op)
		}
		for _, op := range st.groupOps {
			st.p.apply(&st.region, op)
		}
		st.regionOpen = true
	case "control":
		st.scope = scopeControl
	default:
		st.p.log.Debug("sfz: ignoring header", "header", name)
		st.scope = scopeIgnored
	}
}

func (st *parseState) token(tok string) {
	eq := strings.IndexByte(tok, '=')
	if eq <= 0 {
		st.p.log.Debug("sfz: ignoring token", "token", tok)
		return
	}
	op := opcode{name: strings.ToLower(tok[:eq]), value: tok[eq+1:]}
	switch st.scope {
	case scopeGlobal:
		st.globalOps = append(st.globalOps, op)
		if op.name == "sample" {
			st.inst.DefaultSample = op.value
		}
	case scopeGroup:
		st.groupOps = append(st.groupOps, op)
	case scopeRegion:
		st.p.apply(&st.region, op)
	case scopeControl:
		if op.name == "default_path" {
			st.inst.DefaultPath = op.value
		}
	case scopeNone:
		st.p.log.Debug("sfz: opcode outside any header", "opcode", op.name)
	}
}

func (st *parseState) closeRegion() {
	if !st.regionOpen {
		return
	}
	st.inst.Regions = append(st.inst.Regions, st.region)
	st.regionOpen = false
}

func (p *Parser) apply(r *Region, op opcode) {
	v := op.value
	switch op.name {
	case "sample":
		r.Sample = v
	case "offset":
		r.Offset = p.parseInt(op)
	case "end":
		r.End = p.parseInt(op)
	case "lokey":
		r.LoKey = p.parseKey(op)
	case "hikey":
		r.HiKey = p.parseKey(op)
	case "key":
		r.Key = p.parseKey(op)
	case "pitch_keycenter":
		r.PitchKeycenter = p.parseKey(op)
	case "lovel":
		r.LoVel = p.parseInt(op)
	case "hivel":
		r.HiVel = p.parseInt(op)
	case "loop_mode":
		r.LoopMode = parseLoopMode(v)
	case "loop_start":
		r.LoopStart = p.parseInt(op)
	case "loop_end":
		r.LoopEnd = p.parseInt(op)
	case "tune":
		r.Tune = p.parseInt(op)
	case "transpose":
		r.Transpose = p.parseInt(op)
	case "volume":
		r.Volume = p.parseFloat(op)
	case "pan":
		r.Pan = p.parseFloat(op)
	case "ampeg_attack":
		r.Attack = p.parseFloat(op)
	case "ampeg_hold":
		r.Hold = p.parseFloat(op)
	case "ampeg_decay":
		r.Decay = p.parseFloat(op)
	case "ampeg_sustain":
		r.Sustain = p.parseFloat(op)
	case "ampeg_release":
		r.Release = p.parseFloat(op)
	case "pitchlfo_freq":
		r.PitchLFOFreq = p.parseFloat(op)
	case "pitchlfo_depth":
		r.PitchLFODepth = p.parseFloat(op)
	case "pitchlfo_wave":
		r.PitchLFOWave = p.parseInt(op)
	case "amplfo_freq":
		r.AmpLFOFreq = p.parseFloat(op)
	case "amplfo_depth":
		r.AmpLFODepth = p.parseFloat(op)
	case "amplfo_wave":
		r.AmpLFOWave = p.parseInt(op)
	case "region_label":
		r.Label = v
	default:
		p.log.Debug("sfz: ignoring opcode", "opcode", op.name)
	}
}

func parseLoopMode(v string) LoopMode {
	switch strings.ToLower(v) {
	case "loop_continuous":
		return LoopContinuous
	case "loop_sustain":
		return LoopSustain
	case "one_shot":
		return LoopOneShot
	default:
		return LoopNone
	}
}

func (p *Parser) parseInt(op opcode) int {
	if n, err := strconv.Atoi(op.value); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(op.value, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}
	p.log.Debug("sfz: invalid integer", "opcode", op.name, "value", op.value)
	return 0
}

func (p *Parser) parseFloat(op opcode) float64 {
	f, err := strconv.ParseFloat(op.value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		p.log.Debug("sfz: invalid number", "opcode", op.name, "value", op.value)
		return 0
	}
	return f
}

// parseKey accepts MIDI numbers as well as note names such as c4, f#3, eb5.
func (p *Parser) parseKey(op opcode) int {
	if n, ok := ParseNoteName(op.value); ok {
		return n
	}
	return p.parseInt(op)
}

var pitchClasses = map[byte]int{'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11}

// ParseNoteName converts a note name such as c4, f#3 or eb5 to a MIDI number,
// using the same octave numbering as NoteName.
func ParseNoteName(s string) (int, bool) {
	s = strings.ToLower(s)
	if s == "" {
		return 0, false
	}
	pc, ok := pitchClasses[s[0]]
	if !ok {
		return 0, false
	}
	rest := s[1:]
	switch {
	case strings.HasPrefix(rest, "#"):
		pc++
		rest = rest[1:]
	case strings.HasPrefix(rest, "b") && len(rest) > 1:
		pc--
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return (octave+1)*12 + pc, true
}

func stripComments(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		switch {
		case strings.HasPrefix(text[i:], "/*"):
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			b.WriteByte(' ')
			i += end + 4
		case strings.HasPrefix(text[i:], "//"):
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				return b.String()
			}
			i += end
		default:
			b.WriteByte(text[i])
			i++
		}
	}
	return b.String()
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}
