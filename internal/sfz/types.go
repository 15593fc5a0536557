package sfz

import "github.com/cbegin/sfzpad-go/internal/sample"

// NoKey marks a region without an exact key opcode.
const NoKey = -1

type LoopMode int

const (
	LoopNone LoopMode = iota
	LoopContinuous
	LoopSustain
	LoopOneShot
)

func (m LoopMode) String() string {
	switch m {
	case LoopContinuous:
		return "loop_continuous"
	case LoopSustain:
		return "loop_sustain"
	case LoopOneShot:
		return "one_shot"
	default:
		return "no_loop"
	}
}

// Region maps a key/velocity range to a sample and its playback parameters.
// Times are in seconds, Sustain in percent, Volume in dB, Tune in cents.
type Region struct {
	Sample         string
	Offset         int
	End            int
	LoKey          int
	HiKey          int
	Key            int
	LoVel          int
	HiVel          int
	PitchKeycenter int
	Tune           int
	Transpose      int
	Volume         float64
	Pan            float64
	LoopMode       LoopMode
	LoopStart      int
	LoopEnd        int
	Attack         float64
	Hold           float64
	Decay          float64
	Sustain        float64
	Release        float64
	PitchLFOFreq   float64 // Hz
	PitchLFODepth  float64 // cents
	PitchLFOWave   int
	AmpLFOFreq     float64 // Hz
	AmpLFODepth    float64 // dB
	AmpLFOWave     int
	Label          string
}

// NewRegion returns a region carrying the format's defaults.
func NewRegion() Region {
	return Region{
		LoKey:          0,
		HiKey:          127,
		Key:            NoKey,
		LoVel:          1,
		HiVel:          127,
		PitchKeycenter: 60,
		Sustain:        100,
	}
}

// Metadata holds provenance fields found in the leading comment block.
type Metadata struct {
	InternalName       string
	SoundEngineer      string
	CreationDate       string
	ParentFile         string
	SoundfontVersion   string
	Editor             string
	Converter          string
	ConverterCopyright string
	ConversionDate     string
	OptimisedFor       string
	IntendedFor        string
}

// Instrument is a parsed instrument definition plus its decoded sample cache.
// The cache is filled by a loader before the instrument is handed to an
// engine; afterwards the instrument is treated as read-only.
type Instrument struct {
	Name          string
	BasePath      string
	DefaultPath   string
	DefaultSample string
	Regions       []Region
	Metadata      Metadata
	Samples       map[string]*sample.Buffer
}
