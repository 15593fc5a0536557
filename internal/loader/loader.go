// Package loader fills an instrument's sample cache from disk.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/h2non/filetype"
	"golang.org/x/sync/errgroup"

	"github.com/cbegin/sfzpad-go/internal/sample"
	"github.com/cbegin/sfzpad-go/internal/sfz"
)

// ErrNotWAV is returned for sample files whose content is not RIFF/WAVE.
var ErrNotWAV = errors.New("loader: not a WAV file")

// SampleError reports a sample file that could not be loaded.
type SampleError struct {
	Path string
	Err  error
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("loader: %s: %v", e.Path, e.Err)
}

func (e *SampleError) Unwrap() error { return e.Err }

// Options controls Load.
type Options struct {
	// Concurrency bounds the number of files decoded at once. Zero means
	// one per CPU.
	Concurrency int
	Logger      *slog.Logger
}

// Load reads and decodes every sample referenced by inst and stores the
// results in its cache. Files that fail are skipped; their errors are joined
// into the returned error and the rest of the cache is still filled.
func Load(ctx context.Context, inst *sfz.Instrument, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	var (
		mu      sync.Mutex
		decoded = make(map[string]*sample.Buffer)
		errs    []error
	)
	g := new(errgroup.Group)
	g.SetLimit(limit)
	for _, path := range inst.SamplePaths() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			buf, err := loadFile(path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn("sample skipped", "path", path, "err", err)
				errs = append(errs, &SampleError{Path: path, Err: err})
				return nil
			}
			log.Debug("sample decoded", "path", path, "frames", buf.Frames(), "rate", buf.SampleRate, "channels", buf.Channels)
			decoded[path] = buf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}

	for path, buf := range decoded {
		inst.SetSample(path, buf)
	}
	return errors.Join(errs...)
}

func loadFile(path string) (*sample.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !filetype.Is(data, "wav") {
		return nil, ErrNotWAV
	}
	return sample.Decode(data)
}

// LoadFile parses an instrument file and loads its samples. The instrument is
// returned even when some samples failed.
func LoadFile(ctx context.Context, path string, opts Options) (*sfz.Instrument, error) {
	p := sfz.NewParser(sfz.ParserConfig{Logger: opts.Logger})
	inst, err := p.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return inst, Load(ctx, inst, opts)
}
