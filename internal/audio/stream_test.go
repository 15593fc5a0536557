package audio

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync/atomic"
	"testing"
	"time"
)

type rampSource struct{ n float32 }

func (s *rampSource) Process(dst []float32) {
	for i := range dst {
		dst[i] = s.n
		s.n++
	}
}

type finiteSource struct {
	rampSource
	left int
}

func (s *finiteSource) Process(dst []float32) {
	s.rampSource.Process(dst)
	s.left -= len(dst) / channelCount
}

func (s *finiteSource) Finished() bool { return s.left <= 0 }

func TestStreamReaderEncodesFloat32LE(t *testing.T) {
	r := NewStreamReader(&rampSource{})
	p := make([]byte, 3*bytesPerFrame+5)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 3*bytesPerFrame {
		t.Fatalf("n = %d, want %d", n, 3*bytesPerFrame)
	}
	for i := 0; i < 6; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		if got != float32(i) {
			t.Fatalf("sample %d = %f", i, got)
		}
	}

	if n, err := r.Read(make([]byte, 7)); n != 0 || err != nil {
		t.Fatalf("short read = %d, %v", n, err)
	}
}

func TestStreamReaderEOF(t *testing.T) {
	r := NewStreamReader(&finiteSource{left: 4})
	p := make([]byte, 2*bytesPerFrame)
	if _, err := r.Read(p); err != nil {
		t.Fatalf("first read: %v", err)
	}
	if _, err := r.Read(p); err != io.EOF {
		t.Fatalf("second read err = %v, want EOF", err)
	}

	r = NewStreamReader(&rampSource{})
	r.Close()
	if _, err := r.Read(p); err != io.EOF {
		t.Fatalf("read after close err = %v, want EOF", err)
	}
}

func TestParseBackend(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{"", BackendEbiten, false},
		{"ebiten", BackendEbiten, false},
		{" OTO ", BackendOto, false},
		{"none", BackendNone, false},
		{"alsa", "", true},
	} {
		got, err := ParseBackend(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Fatalf("ParseBackend(%q) = %q, %v", tc.in, got, err)
		}
	}
	if _, err := Open(Backend("alsa"), 44100, &rampSource{}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestNullSinkDrainsSource(t *testing.T) {
	var pulled atomic.Int64
	src := SampleSourceFunc(func(dst []float32) { pulled.Add(int64(len(dst))) })
	s, err := Open(BackendNone, 48000, src)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.Play()
	if !s.IsPlaying() {
		t.Fatalf("sink should report playing")
	}
	deadline := time.Now().Add(2 * time.Second)
	for pulled.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if pulled.Load() == 0 {
		t.Fatalf("source was never pulled")
	}
	s.Pause()
	if s.IsPlaying() {
		t.Fatalf("sink should be paused")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

type stubPlayer struct {
	playing  bool
	closeErr error
}

func (p *stubPlayer) Play()           { p.playing = true }
func (p *stubPlayer) Pause()          { p.playing = false }
func (p *stubPlayer) IsPlaying() bool { return p.playing }
func (p *stubPlayer) Close() error    { return p.closeErr }

func TestDeviceSinkCloseReportsPlayerError(t *testing.T) {
	closeErr := errors.New("device gone")
	reader := NewStreamReader(&rampSource{})
	s := &deviceSink{player: &stubPlayer{closeErr: closeErr}, reader: reader}
	s.Play()
	if !s.IsPlaying() {
		t.Fatalf("sink should be playing")
	}
	if err := s.Close(); !errors.Is(err, closeErr) {
		t.Fatalf("close error = %v, want %v", err, closeErr)
	}
	if s.IsPlaying() {
		t.Fatalf("close should pause the player")
	}
	if _, err := reader.Read(make([]byte, 8)); err != io.EOF {
		t.Fatalf("reader should be closed after a failed player close, got %v", err)
	}

	ok := &deviceSink{player: &stubPlayer{}, reader: NewStreamReader(&rampSource{})}
	if err := ok.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
