package audio

import (
	"fmt"
	"strings"
	"sync"
)

// Backend names an output implementation.
type Backend string

const (
	BackendEbiten Backend = "ebiten"
	BackendOto    Backend = "oto"
	BackendNone   Backend = "none"
)

// Sink is a running output stream.
type Sink interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
}

// devicePlayer is the part of the ebiten and oto players a sink drives.
type devicePlayer interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
}

// deviceSink pairs a device player with the reader it pulls from.
type deviceSink struct {
	player devicePlayer
	reader *StreamReader
}

func (s *deviceSink) Play()           { s.player.Play() }
func (s *deviceSink) Pause()          { s.player.Pause() }
func (s *deviceSink) IsPlaying() bool { return s.player.IsPlaying() }

// Close stops the player and ends the stream. The reader is closed even when
// the player fails to close; the player's error wins.
func (s *deviceSink) Close() error {
	s.player.Pause()
	err := s.player.Close()
	if rerr := s.reader.Close(); err == nil {
		err = rerr
	}
	return err
}

// ParseBackend maps a configuration string to a Backend.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendEbiten, BackendOto, BackendNone:
		return b, nil
	case "":
		return BackendEbiten, nil
	default:
		return "", fmt.Errorf("audio: unknown backend %q", s)
	}
}

var (
	deviceMu    sync.Mutex
	deviceOwner Backend
)

// claimDevice records which backend owns the process-wide sound device.
// ebiten and oto cannot both open it.
func claimDevice(b Backend) error {
	deviceMu.Lock()
	defer deviceMu.Unlock()
	if deviceOwner != "" && deviceOwner != b {
		return fmt.Errorf("audio: device already opened by %s backend", deviceOwner)
	}
	deviceOwner = b
	return nil
}

// Open starts a paused stream that pulls from source at sampleRate.
func Open(backend Backend, sampleRate int, source SampleSource) (Sink, error) {
	switch backend {
	case BackendEbiten, "":
		return newEbitenSink(sampleRate, source)
	case BackendOto:
		return newOtoSink(sampleRate, source)
	case BackendNone:
		return newNullSink(sampleRate, source), nil
	default:
		return nil, fmt.Errorf("audio: unknown backend %q", backend)
	}
}
