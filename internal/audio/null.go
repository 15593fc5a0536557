package audio

import (
	"io"
	"sync"
	"time"
)

const nullBlockFrames = 512

// nullSink drains the source in real time without a device, so voices still
// advance on machines with no sound output.
type nullSink struct {
	reader   *StreamReader
	interval time.Duration

	mu      sync.Mutex
	playing bool
	stop    chan struct{}
	done    chan struct{}
}

func newNullSink(sampleRate int, source SampleSource) *nullSink {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	return &nullSink{
		reader:   NewStreamReader(source),
		interval: time.Duration(nullBlockFrames) * time.Second / time.Duration(sampleRate),
	}
}

func (s *nullSink) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		return
	}
	s.playing = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
}

func (s *nullSink) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	p := make([]byte, nullBlockFrames*bytesPerFrame)
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if _, err := s.reader.Read(p); err == io.EOF {
				s.mu.Lock()
				s.playing = false
				s.mu.Unlock()
				return
			}
		}
	}
}

func (s *nullSink) Pause() {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return
	}
	s.playing = false
	stop, done := s.stop, s.done
	s.mu.Unlock()
	close(stop)
	<-done
}

func (s *nullSink) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *nullSink) Close() error {
	s.Pause()
	return s.reader.Close()
}
