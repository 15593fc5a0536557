// Package sample decodes RIFF/WAVE PCM data into normalized float buffers.
package sample

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/go-audio/riff"
)

var (
	waveID = [4]byte{'W', 'A', 'V', 'E'}
	fmtID  = [4]byte{'f', 'm', 't', ' '}
	dataID = [4]byte{'d', 'a', 't', 'a'}
)

const formatPCM = 1

type format struct {
	code          uint16
	channels      int
	sampleRate    int
	bitsPerSample int
}

// Decode decodes a complete WAV file held in memory.
func Decode(data []byte) (*Buffer, error) {
	return DecodeReader(bytes.NewReader(data))
}

// DecodeSlice decodes data and keeps only frames [offsetFrames, endFrames]
// (inclusive). endFrames < 0 means through the last frame. A range that
// selects no frames yields an empty buffer, not an error.
func DecodeSlice(data []byte, offsetFrames, endFrames int) (*Buffer, error) {
	buf, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return buf.Slice(offsetFrames, endFrames), nil
}

// DecodeReader decodes a WAV stream. Decoding is all-or-nothing: on error no
// buffer is returned.
func DecodeReader(r io.Reader) (*Buffer, error) {
	p := riff.New(r)
	if err := p.ParseHeaders(); err != nil {
		return nil, &FormatError{Reason: "missing RIFF header"}
	}
	if p.Format != waveID {
		return nil, &FormatError{Reason: "missing WAVE format tag"}
	}

	var (
		fmtc    *format
		raw     []byte
		hasData bool
	)
	for {
		ch, err := p.NextChunk()
		if err != nil {
			// io.EOF ends the chunk list; a partial chunk header is trailing junk.
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, &FormatError{Reason: err.Error()}
		}
		switch ch.ID {
		case fmtID:
			f, err := readFormat(ch)
			if err != nil {
				return nil, err
			}
			fmtc = f
		case dataID:
			raw, err = readData(ch)
			if err != nil {
				return nil, &FormatError{Reason: "reading data chunk: " + err.Error()}
			}
			hasData = true
		}
		ch.Done()
	}

	if fmtc == nil {
		return nil, &FormatError{Reason: "missing fmt chunk"}
	}
	if !hasData {
		return nil, &FormatError{Reason: "missing data chunk"}
	}
	samples, err := convert(raw, fmtc.bitsPerSample)
	if err != nil {
		return nil, err
	}
	// Drop a trailing partial frame so Samples always holds whole frames.
	samples = samples[:len(samples)-len(samples)%fmtc.channels]
	return &Buffer{
		Samples:    samples,
		SampleRate: fmtc.sampleRate,
		Channels:   fmtc.channels,
	}, nil
}

// readData reads at most the declared chunk size, so a lying header cannot
// force a large allocation. A zero size (streaming writers use 0xFFFFFFFF,
// which the RIFF parser's odd-size padding wraps to 0) reads to end of input.
func readData(ch *riff.Chunk) ([]byte, error) {
	var r io.Reader = ch
	if ch.Size > 0 {
		r = io.LimitReader(ch, int64(ch.Size))
	}
	raw, err := io.ReadAll(r)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return raw, nil
}

func readFormat(ch *riff.Chunk) (*format, error) {
	if ch.Size < 16 {
		return nil, &FormatError{Reason: "fmt chunk too short"}
	}
	// Anything past the 16 PCM bytes (cbSize, extension) is skipped by Done.
	hdr := make([]byte, 16)
	if _, err := io.ReadFull(ch, hdr); err != nil {
		return nil, &FormatError{Reason: "reading fmt chunk: " + err.Error()}
	}
	f := &format{
		code:          binary.LittleEndian.Uint16(hdr[0:]),
		channels:      int(binary.LittleEndian.Uint16(hdr[2:])),
		sampleRate:    int(binary.LittleEndian.Uint32(hdr[4:])),
		bitsPerSample: int(binary.LittleEndian.Uint16(hdr[14:])),
	}
	if f.code != formatPCM {
		return nil, &UnsupportedFormatError{Code: f.code}
	}
	if f.channels == 0 {
		return nil, &FormatError{Reason: "fmt chunk declares zero channels"}
	}
	return f, nil
}

func convert(raw []byte, bits int) ([]float32, error) {
	switch bits {
	case 16:
		out := make([]float32, len(raw)/2)
		for i := range out {
			v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
			out[i] = float32(v) / 32768
		}
		return out, nil
	case 24:
		out := make([]float32, len(raw)/3)
		for i := range out {
			b := raw[i*3:]
			v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			if v&0x800000 != 0 {
				v |= ^0xFFFFFF
			}
			out[i] = float32(v) / 8388608
		}
		return out, nil
	case 32:
		out := make([]float32, len(raw)/4)
		for i := range out {
			v := int32(binary.LittleEndian.Uint32(raw[i*4:]))
			out[i] = float32(float64(v) / 2147483648)
		}
		return out, nil
	default:
		return nil, &UnsupportedBitDepthError{Bits: bits}
	}
}

// Slice returns a copy of frames [offsetFrames, endFrames] (inclusive),
// clamped to the buffer. endFrames < 0 selects through the last frame.
func (b *Buffer) Slice(offsetFrames, endFrames int) *Buffer {
	total := b.Frames()
	start := max(0, offsetFrames)
	end := total - 1
	if endFrames >= 0 {
		end = min(endFrames, total-1)
	}
	out := &Buffer{SampleRate: b.SampleRate, Channels: b.Channels}
	count := end - start + 1
	if count <= 0 {
		out.Samples = []float32{}
		return out
	}
	out.Samples = make([]float32, count*b.Channels)
	copy(out.Samples, b.Samples[start*b.Channels:(end+1)*b.Channels])
	return out
}
