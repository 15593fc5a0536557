package sample

import "fmt"

// FormatError reports a container that is not a usable RIFF/WAVE stream.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "sample: invalid wav: " + e.Reason
}

// UnsupportedFormatError reports a fmt chunk whose codec is not integer PCM.
type UnsupportedFormatError struct {
	Code uint16
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("sample: unsupported wav format code %d (only PCM is supported)", e.Code)
}

// UnsupportedBitDepthError reports a PCM bit depth other than 16, 24 or 32.
type UnsupportedBitDepthError struct {
	Bits int
}

func (e *UnsupportedBitDepthError) Error() string {
	return fmt.Sprintf("sample: unsupported bit depth %d", e.Bits)
}
