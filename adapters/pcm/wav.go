package pcm

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	// SampleRate is the fixed capture rate for every recording in the system
	SampleRate = 44100
	// Channels is the fixed channel count (mono)
	Channels = 1
	// SampleWidth is the size of one sample in bytes (16-bit)
	SampleWidth = 2

	wavFormatPCM = 1
)

// Format describes the layout of a PCM container
type Format struct {
	Channels    int `json:"channels"`
	SampleWidth int `json:"sample_width"`
	SampleRate  int `json:"sample_rate"`
}

// DefaultFormat is the single recording format used system-wide
var DefaultFormat = Format{
	Channels:    Channels,
	SampleWidth: SampleWidth,
	SampleRate:  SampleRate,
}

// BytesPerSecond returns how many bytes one second of audio occupies
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.SampleWidth * f.Channels
}

// CodecError reports a container that could not be decoded or encoded
type CodecError struct {
	Op  string
	Err error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("pcm %s: %v", e.Op, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// IsCodecError reports whether err is, or wraps, a CodecError
func IsCodecError(err error) bool {
	var codecErr *CodecError
	return errors.As(err, &codecErr)
}

// Decode parses a 16-bit PCM WAV container and returns its raw samples.
// Channel count and sample rate are not reconciled; callers rely on every
// container sharing DefaultFormat.
func Decode(data []byte) ([]int16, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, &CodecError{Op: "decode", Err: errors.New("not a valid wav container")}
	}

	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, &CodecError{Op: "decode", Err: fmt.Errorf("unsupported audio format %d", decoder.WavAudioFormat)}
	}
	if int(decoder.BitDepth) != SampleWidth*8 {
		return nil, &CodecError{Op: "decode", Err: fmt.Errorf("unsupported bit depth %d", decoder.BitDepth)}
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, &CodecError{Op: "decode", Err: err}
	}

	samples := make([]int16, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = int16(s)
	}
	return samples, nil
}

// Encode writes samples into a WAV container with the given format
func Encode(samples []int16, format Format) ([]byte, error) {
	if format.SampleWidth != SampleWidth {
		return nil, &CodecError{Op: "encode", Err: fmt.Errorf("unsupported sample width %d", format.SampleWidth)}
	}
	if format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, &CodecError{Op: "encode", Err: fmt.Errorf("invalid format %+v", format)}
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	out := &writeSeeker{}
	encoder := wav.NewEncoder(out, format.SampleRate, format.SampleWidth*8, format.Channels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: format.Channels,
			SampleRate:  format.SampleRate,
		},
		Data:           data,
		SourceBitDepth: format.SampleWidth * 8,
	}

	if err := encoder.Write(buf); err != nil {
		return nil, &CodecError{Op: "encode", Err: err}
	}
	if err := encoder.Close(); err != nil {
		return nil, &CodecError{Op: "encode", Err: err}
	}
	return out.Bytes(), nil
}

// writeSeeker is an in-memory io.WriteSeeker; the wav encoder seeks back to
// patch chunk sizes when it is closed.
type writeSeeker struct {
	buf []byte
	pos int
}

func (w *writeSeeker) Write(p []byte) (int, error) {
	end := w.pos + len(p)
	if end > len(w.buf) {
		w.buf = append(w.buf, make([]byte, end-len(w.buf))...)
	}
	copy(w.buf[w.pos:end], p)
	w.pos = end
	return len(p), nil
}

func (w *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(w.pos) + offset
	case io.SeekEnd:
		abs = int64(len(w.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, errors.New("negative seek position")
	}
	w.pos = int(abs)
	return abs, nil
}

func (w *writeSeeker) Bytes() []byte {
	return w.buf
}
