package pcm

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := map[string][]int16{
		"single":   {42},
		"extremes": {math.MinInt16, -1, 0, 1, math.MaxInt16},
		"ramp":     ramp(2048),
	}

	for name, samples := range cases {
		t.Run(name, func(t *testing.T) {
			data, err := Encode(samples, DefaultFormat)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			decoded, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			if len(decoded) != len(samples) {
				t.Fatalf("Expected %d samples, got %d", len(samples), len(decoded))
			}
			for i := range samples {
				if decoded[i] != samples[i] {
					t.Fatalf("Sample %d mismatch: expected %d, got %d", i, samples[i], decoded[i])
				}
			}
		})
	}
}

func TestEncodeWritesCanonicalHeader(t *testing.T) {
	samples := ramp(100)
	data, err := Encode(samples, DefaultFormat)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if len(data) != 44+len(samples)*SampleWidth {
		t.Fatalf("Expected %d bytes, got %d", 44+len(samples)*SampleWidth, len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("Missing RIFF/WAVE markers: %q", data[:12])
	}
	if got := binary.LittleEndian.Uint32(data[4:8]); int(got) != len(data)-8 {
		t.Errorf("Expected riff size %d, got %d", len(data)-8, got)
	}
	if got := binary.LittleEndian.Uint16(data[22:24]); got != Channels {
		t.Errorf("Expected %d channel, got %d", Channels, got)
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != SampleRate {
		t.Errorf("Expected sample rate %d, got %d", SampleRate, got)
	}
	if got := binary.LittleEndian.Uint16(data[34:36]); got != 16 {
		t.Errorf("Expected 16 bits per sample, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(data[40:44]); int(got) != len(samples)*SampleWidth {
		t.Errorf("Expected data size %d, got %d", len(samples)*SampleWidth, got)
	}
}

func TestDecodeMalformed(t *testing.T) {
	inputs := map[string][]byte{
		"empty":    nil,
		"garbage":  []byte("definitely not a wav container"),
		"riffonly": []byte("RIFF\x04\x00\x00\x00WAVE"),
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(input)
			if err == nil {
				t.Fatal("Expected error for malformed input")
			}
			if !IsCodecError(err) {
				t.Errorf("Expected CodecError, got %T: %v", err, err)
			}
		})
	}
}

func TestEncodeRejectsUnsupportedWidth(t *testing.T) {
	_, err := Encode([]int16{1, 2, 3}, Format{Channels: 1, SampleWidth: 3, SampleRate: SampleRate})
	var codecErr *CodecError
	if !errors.As(err, &codecErr) {
		t.Fatalf("Expected CodecError, got %v", err)
	}
	if codecErr.Op != "encode" {
		t.Errorf("Expected op encode, got %s", codecErr.Op)
	}
}

func TestWriteSeekerPatchesEarlierBytes(t *testing.T) {
	w := &writeSeeker{}
	w.Write([]byte("abcdef"))
	if _, err := w.Seek(2, 0); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	w.Write([]byte("XY"))
	if _, err := w.Seek(0, 2); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	w.Write([]byte("!"))

	if got := string(w.Bytes()); got != "abXYef!" {
		t.Errorf("Expected abXYef!, got %s", got)
	}
	if _, err := w.Seek(-100, 1); err == nil {
		t.Error("Expected error for negative seek")
	}
}

func TestBytesPerSecond(t *testing.T) {
	if got := DefaultFormat.BytesPerSecond(); got != 88200 {
		t.Errorf("Expected 88200, got %d", got)
	}
}

func ramp(n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16((i*37)%65536 - 32768)
	}
	return out
}
