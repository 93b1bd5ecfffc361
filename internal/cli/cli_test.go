package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/satriahrh/voxtag/adapters/pcm"
)

func writeClip(t *testing.T, dir, name string, samples ...int16) string {
	t.Helper()
	data, err := pcm.Encode(samples, pcm.DefaultFormat)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCombineCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeClip(t, dir, "a.wav", 1, 2)
	b := writeClip(t, dir, "b.wav", 3)
	broken := filepath.Join(dir, "broken.wav")
	os.WriteFile(broken, []byte("nope"), 0o644)
	out := filepath.Join(dir, "out.wav")

	stdout, stderr, err := run(t, "combine", "-o", out, a, broken, b)
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}
	if !strings.Contains(stdout, "2 clips") {
		t.Errorf("Unexpected output %q", stdout)
	}
	if !strings.Contains(stderr, "broken.wav") {
		t.Errorf("Expected skipped input to be reported, got %q", stderr)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	samples, err := pcm.Decode(data)
	if err != nil || len(samples) != 3 {
		t.Errorf("Expected 3 samples, got %v (%v)", samples, err)
	}
}

func TestCombineCommandNothingValid(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.wav")
	os.WriteFile(broken, []byte("nope"), 0o644)

	if _, _, err := run(t, "combine", "-o", filepath.Join(dir, "out.wav"), broken); err == nil {
		t.Error("Expected error when no input decodes")
	}
}

func TestTranscribeCommandWithMockBackend(t *testing.T) {
	clip := writeClip(t, t.TempDir(), "clip.wav", make([]int16, pcm.SampleRate)...)

	stdout, _, err := run(t, "transcribe", "--backend", "mock", clip)
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if !strings.Contains(stdout, "1.0 second") {
		t.Errorf("Unexpected transcript %q", stdout)
	}
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn"} {
		if _, err := NewLogger(level); err != nil {
			t.Errorf("NewLogger(%s) failed: %v", level, err)
		}
	}
	if _, err := NewLogger("loud"); err == nil {
		t.Error("Expected error for unknown level")
	}
}
