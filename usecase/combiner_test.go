package usecase

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/voxtag/adapters/pcm"
	"github.com/satriahrh/voxtag/adapters/storage"
	"github.com/satriahrh/voxtag/domain/entities"
)

func newTestCombiner(t *testing.T, store *storage.MemoryStorage, cfg CombinerConfig) *Combiner {
	t.Helper()
	return NewCombiner(store, cfg, nil, zaptest.NewLogger(t))
}

func TestCombineSumsSampleCounts(t *testing.T) {
	registry, store := newTestRegistry(t)
	combiner := newTestCombiner(t, store, CombinerConfig{})

	a, _ := registry.Create(ctxBG(), wavOf(t, constSamples(100, 1)), "")
	b, _ := registry.Create(ctxBG(), wavOf(t, constSamples(250, 2)), "")

	combined, err := combiner.Combine(ctxBG(), registry, []string{a.ID, b.ID})
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	if combined.SampleCount != 350 {
		t.Errorf("Expected 350 samples, got %d", combined.SampleCount)
	}

	decoded, err := pcm.Decode(combined.Data)
	if err != nil {
		t.Fatalf("Combined output does not decode: %v", err)
	}
	if len(decoded) != 350 {
		t.Fatalf("Expected 350 decoded samples, got %d", len(decoded))
	}
	if decoded[99] != 1 || decoded[100] != 2 {
		t.Errorf("Expected boundary 1|2, got %d|%d", decoded[99], decoded[100])
	}
	if !entities.IsCombinedFilename(combined.Filename) {
		t.Errorf("Unexpected combined filename %s", combined.Filename)
	}
	if combined.Duration != 350.0/pcm.SampleRate {
		t.Errorf("Unexpected duration %f", combined.Duration)
	}
}

func TestCombineHonoursCallerOrderWithRepeats(t *testing.T) {
	registry, store := newTestRegistry(t)
	combiner := newTestCombiner(t, store, CombinerConfig{})

	a, _ := registry.Create(ctxBG(), wavOf(t, []int16{1, 1}), "")
	b, _ := registry.Create(ctxBG(), wavOf(t, []int16{2, 2, 2}), "")

	combined, err := combiner.Combine(ctxBG(), registry, []string{a.ID, b.ID, a.ID})
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	decoded, _ := pcm.Decode(combined.Data)
	want := []int16{1, 1, 2, 2, 2, 1, 1}
	if len(decoded) != len(want) {
		t.Fatalf("Expected %v, got %v", want, decoded)
	}
	for i := range want {
		if decoded[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, decoded)
		}
	}
	assertIDs(t, combined.SourceIDs, []string{a.ID, b.ID, a.ID})
}

func TestCombineEmptyRequest(t *testing.T) {
	registry, store := newTestRegistry(t)
	combiner := newTestCombiner(t, store, CombinerConfig{})

	for _, ids := range [][]string{nil, {}} {
		if _, err := combiner.Combine(ctxBG(), registry, ids); !errors.Is(err, entities.ErrNoSelection) {
			t.Errorf("Expected ErrNoSelection for %v, got %v", ids, err)
		}
	}
}

func TestCombineNoValidSegments(t *testing.T) {
	registry, store := newTestRegistry(t)
	combiner := newTestCombiner(t, store, CombinerConfig{})

	corrupt, _ := registry.Create(ctxBG(), []byte("garbage"), "")

	cases := map[string][]string{
		"unknown": {"unknown"},
		"corrupt": {corrupt.ID},
		"mixed":   {"unknown", corrupt.ID, "unknown"},
	}
	for name, ids := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := combiner.Combine(ctxBG(), registry, ids)
			if !errors.Is(err, entities.ErrNoValidSegments) {
				t.Errorf("Expected ErrNoValidSegments, got %v", err)
			}
		})
	}

	if store.Len() != 1 {
		t.Errorf("Expected no combined output to be stored, got %d blobs", store.Len())
	}
}

func TestCombineSkipsMissingSegments(t *testing.T) {
	registry, store := newTestRegistry(t)
	combiner := newTestCombiner(t, store, CombinerConfig{})

	a, _ := registry.Create(ctxBG(), wavOf(t, constSamples(10, 3)), "")
	gone, _ := registry.Create(ctxBG(), wavOf(t, constSamples(10, 4)), "")
	// audio vanishes from storage while the record stays
	store.Delete(ctxBG(), gone.Filename)

	combined, err := combiner.Combine(ctxBG(), registry, []string{"unknown", a.ID, gone.ID})
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	if combined.SampleCount != 10 {
		t.Errorf("Expected 10 samples, got %d", combined.SampleCount)
	}
	assertIDs(t, combined.SourceIDs, []string{a.ID})
	assertIDs(t, combined.SkippedIDs, []string{"unknown", gone.ID})
}

func TestCombineLimits(t *testing.T) {
	registry, store := newTestRegistry(t)
	a, _ := registry.Create(ctxBG(), wavOf(t, constSamples(pcm.SampleRate, 1)), "")
	b, _ := registry.Create(ctxBG(), wavOf(t, constSamples(10, 1)), "")

	t.Run("segments", func(t *testing.T) {
		combiner := newTestCombiner(t, store, CombinerConfig{MaxSegments: 2})
		_, err := combiner.Combine(ctxBG(), registry, []string{a.ID, b.ID, a.ID})
		if !errors.Is(err, entities.ErrTooManySegments) {
			t.Errorf("Expected ErrTooManySegments, got %v", err)
		}
	})

	t.Run("duration", func(t *testing.T) {
		combiner := newTestCombiner(t, store, CombinerConfig{MaxDuration: time.Second})
		if _, err := combiner.Combine(ctxBG(), registry, []string{a.ID}); err != nil {
			t.Fatalf("Expected exactly one second to fit, got %v", err)
		}
		_, err := combiner.Combine(ctxBG(), registry, []string{a.ID, b.ID})
		if !errors.Is(err, entities.ErrCombinedTooLong) {
			t.Errorf("Expected ErrCombinedTooLong, got %v", err)
		}
	})
}

func TestCombinerGet(t *testing.T) {
	registry, store := newTestRegistry(t)
	combiner := newTestCombiner(t, store, CombinerConfig{})

	a, _ := registry.Create(ctxBG(), wavOf(t, []int16{5, 6}), "")
	combined, err := combiner.Combine(ctxBG(), registry, []string{a.ID})
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	data, err := combiner.Get(ctxBG(), combined.Filename)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != string(combined.Data) {
		t.Error("Expected stored bytes to match combined output")
	}

	for _, name := range []string{a.Filename, "combined_missing.wav", "../etc/passwd", "combined_.wav"} {
		if _, err := combiner.Get(ctxBG(), name); !errors.Is(err, entities.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for %q, got %v", name, err)
		}
	}
}

func TestCombineData(t *testing.T) {
	store := storage.NewMemoryStorage()
	combiner := newTestCombiner(t, store, CombinerConfig{})

	combined, err := combiner.CombineData(ctxBG(), [][]byte{
		wavOf(t, []int16{1, 2}),
		[]byte("broken"),
		wavOf(t, []int16{3}),
	})
	if err != nil {
		t.Fatalf("CombineData failed: %v", err)
	}

	decoded, _ := pcm.Decode(combined.Data)
	if len(decoded) != 3 || decoded[0] != 1 || decoded[2] != 3 {
		t.Errorf("Expected [1 2 3], got %v", decoded)
	}
	assertIDs(t, combined.SourceIDs, []string{"0", "2"})
	assertIDs(t, combined.SkippedIDs, []string{"1"})

	if _, err := combiner.CombineData(ctxBG(), nil); !errors.Is(err, entities.ErrNoSelection) {
		t.Errorf("Expected ErrNoSelection, got %v", err)
	}
}
