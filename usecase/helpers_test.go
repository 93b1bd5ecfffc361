package usecase

import (
	"context"
	"os"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/voxtag/adapters/pcm"
	"github.com/satriahrh/voxtag/adapters/storage"
	"github.com/satriahrh/voxtag/domain/repositories"
)

func newTestRegistry(t *testing.T) (*Registry, *storage.MemoryStorage) {
	t.Helper()
	store := storage.NewMemoryStorage()
	return NewRegistry(store, nil, zaptest.NewLogger(t)), store
}

func wavOf(t *testing.T, samples []int16) []byte {
	t.Helper()
	data, err := pcm.Encode(samples, pcm.DefaultFormat)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return data
}

func constSamples(n int, value int16) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// fakeSTT records calls and returns a canned result
type fakeSTT struct {
	mu         sync.Mutex
	calls      int
	paths      []string
	existed    []bool
	payloads   [][]byte
	result     repositories.TranscriptResult
	err        error
	blockOnCtx bool
}

func (f *fakeSTT) Transcribe(ctx context.Context, audioPath string, apiKey string) (repositories.TranscriptResult, error) {
	data, readErr := os.ReadFile(audioPath)

	f.mu.Lock()
	f.calls++
	f.paths = append(f.paths, audioPath)
	f.existed = append(f.existed, readErr == nil)
	f.payloads = append(f.payloads, data)
	f.mu.Unlock()

	if f.blockOnCtx {
		<-ctx.Done()
		return repositories.TranscriptResult{}, ctx.Err()
	}
	return f.result, f.err
}

func (f *fakeSTT) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(sessionID string, event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

var _ repositories.SpeechToText = (*fakeSTT)(nil)
var _ EventPublisher = (*recordingPublisher)(nil)

func ctxBG() context.Context { return context.Background() }
