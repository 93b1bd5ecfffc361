package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/voxtag/adapters/pcm"
	"github.com/satriahrh/voxtag/domain/entities"
	"github.com/satriahrh/voxtag/domain/repositories"
	"github.com/satriahrh/voxtag/internal/telemetry"
)

// Registry is the ordered, in-memory collection of one session's recordings.
// A single RWMutex serialises every mutation; readers receive copies.
type Registry struct {
	mu         sync.RWMutex
	recordings map[string]*entities.Recording
	order      []string // insertion order
	selection  []string // selection order

	storage repositories.BlobStorage
	metrics *telemetry.Metrics
	logger  *zap.Logger
	clock   func() time.Time
}

// NewRegistry creates an empty registry persisting audio through storage
func NewRegistry(storage repositories.BlobStorage, metrics *telemetry.Metrics, logger *zap.Logger) *Registry {
	return &Registry{
		recordings: make(map[string]*entities.Recording),
		storage:    storage,
		metrics:    metrics,
		logger:     logger,
		clock:      time.Now,
	}
}

// Create stores raw audio as a new recording. An empty tag means the default
// tag. Undecodable audio is still stored, with a duration of 0.
func (r *Registry) Create(ctx context.Context, raw []byte, tag entities.Tag) (*entities.Recording, error) {
	if tag == "" {
		tag = entities.DefaultTag
	}
	if !tag.Valid() {
		return nil, fmt.Errorf("%w: %q", entities.ErrInvalidTag, tag)
	}

	rec := entities.NewRecording(r.clock())
	rec.Tag = tag

	if _, err := pcm.Decode(raw); err != nil {
		r.logger.Warn("Recording is not a decodable container, duration left at 0",
			zap.String("id", rec.ID),
			zap.Int("size", len(raw)),
			zap.Error(err))
	} else {
		rec.Duration = float64(len(raw)) / float64(pcm.SampleRate*pcm.SampleWidth)
	}

	if err := r.storage.Put(ctx, rec.Filename, raw); err != nil {
		return nil, fmt.Errorf("failed to persist recording: %w", err)
	}

	r.mu.Lock()
	r.recordings[rec.ID] = rec
	r.order = append(r.order, rec.ID)
	r.mu.Unlock()

	r.metrics.RecordingCreated(ctx)
	r.logger.Info("Recording created",
		zap.String("id", rec.ID),
		zap.String("tag", string(rec.Tag)),
		zap.Float64("duration", rec.Duration))

	copied := *rec
	return &copied, nil
}

// Get returns a copy of the recording with the given id
func (r *Registry) Get(id string) (*entities.Recording, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.recordings[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", entities.ErrNotFound, id)
	}
	copied := *rec
	return &copied, nil
}

// List returns copies of all recordings in insertion order
func (r *Registry) List() []*entities.Recording {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entities.Recording, 0, len(r.order))
	for _, id := range r.order {
		copied := *r.recordings[id]
		result = append(result, &copied)
	}
	return result
}

// Len returns the number of recordings
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// SetTag changes a recording's tag; the stored tag is unchanged on failure
func (r *Registry) SetTag(id string, tag entities.Tag) error {
	if !tag.Valid() {
		return fmt.Errorf("%w: %q", entities.ErrInvalidTag, tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.recordings[id]
	if !exists {
		return fmt.Errorf("%w: %s", entities.ErrNotFound, id)
	}
	rec.Tag = tag

	r.logger.Info("Recording tagged", zap.String("id", id), zap.String("tag", string(tag)))
	return nil
}

// SetSelected marks or unmarks a recording for combining
func (r *Registry) SetSelected(id string, selected bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.recordings[id]
	if !exists {
		return fmt.Errorf("%w: %s", entities.ErrNotFound, id)
	}

	if selected && !rec.Selected {
		r.selection = append(r.selection, id)
	}
	if !selected && rec.Selected {
		r.selection = removeID(r.selection, id)
	}
	rec.Selected = selected
	return nil
}

// SetTranscript records the transcription result; it may be set only once
func (r *Registry) SetTranscript(id string, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.recordings[id]
	if !exists {
		return fmt.Errorf("%w: %s", entities.ErrNotFound, id)
	}
	if err := rec.SetTranscript(text); err != nil {
		return fmt.Errorf("recording %s: %w", id, err)
	}
	return nil
}

// Delete removes a recording and its stored audio. Unknown ids are ignored.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	rec, exists := r.recordings[id]
	if exists {
		delete(r.recordings, id)
		r.order = removeID(r.order, id)
		r.selection = removeID(r.selection, id)
	}
	r.mu.Unlock()

	if !exists {
		return nil
	}

	if err := r.storage.Delete(ctx, rec.Filename); err != nil {
		r.logger.Warn("Failed to delete recording audio",
			zap.String("id", id),
			zap.String("filename", rec.Filename),
			zap.Error(err))
	}

	r.logger.Info("Recording deleted", zap.String("id", id))
	return nil
}

// Clear deletes every recording, used when a session ends
func (r *Registry) Clear(ctx context.Context) {
	r.mu.RLock()
	ids := append([]string(nil), r.order...)
	r.mu.RUnlock()

	for _, id := range ids {
		_ = r.Delete(ctx, id)
	}
}

// ListSelected returns the selected recordings in the order they were selected
func (r *Registry) ListSelected() []*entities.Recording {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entities.Recording, 0, len(r.selection))
	for _, id := range r.selection {
		copied := *r.recordings[id]
		result = append(result, &copied)
	}
	return result
}

// SelectedIDs returns the ids of ListSelected
func (r *Registry) SelectedIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.selection...)
}

// Audio returns the stored container of a recording
func (r *Registry) Audio(ctx context.Context, id string) ([]byte, error) {
	filename, ok := r.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrNotFound, id)
	}

	data, err := r.storage.Get(ctx, filename)
	if errors.Is(err, repositories.ErrBlobNotFound) {
		return nil, fmt.Errorf("%w: audio for %s", entities.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recording audio: %w", err)
	}
	return data, nil
}

// Lookup resolves a recording id to its storage key
func (r *Registry) Lookup(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.recordings[id]
	if !exists {
		return "", false
	}
	return rec.Filename, true
}

func removeID(ids []string, id string) []string {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
