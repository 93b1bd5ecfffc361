package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/voxtag/domain/entities"
)

// Event types published to session subscribers
const (
	EventRecordingCreated     = "recording_created"
	EventRecordingTranscribed = "recording_transcribed"
	EventRecordingsCombined   = "recordings_combined"
)

// Event notifies a session about a change to its recordings
type Event struct {
	Type        string    `json:"type"`
	SessionID   string    `json:"session_id"`
	RecordingID string    `json:"recording_id,omitempty"`
	Transcript  string    `json:"transcript,omitempty"`
	Filename    string    `json:"filename,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// EventPublisher delivers events to the subscribers of a session
type EventPublisher interface {
	Publish(sessionID string, event Event)
}

// SaveRequest is the input of RecordingService.Save
type SaveRequest struct {
	SessionID string
	Registry  *Registry
	Audio     []byte
	Tag       entities.Tag
	APIKey    string
}

// RecordingService stores new recordings and attaches their transcripts.
// In async mode Save returns before the transcript exists and the result is
// announced through the publisher.
type RecordingService struct {
	gateway   *TranscriptionGateway
	publisher EventPublisher
	async     bool
	logger    *zap.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewRecordingService creates a new RecordingService. publisher may be nil.
func NewRecordingService(gateway *TranscriptionGateway, publisher EventPublisher, async bool, logger *zap.Logger) *RecordingService {
	ctx, cancel := context.WithCancel(context.Background())
	return &RecordingService{
		gateway:   gateway,
		publisher: publisher,
		async:     async,
		logger:    logger,
		baseCtx:   ctx,
		cancel:    cancel,
	}
}

// Save creates the recording and transcribes it
func (s *RecordingService) Save(ctx context.Context, req SaveRequest) (*entities.Recording, error) {
	rec, err := req.Registry.Create(ctx, req.Audio, req.Tag)
	if err != nil {
		return nil, err
	}
	s.publish(req.SessionID, Event{Type: EventRecordingCreated, RecordingID: rec.ID})

	if s.async {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.attachTranscript(s.baseCtx, req, rec.ID)
		}()
		return rec, nil
	}

	rec.Transcript = s.attachTranscript(ctx, req, rec.ID)
	return rec, nil
}

func (s *RecordingService) attachTranscript(ctx context.Context, req SaveRequest, id string) string {
	text := s.gateway.Transcribe(ctx, req.Audio, req.APIKey)

	if err := req.Registry.SetTranscript(id, text); err != nil {
		// The recording may have been deleted while transcription ran
		if !errors.Is(err, entities.ErrNotFound) {
			s.logger.Error("Failed to attach transcript", zap.String("id", id), zap.Error(err))
		}
		return text
	}

	s.publish(req.SessionID, Event{Type: EventRecordingTranscribed, RecordingID: id, Transcript: text})
	return text
}

// Publish forwards an event stamped with the session id and current time
func (s *RecordingService) Publish(sessionID string, event Event) {
	s.publish(sessionID, event)
}

func (s *RecordingService) publish(sessionID string, event Event) {
	if s.publisher == nil || sessionID == "" {
		return
	}
	event.SessionID = sessionID
	event.Timestamp = time.Now()
	s.publisher.Publish(sessionID, event)
}

// Shutdown cancels in-flight transcriptions and waits for them to finish
func (s *RecordingService) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until background transcriptions have finished
func (s *RecordingService) Wait() {
	s.wg.Wait()
}
