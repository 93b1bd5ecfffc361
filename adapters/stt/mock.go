package stt

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/satriahrh/voxtag/adapters/pcm"
	"github.com/satriahrh/voxtag/domain/repositories"
)

// MockSpeechToText is an offline backend for local development. It reports
// the clip length instead of real speech.
type MockSpeechToText struct {
	logger *zap.Logger
}

// NewMockSpeechToText creates a new mock speech-to-text service
func NewMockSpeechToText(logger *zap.Logger) *MockSpeechToText {
	return &MockSpeechToText{logger: logger}
}

func (m *MockSpeechToText) Transcribe(ctx context.Context, audioPath string, apiKey string) (repositories.TranscriptResult, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return repositories.TranscriptResult{}, fmt.Errorf("failed to read audio: %w", err)
	}

	samples, err := pcm.Decode(data)
	if err != nil {
		return repositories.TranscriptResult{}, err
	}
	if len(samples) == 0 {
		return repositories.TranscriptResult{}, nil
	}

	m.logger.Info("Mock transcription", zap.Int("samples", len(samples)))
	seconds := float64(len(samples)) / pcm.SampleRate
	return repositories.TranscriptResult{
		Text:       fmt.Sprintf("Mock transcript of a %.1f second recording", seconds),
		Confidence: 1,
	}, nil
}

// Ensure MockSpeechToText implements the SpeechToText interface
var _ repositories.SpeechToText = (*MockSpeechToText)(nil)
