package usecase

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/voxtag/domain/repositories"
	"github.com/satriahrh/voxtag/internal/telemetry"
)

const (
	// NoTranscriptionText is stored when the service finds no speech
	NoTranscriptionText = "No transcription"
	// TranscriptionErrorPrefix starts every transcript that records a failure
	TranscriptionErrorPrefix = "Transcription error: "

	DefaultTranscriptionTimeout = 60 * time.Second
)

// TranscriptionGateway hands audio to a speech-to-text backend and always
// yields displayable text. Failures are folded into the returned string.
type TranscriptionGateway struct {
	stt     repositories.SpeechToText
	tempDir string
	timeout time.Duration
	metrics *telemetry.Metrics
	logger  *zap.Logger
}

// NewTranscriptionGateway creates a new TranscriptionGateway. An empty tempDir
// uses the OS default; a zero timeout uses DefaultTranscriptionTimeout.
func NewTranscriptionGateway(stt repositories.SpeechToText, tempDir string, timeout time.Duration, metrics *telemetry.Metrics, logger *zap.Logger) *TranscriptionGateway {
	if timeout <= 0 {
		timeout = DefaultTranscriptionTimeout
	}
	return &TranscriptionGateway{
		stt:     stt,
		tempDir: tempDir,
		timeout: timeout,
		metrics: metrics,
		logger:  logger,
	}
}

// Transcribe returns the transcript of audio. Without an API key it returns
// the empty string and never contacts the backend.
func (g *TranscriptionGateway) Transcribe(ctx context.Context, audio []byte, apiKey string) string {
	if apiKey == "" {
		g.metrics.TranscriptionFinished(ctx, telemetry.OutcomeSkipped)
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	result, err := g.transcribe(ctx, audio, apiKey)
	if err != nil {
		g.logger.Warn("Transcription failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		g.metrics.TranscriptionFinished(ctx, telemetry.OutcomeError)
		return TranscriptionErrorPrefix + err.Error()
	}

	if result.Text == "" {
		g.metrics.TranscriptionFinished(ctx, telemetry.OutcomeEmpty)
		return NoTranscriptionText
	}

	g.logger.Info("Transcription completed",
		zap.Int("chars", len(result.Text)),
		zap.Float64("confidence", result.Confidence),
		zap.Duration("elapsed", time.Since(start)))
	g.metrics.TranscriptionFinished(ctx, telemetry.OutcomeOK)
	return result.Text
}

func (g *TranscriptionGateway) transcribe(ctx context.Context, audio []byte, apiKey string) (repositories.TranscriptResult, error) {
	tmp, err := os.CreateTemp(g.tempDir, "transcribe_*.wav")
	if err != nil {
		return repositories.TranscriptResult{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		return repositories.TranscriptResult{}, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return repositories.TranscriptResult{}, fmt.Errorf("failed to close temp file: %w", err)
	}

	return g.stt.Transcribe(ctx, tmp.Name(), apiKey)
}
