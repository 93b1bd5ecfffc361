package stt

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/satriahrh/voxtag/domain/repositories"
	"github.com/satriahrh/voxtag/internal/config"
)

// New builds the speech-to-text backend named in cfg
func New(cfg config.TranscriptionConfig, logger *zap.Logger) (repositories.SpeechToText, error) {
	switch cfg.Backend {
	case "assemblyai":
		var opts []AssemblyAIOption
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		return NewAssemblyAISpeechToText(logger, opts...), nil
	case "google":
		return NewGoogleSpeechToText(repositories.AudioConfig{Language: cfg.Language}, logger), nil
	case "gemini":
		return NewGeminiSpeechToText(cfg.Model, logger), nil
	case "exec":
		return NewExecSpeechToText(cfg.Command, cfg.Language, logger)
	case "mock":
		return NewMockSpeechToText(logger), nil
	default:
		return nil, fmt.Errorf("unsupported transcription backend: %s", cfg.Backend)
	}
}
