package stt

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/voxtag/domain/repositories"
)

const (
	DefaultGeminiModel = "gemini-2.0-flash"
	geminiPrompt       = "Transcribe the speech in this audio recording. Reply with the transcript only. If there is no speech, reply with nothing."
	geminiAttempts     = 3
)

// GeminiSpeechToText implements SpeechToText by asking a Gemini model to
// transcribe inline audio
type GeminiSpeechToText struct {
	model  string
	logger *zap.Logger
}

// NewGeminiSpeechToText creates a new Gemini backend
func NewGeminiSpeechToText(model string, logger *zap.Logger) *GeminiSpeechToText {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiSpeechToText{model: model, logger: logger}
}

func (g *GeminiSpeechToText) Transcribe(ctx context.Context, audioPath string, apiKey string) (repositories.TranscriptResult, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return repositories.TranscriptResult{}, fmt.Errorf("failed to read audio: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return repositories.TranscriptResult{}, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(geminiPrompt),
			genai.NewPartFromBytes(data, "audio/wav"),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	}

	var response *genai.GenerateContentResponse
	for attempt := 0; attempt < geminiAttempts; attempt++ {
		response, err = client.Models.GenerateContent(ctx, g.model, contents, config)
		if err == nil {
			break
		}

		g.logger.Warn("Failed to generate transcript, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		if attempt < geminiAttempts-1 {
			select {
			case <-ctx.Done():
				return repositories.TranscriptResult{}, ctx.Err()
			case <-time.After(time.Duration(attempt+1) * time.Second):
			}
		}
	}
	if err != nil {
		return repositories.TranscriptResult{}, fmt.Errorf("gemini transcription failed: %w", err)
	}

	return repositories.TranscriptResult{Text: responseText(response)}, nil
}

func responseText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// Ensure GeminiSpeechToText implements the SpeechToText interface
var _ repositories.SpeechToText = (*GeminiSpeechToText)(nil)
