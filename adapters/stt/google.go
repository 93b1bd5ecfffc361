package stt

import (
	"context"
	"fmt"
	"os"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/satriahrh/voxtag/adapters/pcm"
	"github.com/satriahrh/voxtag/domain/repositories"
)

// GoogleSpeechToText implements SpeechToText for Google Cloud
type GoogleSpeechToText struct {
	config repositories.AudioConfig
	logger *zap.Logger
}

// NewGoogleSpeechToText creates a new Google Cloud backend. Unset config
// fields fall back to the recording format and en-US.
func NewGoogleSpeechToText(config repositories.AudioConfig, logger *zap.Logger) *GoogleSpeechToText {
	if config.SampleRate == 0 {
		config.SampleRate = pcm.SampleRate
	}
	if config.Encoding == "" {
		config.Encoding = "LINEAR16"
	}
	if config.Language == "" {
		config.Language = "en-US"
	}
	return &GoogleSpeechToText{config: config, logger: logger}
}

// Transcribe sends the file to the synchronous Recognize API. A non-empty
// apiKey is used as the client credential; otherwise application default
// credentials apply.
func (g *GoogleSpeechToText) Transcribe(ctx context.Context, audioPath string, apiKey string) (repositories.TranscriptResult, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return repositories.TranscriptResult{}, fmt.Errorf("failed to read audio: %w", err)
	}

	encoding, err := getAudioEncoding(g.config.Encoding)
	if err != nil {
		return repositories.TranscriptResult{}, err
	}

	var opts []option.ClientOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return repositories.TranscriptResult{}, fmt.Errorf("failed to create speech client: %w", err)
	}
	defer client.Close()

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        encoding,
			SampleRateHertz: int32(g.config.SampleRate),
			LanguageCode:    g.config.Language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: data},
		},
	})
	if err != nil {
		return repositories.TranscriptResult{}, fmt.Errorf("recognize failed: %w", err)
	}

	return joinResults(resp.GetResults()), nil
}

// joinResults concatenates the best alternative of each result and averages
// their confidence
func joinResults(results []*speechpb.SpeechRecognitionResult) repositories.TranscriptResult {
	var (
		parts      []string
		confidence float32
	)
	for _, result := range results {
		alternatives := result.GetAlternatives()
		if len(alternatives) == 0 {
			continue
		}
		best := alternatives[0]
		if text := strings.TrimSpace(best.GetTranscript()); text != "" {
			parts = append(parts, text)
			confidence += best.GetConfidence()
		}
	}
	if len(parts) == 0 {
		return repositories.TranscriptResult{}
	}
	return repositories.TranscriptResult{
		Text:       strings.Join(parts, " "),
		Confidence: float64(confidence) / float64(len(parts)),
	}
}

// getAudioEncoding converts string encoding to Google Speech API enum
func getAudioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch encoding {
	case "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}

// Ensure GoogleSpeechToText implements the SpeechToText interface
var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)
