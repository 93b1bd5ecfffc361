package repositories

import "context"

// TranscriptResult is the response of a speech-to-text backend
type TranscriptResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// Transcribe converts the audio container at audioPath to text.
	// apiKey is the caller's credential for the remote service.
	Transcribe(ctx context.Context, audioPath string, apiKey string) (TranscriptResult, error)
}

// AudioConfig represents audio configuration for speech recognition
type AudioConfig struct {
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language"`
}
