package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/voxtag/domain/repositories"
)

const (
	DefaultAssemblyAIBaseURL  = "https://api.assemblyai.com/v2"
	defaultAssemblyAIInterval = time.Second
)

// AssemblyAISpeechToText implements SpeechToText with AssemblyAI's
// upload, submit and poll flow
type AssemblyAISpeechToText struct {
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	logger       *zap.Logger
}

// AssemblyAIOption customises the AssemblyAI client
type AssemblyAIOption func(*AssemblyAISpeechToText)

// WithBaseURL points the client at a different API root
func WithBaseURL(baseURL string) AssemblyAIOption {
	return func(a *AssemblyAISpeechToText) { a.baseURL = baseURL }
}

// WithPollInterval changes how often transcript status is checked
func WithPollInterval(d time.Duration) AssemblyAIOption {
	return func(a *AssemblyAISpeechToText) { a.pollInterval = d }
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) AssemblyAIOption {
	return func(a *AssemblyAISpeechToText) { a.httpClient = c }
}

// NewAssemblyAISpeechToText creates a new AssemblyAI backend
func NewAssemblyAISpeechToText(logger *zap.Logger, opts ...AssemblyAIOption) *AssemblyAISpeechToText {
	a := &AssemblyAISpeechToText{
		baseURL:      DefaultAssemblyAIBaseURL,
		httpClient:   &http.Client{Timeout: 2 * time.Minute},
		pollInterval: defaultAssemblyAIInterval,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL string `json:"audio_url"`
}

type transcriptResponse struct {
	ID         string   `json:"id"`
	Status     string   `json:"status"`
	Text       *string  `json:"text"`
	Confidence *float64 `json:"confidence"`
	Error      string   `json:"error"`
}

// Transcribe uploads the file, submits a transcript job and waits for it
func (a *AssemblyAISpeechToText) Transcribe(ctx context.Context, audioPath string, apiKey string) (repositories.TranscriptResult, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return repositories.TranscriptResult{}, fmt.Errorf("failed to read audio: %w", err)
	}

	var upload uploadResponse
	if err := a.do(ctx, http.MethodPost, "/upload", apiKey, "application/octet-stream", bytes.NewReader(data), &upload); err != nil {
		return repositories.TranscriptResult{}, fmt.Errorf("upload failed: %w", err)
	}

	body, err := json.Marshal(transcriptRequest{AudioURL: upload.UploadURL})
	if err != nil {
		return repositories.TranscriptResult{}, err
	}
	var job transcriptResponse
	if err := a.do(ctx, http.MethodPost, "/transcript", apiKey, "application/json", bytes.NewReader(body), &job); err != nil {
		return repositories.TranscriptResult{}, fmt.Errorf("submit failed: %w", err)
	}

	a.logger.Debug("AssemblyAI transcript submitted", zap.String("job_id", job.ID))

	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		switch job.Status {
		case "completed":
			return toResult(job), nil
		case "error":
			return repositories.TranscriptResult{}, fmt.Errorf("transcription failed: %s", job.Error)
		}

		select {
		case <-ctx.Done():
			return repositories.TranscriptResult{}, ctx.Err()
		case <-ticker.C:
		}

		if err := a.do(ctx, http.MethodGet, "/transcript/"+job.ID, apiKey, "", nil, &job); err != nil {
			return repositories.TranscriptResult{}, fmt.Errorf("poll failed: %w", err)
		}
	}
}

func (a *AssemblyAISpeechToText) do(ctx context.Context, method, path, apiKey, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("assemblyai http %d: %s", resp.StatusCode, bytes.TrimSpace(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func toResult(job transcriptResponse) repositories.TranscriptResult {
	var result repositories.TranscriptResult
	if job.Text != nil {
		result.Text = *job.Text
	}
	if job.Confidence != nil {
		result.Confidence = *job.Confidence
	}
	return result
}

// Ensure AssemblyAISpeechToText implements the SpeechToText interface
var _ repositories.SpeechToText = (*AssemblyAISpeechToText)(nil)
