package api

import (
	"time"

	"github.com/satriahrh/voxtag/domain/entities"
)

// SessionResponse is returned when a session is opened
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SaveRecordingResponse describes a stored recording
type SaveRecordingResponse struct {
	Success       bool         `json:"success"`
	ID            string       `json:"id"`
	Filename      string       `json:"filename"`
	Transcription string       `json:"transcription"`
	Duration      float64      `json:"duration"`
	Tag           entities.Tag `json:"tag"`
}

// UpdateTagRequest is the body of PUT /recordings/:id/tag
type UpdateTagRequest struct {
	Tag string `json:"tag"`
}

// UpdateSelectedRequest is the body of PUT /recordings/:id/selected
type UpdateSelectedRequest struct {
	Selected *bool `json:"selected"`
}

// CombineRequest is the body of POST /combine. When RecordingIDs is empty and
// UseSelection is set, the session's selection is combined.
type CombineRequest struct {
	RecordingIDs []string `json:"recordingIds"`
	UseSelection bool     `json:"useSelection"`
}

// CombineResponse describes a combined recording
type CombineResponse struct {
	Success    bool     `json:"success"`
	ID         string   `json:"id"`
	Filename   string   `json:"filename"`
	AudioURL   string   `json:"audioUrl"`
	SourceIDs  []string `json:"sourceIds"`
	SkippedIDs []string `json:"skippedIds"`
	Duration   float64  `json:"duration"`
}

// WebhookRequest is the body of POST /webhook
type WebhookRequest struct {
	Type         string           `json:"type"`
	Audio        string           `json:"audio,omitempty"` // base64
	Tag          string           `json:"tag,omitempty"`
	RecordingIDs []string         `json:"recordingIds,omitempty"`
	Recordings   []WebhookSegment `json:"recordings,omitempty"`
}

// WebhookSegment is one inline clip of a combine_recordings webhook
type WebhookSegment struct {
	Audio string `json:"audio"` // base64
}

// WebhookRecordingResponse answers a recording webhook
type WebhookRecordingResponse struct {
	Status        string `json:"status"`
	ID            string `json:"id"`
	Filename      string `json:"filename"`
	Transcription string `json:"transcription"`
}

// WebhookCombinedResponse answers a combine_recordings webhook
type WebhookCombinedResponse struct {
	Type       string   `json:"type"`
	Audio      string   `json:"audio"` // base64
	Filename   string   `json:"filename"`
	SkippedIDs []string `json:"skippedIds"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
