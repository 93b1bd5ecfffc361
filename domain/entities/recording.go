package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	recordingPrefix = "recording_"
	combinedPrefix  = "combined_"
	audioExtension  = ".wav"
)

// Recording is one captured clip and its metadata
type Recording struct {
	ID         string    `json:"id" bson:"_id"`
	Filename   string    `json:"filename" bson:"filename"`
	Duration   float64   `json:"duration" bson:"duration"` // seconds
	Transcript string    `json:"transcript" bson:"transcript"`
	Tag        Tag       `json:"tag" bson:"tag"`
	Selected   bool      `json:"selected" bson:"selected"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`

	transcribed bool
}

// NewRecording creates a recording with a fresh id and the default tag
func NewRecording(now time.Time) *Recording {
	id := NewID(now)
	return &Recording{
		ID:        id,
		Filename:  RecordingFilename(id),
		Tag:       DefaultTag,
		CreatedAt: now,
	}
}

// SetTranscript stores the transcript; it can only be set once
func (r *Recording) SetTranscript(text string) error {
	if r.transcribed {
		return ErrTranscriptAlreadySet
	}
	r.Transcript = text
	r.transcribed = true
	return nil
}

// HasTranscript reports whether the transcript has been set
func (r *Recording) HasTranscript() bool {
	return r.transcribed
}

// CombinedRecording is the output of concatenating several recordings.
// It is never mutated after the combiner returns it.
type CombinedRecording struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	SourceIDs   []string  `json:"source_ids"`
	SkippedIDs  []string  `json:"skipped_ids"`
	SampleCount int       `json:"sample_count"`
	Duration    float64   `json:"duration"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewID generates a time-prefixed identifier with a random suffix,
// e.g. 20250101_120000_1a2b3c4d
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return now.Format("20060102_150405") + "_" + suffix
}

// RecordingFilename returns the storage key of an original clip
func RecordingFilename(id string) string {
	return recordingPrefix + id + audioExtension
}

// CombinedFilename returns the storage key of a combined output
func CombinedFilename(id string) string {
	return combinedPrefix + id + audioExtension
}

// IsCombinedFilename reports whether name looks like a combined output key
func IsCombinedFilename(name string) bool {
	if !strings.HasPrefix(name, combinedPrefix) || !strings.HasSuffix(name, audioExtension) {
		return false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, combinedPrefix), audioExtension)
	return id != "" && !strings.ContainsAny(id, `/\.`)
}
