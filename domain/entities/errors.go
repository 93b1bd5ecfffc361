package entities

import "errors"

// Domain errors surfaced to callers of the registry and combiner
var (
	ErrNotFound             = errors.New("recording not found")
	ErrInvalidTag           = errors.New("invalid tag")
	ErrTranscriptAlreadySet = errors.New("transcript already set")
	ErrNoSelection          = errors.New("no recordings selected")
	ErrNoValidSegments      = errors.New("no valid recordings to combine")
	ErrTooManySegments      = errors.New("too many recordings to combine")
	ErrCombinedTooLong      = errors.New("combined recording exceeds maximum duration")
)
