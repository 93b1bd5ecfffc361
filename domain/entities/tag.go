package entities

import "fmt"

// Tag is a label from the fixed set a recording can carry
type Tag string

const (
	TagPersonal Tag = "💖 Personal"
	TagQuestion Tag = "❓ Question"
	TagPriority Tag = "⚡ Priority"
	TagChill    Tag = "😎 Chill"
)

// DefaultTag is applied when a recording is created without one
const DefaultTag = TagPersonal

var tagOptions = []Tag{TagPersonal, TagQuestion, TagPriority, TagChill}

// TagOptions returns the enumerated tags in display order
func TagOptions() []Tag {
	out := make([]Tag, len(tagOptions))
	copy(out, tagOptions)
	return out
}

// Valid reports whether t is one of the enumerated tags
func (t Tag) Valid() bool {
	for _, option := range tagOptions {
		if t == option {
			return true
		}
	}
	return false
}

// ParseTag resolves a raw tag value; an empty value yields DefaultTag
func ParseTag(raw string) (Tag, error) {
	if raw == "" {
		return DefaultTag, nil
	}
	tag := Tag(raw)
	if !tag.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTag, raw)
	}
	return tag, nil
}
