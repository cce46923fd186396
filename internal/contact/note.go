package contact

import (
	"slices"
	"strings"

	"github.com/hpungsan/contactbook/internal/errors"
)

// Note is free text with an ordered set of hashtags. Notes are values: Edit
// returns a new Note, so a failed edit never leaves a half-updated note behind.
type Note struct {
	text string
	tags []Hashtag
}

// NewNote validates text and every tag. One bad tag rejects the whole note.
func NewNote(text string, tags []string) (Note, error) {
	chars := CountChars(text)
	if strings.TrimSpace(text) == "" || chars > NoteMaxChars {
		return Note{}, errors.NewInvalidNote(chars, NoteMaxChars)
	}

	parsed := make([]Hashtag, 0, len(tags))
	for _, raw := range tags {
		tag, err := ParseHashtag(raw)
		if err != nil {
			return Note{}, err
		}
		if !slices.Contains(parsed, tag) {
			parsed = append(parsed, tag)
		}
	}

	return Note{text: text, tags: parsed}, nil
}

// Edit returns a replacement note with new text and tags.
func (n Note) Edit(text string, tags []string) (Note, error) {
	return NewNote(text, tags)
}

// Text returns the note text.
func (n Note) Text() string { return n.text }

// Hashtags returns a copy of the note's tags.
func (n Note) Hashtags() []Hashtag {
	return slices.Clone(n.tags)
}

// HashtagStrings returns the tags as plain strings, '#' included.
func (n Note) HashtagStrings() []string {
	out := make([]string, len(n.tags))
	for i, t := range n.tags {
		out[i] = string(t)
	}
	return out
}

// HasTag reports whether the note carries tag. Comparison is exact and
// case-sensitive; "urgent" does not match "#urgent".
func (n Note) HasTag(tag string) bool {
	return slices.Contains(n.tags, Hashtag(tag))
}

func (n Note) withTag(tag Hashtag) Note {
	tags := make([]Hashtag, len(n.tags), len(n.tags)+1)
	copy(tags, n.tags)
	return Note{text: n.text, tags: append(tags, tag)}
}

func (n Note) withoutTag(tag Hashtag) Note {
	tags := make([]Hashtag, 0, len(n.tags))
	for _, t := range n.tags {
		if t != tag {
			tags = append(tags, t)
		}
	}
	return Note{text: n.text, tags: tags}
}

func (n Note) render() string {
	return n.text + " (tags: " + strings.Join(n.HashtagStrings(), " ") + ")"
}
