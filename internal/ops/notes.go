package ops

import (
	"github.com/hpungsan/contactbook/internal/contact"
)

// NoteInput contains parameters for AddNote and EditNote. Tags is a
// whitespace-separated list such as "#work #urgent".
type NoteInput struct {
	Name  string
	Index int
	Text  string
	Tags  string
}

// AddNote appends a note to a contact.
func (s *Session) AddNote(input NoteInput) (*ContactOutput, error) {
	return s.mutate(input.Name, func(r *contact.Record) error {
		return r.AddNote(input.Text, contact.ParseHashtags(input.Tags))
	})
}

// EditNote replaces the text and tags of the note at Index.
func (s *Session) EditNote(input NoteInput) (*ContactOutput, error) {
	return s.mutate(input.Name, func(r *contact.Record) error {
		return r.EditNote(input.Index, input.Text, contact.ParseHashtags(input.Tags))
	})
}

// DeleteNote removes the note at index.
func (s *Session) DeleteNote(name string, index int) (*ContactOutput, error) {
	return s.mutate(name, func(r *contact.Record) error {
		return r.DeleteNote(index)
	})
}

// TagOutput contains the result of a hashtag mutation.
type TagOutput struct {
	Contact ContactView            `json:"contact"`
	Outcome contact.HashtagOutcome `json:"outcome"`
}

// AddTag adds a hashtag to one note. An already present tag is reported,
// not treated as an error.
func (s *Session) AddTag(name string, index int, tag string) (*TagOutput, error) {
	return s.tagOp(name, func(r *contact.Record) (contact.HashtagOutcome, error) {
		return r.AddHashtagToNote(index, tag)
	})
}

// RemoveTag removes a hashtag from one note.
func (s *Session) RemoveTag(name string, index int, tag string) (*TagOutput, error) {
	return s.tagOp(name, func(r *contact.Record) (contact.HashtagOutcome, error) {
		return r.RemoveHashtagFromNote(index, tag)
	})
}

func (s *Session) tagOp(name string, fn func(r *contact.Record) (contact.HashtagOutcome, error)) (*TagOutput, error) {
	r, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	outcome, err := fn(r)
	if err != nil {
		return nil, err
	}
	if outcome == contact.HashtagAdded || outcome == contact.HashtagRemoved {
		s.markDirty()
	}
	return &TagOutput{Contact: newContactView(r), Outcome: outcome}, nil
}
