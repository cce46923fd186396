// Package ops implements the contact book commands on top of a Session.
// Every operation validates fully before it mutates, so a failed command
// leaves the book unchanged.
package ops

import (
	"strings"

	"github.com/hpungsan/contactbook/internal/contact"
	"github.com/hpungsan/contactbook/internal/errors"
)

// NoteView is one note as returned to callers. Index is zero-based.
type NoteView struct {
	Index    int      `json:"index"`
	Text     string   `json:"text"`
	Hashtags []string `json:"hashtags"`
}

// ContactView is a read-only snapshot of a record.
type ContactView struct {
	Name      string     `json:"name"`
	Phones    []string   `json:"phones"`
	Birthday  *string    `json:"birthday"`
	Email     *string    `json:"email"`
	Addresses []string   `json:"addresses"`
	Notes     []NoteView `json:"notes"`
	Summary   string     `json:"summary"`
}

func newContactView(r *contact.Record) ContactView {
	v := ContactView{
		Name:      r.Name().String(),
		Phones:    make([]string, 0),
		Addresses: r.Addresses(),
		Notes:     make([]NoteView, 0),
		Summary:   r.Render(),
	}
	if v.Addresses == nil {
		v.Addresses = make([]string, 0)
	}
	for _, p := range r.Phones() {
		v.Phones = append(v.Phones, p.String())
	}
	if b, ok := r.Birthday(); ok {
		s := b.String()
		v.Birthday = &s
	}
	if e, ok := r.Email(); ok {
		s := e.String()
		v.Email = &s
	}
	for i, n := range r.Notes() {
		v.Notes = append(v.Notes, NoteView{Index: i, Text: n.Text(), Hashtags: n.HashtagStrings()})
	}
	return v
}

func newContactViews(records []*contact.Record) []ContactView {
	out := make([]ContactView, 0, len(records))
	for _, r := range records {
		out = append(out, newContactView(r))
	}
	return out
}

// requireName trims name and rejects an empty one.
func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.NewInvalidRequest("name is required")
	}
	return name, nil
}

// lookup finds the record for name or returns NOT_FOUND.
func (s *Session) lookup(name string) (*contact.Record, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}
	r, ok := s.book.Find(name)
	if !ok {
		return nil, errors.NewNotFound("contact", name)
	}
	return r, nil
}
