package store

import (
	"encoding/json"
	"strings"

	"github.com/hpungsan/contactbook/internal/contact"
)

// RecordDoc is one contact in the persisted JSON array.
type RecordDoc struct {
	Name      string    `json:"name" yaml:"name"`
	Phones    []string  `json:"phones" yaml:"phones"`
	Birthday  *string   `json:"birthday" yaml:"birthday"`
	Email     *string   `json:"email" yaml:"email"`
	Addresses []string  `json:"addresses" yaml:"addresses"`
	Notes     []NoteDoc `json:"notions" yaml:"notions"`
}

// NoteDoc is one note; hashtags keep their leading '#'.
type NoteDoc struct {
	Text     string   `json:"text" yaml:"text"`
	Hashtags []string `json:"hashtags" yaml:"hashtags"`
}

// rawRecordDoc accepts every shape older files were written in: "notes" as
// an alias of "notions", null entries in phones, and missing keys.
type rawRecordDoc struct {
	Name      string     `json:"name"`
	Phones    []*string  `json:"phones"`
	Birthday  *string    `json:"birthday"`
	Email     *string    `json:"email"`
	Addresses []*string  `json:"addresses"`
	Notions   []*NoteDoc `json:"notions"`
	Notes     []*NoteDoc `json:"notes"`
}

// UnmarshalJSON decodes permissively and normalizes absent values to a single
// representation before anything reaches the contact constructors.
func (d *RecordDoc) UnmarshalJSON(data []byte) error {
	var raw rawRecordDoc
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	notes := raw.Notions
	if len(notes) == 0 {
		notes = raw.Notes
	}

	*d = RecordDoc{
		Name:      raw.Name,
		Phones:    compact(raw.Phones),
		Birthday:  optional(raw.Birthday),
		Email:     optional(raw.Email),
		Addresses: compact(raw.Addresses),
		Notes:     make([]NoteDoc, 0, len(notes)),
	}
	for _, n := range notes {
		if n != nil {
			d.Notes = append(d.Notes, *n)
		}
	}
	return nil
}

// optional maps null, empty, and the legacy "None" marker to absent.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || v == "None" || v == "null" {
		return nil
	}
	return &v
}

func compact(in []*string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// FromRecord converts a record into its persisted form.
func FromRecord(r *contact.Record) RecordDoc {
	doc := RecordDoc{
		Name:      r.Name().String(),
		Phones:    make([]string, 0),
		Addresses: r.Addresses(),
		Notes:     make([]NoteDoc, 0),
	}
	for _, p := range r.Phones() {
		doc.Phones = append(doc.Phones, p.String())
	}
	if doc.Addresses == nil {
		doc.Addresses = make([]string, 0)
	}
	if b, ok := r.Birthday(); ok {
		s := b.String()
		doc.Birthday = &s
	}
	if e, ok := r.Email(); ok {
		s := e.String()
		doc.Email = &s
	}
	for _, n := range r.Notes() {
		doc.Notes = append(doc.Notes, NoteDoc{Text: n.Text(), Hashtags: n.HashtagStrings()})
	}
	return doc
}

// ToRecord rebuilds a record through the same validating methods interactive
// edits use. Any field that no longer validates fails the whole record.
func (d RecordDoc) ToRecord() (*contact.Record, error) {
	r, err := contact.NewRecord(d.Name)
	if err != nil {
		return nil, err
	}
	for _, p := range d.Phones {
		if err := r.AddPhone(p); err != nil {
			return nil, err
		}
	}
	if d.Birthday != nil {
		if err := r.SetBirthday(*d.Birthday); err != nil {
			return nil, err
		}
	}
	if d.Email != nil {
		if err := r.AddEmail(*d.Email); err != nil {
			return nil, err
		}
	}
	if err := r.RestoreAddresses(d.Addresses); err != nil {
		return nil, err
	}
	for _, n := range d.Notes {
		if err := r.AddNote(n.Text, n.Hashtags); err != nil {
			return nil, err
		}
	}
	return r, nil
}
