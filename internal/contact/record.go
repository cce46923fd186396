package contact

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hpungsan/contactbook/internal/errors"
)

// NotSet is rendered for optional fields that have no value.
const NotSet = "not set"

// HashtagOutcome reports what a hashtag mutation did. Adding a tag that is
// already present and removing one that is absent are no-ops, not errors.
type HashtagOutcome string

const (
	HashtagAdded    HashtagOutcome = "added"
	HashtagExists   HashtagOutcome = "already exists"
	HashtagRemoved  HashtagOutcome = "removed"
	HashtagNotFound HashtagOutcome = "not found"
)

// Record is the aggregate for one contact. All mutation goes through its methods.
type Record struct {
	name      Name
	phones    []Phone
	birthday  *Birthday
	email     *Email
	addresses []string
	notes     []Note
}

// NewRecord creates an empty record for name.
func NewRecord(name string) (*Record, error) {
	n, err := ParseName(name)
	if err != nil {
		return nil, err
	}
	return &Record{name: n}, nil
}

// Name returns the contact's display name.
func (r *Record) Name() Name { return r.name }

// Key returns the directory key (lower-cased name).
func (r *Record) Key() string { return r.name.Key() }

// Phones

// AddPhone validates raw and appends it. Duplicates are allowed.
func (r *Record) AddPhone(raw string) error {
	p, err := ParsePhone(raw)
	if err != nil {
		return err
	}
	r.phones = append(r.phones, p)
	return nil
}

// EditPhone replaces the phone at index.
func (r *Record) EditPhone(index int, raw string) error {
	if index < 0 || index >= len(r.phones) {
		return errors.NewIndexOutOfRange("phone", index, len(r.phones))
	}
	p, err := ParsePhone(raw)
	if err != nil {
		return err
	}
	r.phones[index] = p
	return nil
}

// RemovePhone removes every phone equal to raw and returns how many were removed.
func (r *Record) RemovePhone(raw string) int {
	before := len(r.phones)
	r.phones = slices.DeleteFunc(r.phones, func(p Phone) bool {
		return string(p) == raw
	})
	return before - len(r.phones)
}

// FindPhone returns the first phone equal to raw.
func (r *Record) FindPhone(raw string) (Phone, bool) {
	for _, p := range r.phones {
		if string(p) == raw {
			return p, true
		}
	}
	return "", false
}

// Phones returns a copy of the phone list.
func (r *Record) Phones() []Phone { return slices.Clone(r.phones) }

// Birthday

// SetBirthday validates raw and sets (or replaces) the birthday.
func (r *Record) SetBirthday(raw string) error {
	b, err := ParseBirthday(raw)
	if err != nil {
		return err
	}
	r.birthday = &b
	return nil
}

// Birthday returns the birthday, if set.
func (r *Record) Birthday() (Birthday, bool) {
	if r.birthday == nil {
		return Birthday{}, false
	}
	return *r.birthday, true
}

// ShowBirthday returns the rendered birthday or NotSet.
func (r *Record) ShowBirthday() string {
	if r.birthday == nil {
		return NotSet
	}
	return r.birthday.String()
}

// Email

// AddEmail validates raw and sets the email, replacing any previous one.
func (r *Record) AddEmail(raw string) error {
	e, err := ParseEmail(raw)
	if err != nil {
		return err
	}
	r.email = &e
	return nil
}

// EditEmail replaces an existing email.
func (r *Record) EditEmail(raw string) error {
	if r.email == nil {
		return errors.NewNoEmail(r.name.String())
	}
	return r.AddEmail(raw)
}

// DeleteEmail clears the email if it equals raw.
func (r *Record) DeleteEmail(raw string) error {
	if r.email == nil || string(*r.email) != raw {
		return errors.NewNotFound("email", raw)
	}
	r.email = nil
	return nil
}

// Email returns the email, if set.
func (r *Record) Email() (Email, bool) {
	if r.email == nil {
		return "", false
	}
	return *r.email, true
}

// Addresses

// AddAddress validates raw and makes it the canonical address. Earlier
// addresses are kept behind it, newest first.
func (r *Record) AddAddress(raw string) error {
	a, err := ParseAddress(raw)
	if err != nil {
		return err
	}
	r.addresses = slices.Insert(r.addresses, 0, a)
	return nil
}

// RestoreAddresses replaces the sequence with addrs in the given order,
// canonical first. Nothing changes if any address is invalid.
func (r *Record) RestoreAddresses(addrs []string) error {
	restored := make([]string, 0, len(addrs))
	for _, raw := range addrs {
		a, err := ParseAddress(raw)
		if err != nil {
			return err
		}
		restored = append(restored, a)
	}
	if len(restored) == 0 {
		restored = nil
	}
	r.addresses = restored
	return nil
}

// EditAddress replaces the whole sequence with the single address raw.
func (r *Record) EditAddress(raw string) error {
	if len(r.addresses) == 0 {
		return errors.NewNoAddress(r.name.String())
	}
	a, err := ParseAddress(raw)
	if err != nil {
		return err
	}
	r.addresses = []string{a}
	return nil
}

// DeleteAddress removes all addresses.
func (r *Record) DeleteAddress() error {
	if len(r.addresses) == 0 {
		return errors.NewNoAddress(r.name.String())
	}
	r.addresses = nil
	return nil
}

// Address returns the canonical address, if any.
func (r *Record) Address() (string, bool) {
	if len(r.addresses) == 0 {
		return "", false
	}
	return r.addresses[0], true
}

// Addresses returns a copy of the address history, canonical first.
func (r *Record) Addresses() []string { return slices.Clone(r.addresses) }

// Notes

// AddNote validates and appends a note.
func (r *Record) AddNote(text string, tags []string) error {
	n, err := NewNote(text, tags)
	if err != nil {
		return err
	}
	r.notes = append(r.notes, n)
	return nil
}

// EditNote replaces the note at index with new text and tags.
func (r *Record) EditNote(index int, text string, tags []string) error {
	if err := r.checkNoteIndex(index); err != nil {
		return err
	}
	n, err := r.notes[index].Edit(text, tags)
	if err != nil {
		return err
	}
	r.notes[index] = n
	return nil
}

// DeleteNote removes the note at index.
func (r *Record) DeleteNote(index int) error {
	if err := r.checkNoteIndex(index); err != nil {
		return err
	}
	r.notes = slices.Delete(r.notes, index, index+1)
	return nil
}

// Notes returns a copy of the note list.
func (r *Record) Notes() []Note { return slices.Clone(r.notes) }

// AddHashtagToNote adds tag to the note at index. A tag without a leading
// '#' gets one.
func (r *Record) AddHashtagToNote(index int, tag string) (HashtagOutcome, error) {
	if err := r.checkNoteIndex(index); err != nil {
		return "", err
	}
	h, err := ParseHashtag(withHash(tag))
	if err != nil {
		return "", err
	}
	if r.notes[index].HasTag(string(h)) {
		return HashtagExists, nil
	}
	r.notes[index] = r.notes[index].withTag(h)
	return HashtagAdded, nil
}

// RemoveHashtagFromNote removes tag from the note at index.
func (r *Record) RemoveHashtagFromNote(index int, tag string) (HashtagOutcome, error) {
	if err := r.checkNoteIndex(index); err != nil {
		return "", err
	}
	h := Hashtag(withHash(tag))
	if !r.notes[index].HasTag(string(h)) {
		return HashtagNotFound, nil
	}
	r.notes[index] = r.notes[index].withoutTag(h)
	return HashtagRemoved, nil
}

// HasTag reports whether any note carries tag.
func (r *Record) HasTag(tag string) bool {
	for _, n := range r.notes {
		if n.HasTag(tag) {
			return true
		}
	}
	return false
}

func (r *Record) checkNoteIndex(index int) error {
	if index < 0 || index >= len(r.notes) {
		return errors.NewIndexOutOfRange("note", index, len(r.notes))
	}
	return nil
}

func withHash(tag string) string {
	if strings.HasPrefix(tag, "#") {
		return tag
	}
	return "#" + tag
}

// Render returns a deterministic one-line summary of the record.
func (r *Record) Render() string {
	phones := make([]string, len(r.phones))
	for i, p := range r.phones {
		phones[i] = string(p)
	}

	email := NotSet
	if r.email != nil {
		email = string(*r.email)
	}

	notes := make([]string, len(r.notes))
	for i, n := range r.notes {
		notes[i] = n.render()
	}

	address := NotSet
	if len(r.addresses) > 0 {
		address = strings.Join(r.addresses, ", ")
	}

	return fmt.Sprintf("Contact name: %s, phones: %s, email: %s, birthday: %s, notes: %s, address: %s",
		r.name, strings.Join(phones, "; "), email, r.ShowBirthday(), strings.Join(notes, "; "), address)
}
