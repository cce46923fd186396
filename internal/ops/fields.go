package ops

import (
	"github.com/hpungsan/contactbook/internal/contact"
)

// ContactOutput wraps a contact after a field mutation.
type ContactOutput struct {
	Contact ContactView `json:"contact"`
}

// mutate runs fn against the named record and marks the book dirty on success.
func (s *Session) mutate(name string, fn func(r *contact.Record) error) (*ContactOutput, error) {
	r, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	if err := fn(r); err != nil {
		return nil, err
	}
	s.markDirty()
	return &ContactOutput{Contact: newContactView(r)}, nil
}

// Phones

// AddPhone appends a phone to an existing contact.
func (s *Session) AddPhone(name, phone string) (*ContactOutput, error) {
	return s.mutate(name, func(r *contact.Record) error {
		return r.AddPhone(phone)
	})
}

// EditPhone replaces the phone at a zero-based index.
func (s *Session) EditPhone(name string, index int, phone string) (*ContactOutput, error) {
	return s.mutate(name, func(r *contact.Record) error {
		return r.EditPhone(index, phone)
	})
}

// RemovePhoneOutput contains the result of RemovePhone.
type RemovePhoneOutput struct {
	Contact ContactView `json:"contact"`
	Removed int         `json:"removed"`
}

// RemovePhone removes every occurrence of phone. Removing an absent phone
// succeeds with Removed == 0 and leaves the book clean.
func (s *Session) RemovePhone(name, phone string) (*RemovePhoneOutput, error) {
	r, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	removed := r.RemovePhone(phone)
	if removed > 0 {
		s.markDirty()
	}
	return &RemovePhoneOutput{Contact: newContactView(r), Removed: removed}, nil
}

// PhonesOutput lists one contact's phones.
type PhonesOutput struct {
	Name   string   `json:"name"`
	Phones []string `json:"phones"`
}

// ShowPhones returns a contact's phones.
func (s *Session) ShowPhones(name string) (*PhonesOutput, error) {
	r, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	v := newContactView(r)
	return &PhonesOutput{Name: v.Name, Phones: v.Phones}, nil
}

// Birthday

// SetBirthday sets or replaces a contact's birthday.
func (s *Session) SetBirthday(name, birthday string) (*ContactOutput, error) {
	return s.mutate(name, func(r *contact.Record) error {
		return r.SetBirthday(birthday)
	})
}

// FieldOutput reports one optional field; Value is "not set" when absent.
type FieldOutput struct {
	Name  string `json:"name"`
	Field string `json:"field"`
	Value string `json:"value"`
	Set   bool   `json:"set"`
}

// ShowBirthday returns a contact's birthday.
func (s *Session) ShowBirthday(name string) (*FieldOutput, error) {
	r, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	_, ok := r.Birthday()
	return &FieldOutput{Name: r.Name().String(), Field: "birthday", Value: r.ShowBirthday(), Set: ok}, nil
}

// Email

// AddEmail sets a contact's email, replacing any previous one.
func (s *Session) AddEmail(name, email string) (*ContactOutput, error) {
	return s.mutate(name, func(r *contact.Record) error {
		return r.AddEmail(email)
	})
}

// EditEmail replaces an existing email; NO_EMAIL if there is none.
func (s *Session) EditEmail(name, email string) (*ContactOutput, error) {
	return s.mutate(name, func(r *contact.Record) error {
		return r.EditEmail(email)
	})
}

// DeleteEmail clears the email when it equals email.
func (s *Session) DeleteEmail(name, email string) (*ContactOutput, error) {
	return s.mutate(name, func(r *contact.Record) error {
		return r.DeleteEmail(email)
	})
}

// Address

// AddAddress makes address the contact's current one, keeping the history.
func (s *Session) AddAddress(name, address string) (*ContactOutput, error) {
	return s.mutate(name, func(r *contact.Record) error {
		return r.AddAddress(address)
	})
}

// EditAddress replaces all addresses with one.
func (s *Session) EditAddress(name, address string) (*ContactOutput, error) {
	return s.mutate(name, func(r *contact.Record) error {
		return r.EditAddress(address)
	})
}

// DeleteAddress removes all addresses.
func (s *Session) DeleteAddress(name string) (*ContactOutput, error) {
	return s.mutate(name, func(r *contact.Record) error {
		return r.DeleteAddress()
	})
}

// AddressOutput reports a contact's canonical address and history.
type AddressOutput struct {
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Addresses []string `json:"addresses"`
	Set       bool     `json:"set"`
}

// ShowAddress returns a contact's addresses.
func (s *Session) ShowAddress(name string) (*AddressOutput, error) {
	r, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	out := &AddressOutput{Name: r.Name().String(), Address: contact.NotSet, Addresses: r.Addresses()}
	if a, ok := r.Address(); ok {
		out.Address = a
		out.Set = true
	}
	if out.Addresses == nil {
		out.Addresses = make([]string, 0)
	}
	return out, nil
}
