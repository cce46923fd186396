package ops

import (
	"go.uber.org/zap"

	"github.com/hpungsan/contactbook/internal/contact"
)

// AddContactInput contains parameters for AddContact.
type AddContactInput struct {
	Name   string
	Phones []string
}

// AddContactOutput contains the result of AddContact.
type AddContactOutput struct {
	Contact  ContactView `json:"contact"`
	Replaced bool        `json:"replaced"`
}

// AddContact stores a fresh contact with the given phones. A contact with the
// same name is replaced outright: its phones, notes and other fields are gone.
// All phones are validated before anything is stored.
func (s *Session) AddContact(input AddContactInput) (*AddContactOutput, error) {
	name, err := requireName(input.Name)
	if err != nil {
		return nil, err
	}

	r, err := contact.NewRecord(name)
	if err != nil {
		return nil, err
	}
	for _, p := range input.Phones {
		if err := r.AddPhone(p); err != nil {
			return nil, err
		}
	}

	replaced := s.book.Upsert(r)
	if replaced {
		s.logger.Debug("contact replaced", zap.String("name", r.Name().String()))
	}
	s.markDirty()
	return &AddContactOutput{Contact: newContactView(r), Replaced: replaced}, nil
}

// ShowContact returns one contact.
func (s *Session) ShowContact(name string) (*ContactView, error) {
	r, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	v := newContactView(r)
	return &v, nil
}

// ListOutput contains a list of contacts.
type ListOutput struct {
	Items []ContactView `json:"items"`
	Count int           `json:"count"`
}

// AllContacts returns every contact in book order.
func (s *Session) AllContacts() *ListOutput {
	items := newContactViews(s.book.Records())
	return &ListOutput{Items: items, Count: len(items)}
}

// NamesOutput lists display names.
type NamesOutput struct {
	Names []string `json:"names"`
	Count int      `json:"count"`
}

// Names returns every name, each word capitalized, in book order.
func (s *Session) Names() *NamesOutput {
	names := s.book.DisplayNames()
	return &NamesOutput{Names: names, Count: len(names)}
}

// DeleteOutput contains the result of DeleteContact.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	Name    string `json:"name"`
}

// DeleteContact removes a contact.
func (s *Session) DeleteContact(name string) (*DeleteOutput, error) {
	r, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	s.book.Delete(r.Key())
	s.markDirty()
	return &DeleteOutput{Deleted: true, Name: r.Name().String()}, nil
}
