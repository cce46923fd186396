package ops

import (
	"strings"
	"time"

	"github.com/hpungsan/contactbook/internal/book"
	"github.com/hpungsan/contactbook/internal/contact"
	"github.com/hpungsan/contactbook/internal/errors"
)

// FindInput selects exactly one search criterion. All matches are exact;
// Name ignores case, Tag includes the leading '#'.
type FindInput struct {
	Name     string
	Phone    string
	Birthday string
	Tag      string
}

// Find returns the contacts matching one criterion, in book order.
func (s *Session) Find(input FindInput) (*ListOutput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Birthday = strings.TrimSpace(input.Birthday)
	input.Tag = strings.TrimSpace(input.Tag)

	criteria := 0
	for _, v := range []string{input.Name, input.Phone, input.Birthday, input.Tag} {
		if v != "" {
			criteria++
		}
	}
	if criteria != 1 {
		return nil, errors.NewInvalidRequest("specify exactly one of name, phone, birthday or tag")
	}

	var matches []*contact.Record
	switch {
	case input.Name != "":
		matches = s.book.FindByName(input.Name)
	case input.Phone != "":
		matches = s.book.FindByPhone(input.Phone)
	case input.Birthday != "":
		matches = s.book.FindByBirthday(input.Birthday)
	default:
		matches = s.book.FindByTag(input.Tag)
	}

	items := newContactViews(matches)
	return &ListOutput{Items: items, Count: len(items)}, nil
}

// SortByTag returns the names of contacts carrying tag, sorted case-insensitively.
func (s *Session) SortByTag(tag string) (*NamesOutput, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, errors.NewInvalidRequest("tag is required")
	}
	names := s.book.SortByTag(tag)
	if names == nil {
		names = make([]string, 0)
	}
	return &NamesOutput{Names: names, Count: len(names)}, nil
}

// BirthdaysOutput contains the scheduler result for one reference day.
type BirthdaysOutput struct {
	Today   string                `json:"today"`
	Buckets []book.BirthdayBucket `json:"buckets"`
	Labels  []string              `json:"labels"`
}

// Birthdays schedules the birthdays of the week starting at today.
func (s *Session) Birthdays(today time.Time) *BirthdaysOutput {
	buckets := s.book.UpcomingBirthdays(today)
	if buckets == nil {
		buckets = make([]book.BirthdayBucket, 0)
	}
	labels := book.FlattenBirthdays(buckets)
	if labels == nil {
		labels = make([]string, 0)
	}
	return &BirthdaysOutput{
		Today:   today.Format(contact.BirthdayLayout),
		Buckets: buckets,
		Labels:  labels,
	}
}
