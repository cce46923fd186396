package book

import (
	"slices"
	"strings"

	"github.com/hpungsan/contactbook/internal/contact"
)

// FindByName returns records whose name equals name, ignoring case.
func (b *Book) FindByName(name string) []*contact.Record {
	want := contact.Normalize(name)
	return b.filter(func(r *contact.Record) bool {
		return r.Key() == want
	})
}

// FindByPhone returns records holding a phone exactly equal to phone.
func (b *Book) FindByPhone(phone string) []*contact.Record {
	return b.filter(func(r *contact.Record) bool {
		_, ok := r.FindPhone(phone)
		return ok
	})
}

// FindByBirthday returns records whose birthday renders exactly as birthday (DD.MM.YYYY).
func (b *Book) FindByBirthday(birthday string) []*contact.Record {
	return b.filter(func(r *contact.Record) bool {
		bd, ok := r.Birthday()
		return ok && bd.String() == birthday
	})
}

// FindByTag returns records with at least one note carrying tag exactly,
// leading '#' included.
func (b *Book) FindByTag(tag string) []*contact.Record {
	return b.filter(func(r *contact.Record) bool {
		return r.HasTag(tag)
	})
}

// SortByTag returns the names of FindByTag(tag) in case-insensitive order.
func (b *Book) SortByTag(tag string) []string {
	matches := b.FindByTag(tag)
	names := make([]string, len(matches))
	for i, r := range matches {
		names[i] = r.Name().String()
	}
	slices.SortStableFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return names
}

func (b *Book) filter(match func(*contact.Record) bool) []*contact.Record {
	var out []*contact.Record
	for _, key := range b.order {
		if r := b.records[key]; match(r) {
			out = append(out, r)
		}
	}
	return out
}
