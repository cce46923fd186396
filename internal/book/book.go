package book

import (
	"slices"
	"strings"

	"github.com/hpungsan/contactbook/internal/contact"
)

// Book is the contact directory: records keyed by lower-cased name, iterated
// in insertion order. It is not safe for concurrent use.
type Book struct {
	records map[string]*contact.Record
	order   []string
}

// New returns an empty book.
func New() *Book {
	return &Book{records: make(map[string]*contact.Record)}
}

// Upsert stores rec under its key. A record already stored under the same
// key is overwritten entirely (last write wins, no merge) and the key keeps
// its original position. Returns true if a record was replaced.
func (b *Book) Upsert(rec *contact.Record) bool {
	key := rec.Key()
	_, replaced := b.records[key]
	if !replaced {
		b.order = append(b.order, key)
	}
	b.records[key] = rec
	return replaced
}

// Find looks up a record by case-insensitive exact name.
func (b *Book) Find(name string) (*contact.Record, bool) {
	rec, ok := b.records[contact.Normalize(name)]
	return rec, ok
}

// Delete removes the record for name. Returns false if there was none.
func (b *Book) Delete(name string) bool {
	key := contact.Normalize(name)
	if _, ok := b.records[key]; !ok {
		return false
	}
	delete(b.records, key)
	b.order = slices.DeleteFunc(b.order, func(k string) bool { return k == key })
	return true
}

// Len returns the number of records.
func (b *Book) Len() int { return len(b.records) }

// Records returns all records in insertion order.
func (b *Book) Records() []*contact.Record {
	out := make([]*contact.Record, 0, len(b.order))
	for _, key := range b.order {
		out = append(out, b.records[key])
	}
	return out
}

// Names returns every display name in insertion order.
func (b *Book) Names() []string {
	out := make([]string, 0, len(b.order))
	for _, key := range b.order {
		out = append(out, b.records[key].Name().String())
	}
	return out
}

// DisplayNames returns every key with each word capitalized ("john doe" -> "John Doe").
func (b *Book) DisplayNames() []string {
	out := make([]string, 0, len(b.order))
	for _, key := range b.order {
		words := strings.Fields(key)
		for i, w := range words {
			words[i] = capitalize(w)
		}
		out = append(out, strings.Join(words, " "))
	}
	return out
}

func capitalize(w string) string {
	runes := []rune(w)
	if len(runes) == 0 {
		return w
	}
	return strings.ToUpper(string(runes[0])) + strings.ToLower(string(runes[1:]))
}
