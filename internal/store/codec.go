package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hpungsan/contactbook/internal/book"
	"github.com/hpungsan/contactbook/internal/errors"
)

// DefaultPath is the backing file used when no path is given.
const DefaultPath = "contacts_book.json"

// SkippedRecord describes a persisted record that failed re-validation.
type SkippedRecord struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Documents converts a book into persisted documents, in book order.
func Documents(b *book.Book) []RecordDoc {
	recs := b.Records()
	docs := make([]RecordDoc, 0, len(recs))
	for _, r := range recs {
		docs = append(docs, FromRecord(r))
	}
	return docs
}

// Encode writes b as an indented JSON array. Non-ASCII text is written as-is.
func Encode(w io.Writer, b *book.Book) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(Documents(b))
}

// Decode reads a JSON array of records. See BuildBook for partial failures.
func Decode(r io.Reader, source string) (*book.Book, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return book.New(), errors.NewInternal(fmt.Errorf("failed to read %s: %w", source, err))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return book.New(), nil
	}

	var docs []RecordDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return book.New(), errors.NewDecode(source, err)
	}
	return BuildBook(docs, source)
}

// BuildBook rebuilds a book from documents. Records that fail validation are
// skipped; the rest are loaded and a DECODE_ERROR listing the skipped ones is
// returned alongside the (partial) book.
func BuildBook(docs []RecordDoc, source string) (*book.Book, error) {
	b := book.New()
	var skipped []SkippedRecord

	for i, doc := range docs {
		rec, err := doc.ToRecord()
		if err != nil {
			skip := SkippedRecord{Index: i, Name: doc.Name, Message: err.Error()}
			if cErr, ok := err.(*errors.ContactError); ok {
				skip.Code = string(cErr.Code)
				skip.Message = cErr.Message
			}
			skipped = append(skipped, skip)
			continue
		}
		b.Upsert(rec)
	}

	if len(skipped) > 0 {
		return b, partialDecodeError(source, skipped)
	}
	return b, nil
}

func partialDecodeError(source string, skipped []SkippedRecord) *errors.ContactError {
	err := errors.NewDecode(source, nil)
	err.Message = fmt.Sprintf("%d record(s) in %s failed validation and were skipped", len(skipped), source)
	err.Details["skipped"] = skipped
	return err
}

// Skipped extracts the skipped records from a partial-load error.
func Skipped(err error) []SkippedRecord {
	cErr, ok := err.(*errors.ContactError)
	if !ok || cErr.Details == nil {
		return nil
	}
	skipped, _ := cErr.Details["skipped"].([]SkippedRecord)
	return skipped
}
