package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/contactbook/internal/book"
	"github.com/hpungsan/contactbook/internal/contact"
	"github.com/hpungsan/contactbook/internal/errors"
	"github.com/hpungsan/contactbook/internal/store"
)

// Snapshot is one row of save history.
type Snapshot struct {
	ID           string `json:"id"`
	SavedAt      int64  `json:"saved_at"`
	ContactCount int    `json:"contact_count"`
}

// ReplaceAll swaps the stored contacts for docs inside one transaction and
// records a snapshot. Row position follows slice order.
func ReplaceAll(ctx context.Context, db *sql.DB, docs []store.RecordDoc) (*Snapshot, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM contacts`); err != nil {
		return nil, errors.NewInternal(err)
	}

	now := time.Now().Unix()
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO contacts (
			name_norm, name_raw, position, birthday, email,
			phones_json, addresses_json, notes_json, saved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer stmt.Close()

	for i, doc := range docs {
		phones, err := marshalJSON(doc.Phones)
		if err != nil {
			return nil, err
		}
		addresses, err := marshalJSON(doc.Addresses)
		if err != nil {
			return nil, err
		}
		notes, err := marshalJSON(doc.Notes)
		if err != nil {
			return nil, err
		}

		_, err = stmt.ExecContext(ctx,
			contact.Normalize(doc.Name), doc.Name, i,
			toNullString(doc.Birthday), toNullString(doc.Email),
			phones, addresses, notes, now,
		)
		if err != nil {
			return nil, errors.NewInternal(fmt.Errorf("failed to store %q: %w", doc.Name, err))
		}
	}

	snap := &Snapshot{ID: ulid.Make().String(), SavedAt: now, ContactCount: len(docs)}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, saved_at, contact_count) VALUES (?, ?, ?)`,
		snap.ID, snap.SavedAt, snap.ContactCount,
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return snap, nil
}

// LoadDocs returns every stored contact in position order.
func LoadDocs(ctx context.Context, db *sql.DB) ([]store.RecordDoc, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name_raw, birthday, email, phones_json, addresses_json, notes_json
		FROM contacts
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	docs := []store.RecordDoc{}
	for rows.Next() {
		doc, err := scanContact(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return docs, nil
}

// LatestSnapshot returns the most recent save, or NOT_FOUND if the book was
// never saved to this database.
func LatestSnapshot(ctx context.Context, db *sql.DB) (*Snapshot, error) {
	var s Snapshot
	err := db.QueryRowContext(ctx, `
		SELECT id, saved_at, contact_count
		FROM snapshots
		ORDER BY saved_at DESC, id DESC
		LIMIT 1
	`).Scan(&s.ID, &s.SavedAt, &s.ContactCount)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("snapshot", "latest")
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &s, nil
}

// ListSnapshots returns up to limit saves, newest first.
func ListSnapshots(ctx context.Context, db *sql.DB, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, saved_at, contact_count
		FROM snapshots
		ORDER BY saved_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := []Snapshot{}
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.SavedAt, &s.ContactCount); err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// Backend stores the book in SQLite. It satisfies store.Backend.
type Backend struct {
	DB   *sql.DB
	Path string
}

// Load implements store.Backend. A database that was never saved to yields
// an empty book and NOT_FOUND, matching the JSON file backend.
func (b *Backend) Load(ctx context.Context) (*book.Book, error) {
	if _, err := LatestSnapshot(ctx, b.DB); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return book.New(), errors.NewFileNotFound(b.Path)
		}
		return book.New(), err
	}

	docs, err := LoadDocs(ctx, b.DB)
	if err != nil {
		return book.New(), err
	}
	return store.BuildBook(docs, b.Path)
}

// Save implements store.Backend.
func (b *Backend) Save(ctx context.Context, bk *book.Book) error {
	_, err := ReplaceAll(ctx, b.DB, store.Documents(bk))
	return err
}

// Location implements store.Backend.
func (b *Backend) Location() string { return b.Path }

type rowScanner interface {
	Scan(dest ...any) error
}

// scanContact scans a single row into a RecordDoc.
func scanContact(row rowScanner) (*store.RecordDoc, error) {
	var (
		doc                      store.RecordDoc
		birthday, email          sql.NullString
		phones, addresses, notes string
	)

	if err := row.Scan(&doc.Name, &birthday, &email, &phones, &addresses, &notes); err != nil {
		return nil, err
	}

	doc.Birthday = fromNullString(birthday)
	doc.Email = fromNullString(email)

	if err := json.Unmarshal([]byte(phones), &doc.Phones); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(addresses), &doc.Addresses); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(notes), &doc.Notes); err != nil {
		return nil, err
	}

	return &doc, nil
}

func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return string(data), nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
