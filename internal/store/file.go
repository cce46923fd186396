package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/contactbook/internal/book"
	"github.com/hpungsan/contactbook/internal/errors"
)

// Backend persists a whole book.
type Backend interface {
	// Load returns the stored book. NOT_FOUND and DECODE_ERROR come back with
	// a usable (possibly empty) book.
	Load(ctx context.Context) (*book.Book, error)
	Save(ctx context.Context, b *book.Book) error
	Location() string
}

// FileBackend stores the book as a JSON file.
type FileBackend struct {
	Path string
}

// NewFileBackend returns a backend for path, or DefaultPath when empty.
func NewFileBackend(path string) *FileBackend {
	if path == "" {
		path = DefaultPath
	}
	return &FileBackend{Path: path}
}

// Load implements Backend.
func (f *FileBackend) Load(_ context.Context) (*book.Book, error) {
	return Load(f.Path)
}

// Save implements Backend.
func (f *FileBackend) Save(_ context.Context, b *book.Book) error {
	return Save(f.Path, b)
}

// Location implements Backend.
func (f *FileBackend) Location() string { return f.Path }

// Load reads the book at path. A missing file yields an empty book and a
// NOT_FOUND error; malformed JSON yields an empty book and DECODE_ERROR.
func Load(path string) (*book.Book, error) {
	file, err := openFileNoFollowRead(path)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) || errors.Is(err, errors.ErrInvalidRequest) {
			return book.New(), err
		}
		return book.New(), errors.NewInternal(fmt.Errorf("failed to open %s: %w", path, err))
	}
	defer file.Close()

	return Decode(file, path)
}

// Save writes b to path. The document is written to a temp file and renamed
// into place, so an interrupted save leaves the previous file intact.
func Save(path string, b *book.Book) error {
	if path == "" {
		path = DefaultPath
	}
	return WriteAtomic(path, func(w io.Writer) error {
		return Encode(w, b)
	})
}

// WriteAtomic creates path (and its parent directory) with mode 0600 by
// writing to a temp file, syncing, and renaming over the destination.
// A symlinked destination is refused.
func WriteAtomic(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return errors.NewInternal(fmt.Errorf("failed to create directory: %w", err))
		}
	}

	tempPath := path + "." + ulid.Make().String() + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create temp file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if err := write(file); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}

	// Close before rename (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close temp file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination.
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("cannot write to symlink: " + path)
	}

	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			// Windows cannot rename over an existing file; fall back to replace.
			if rmErr := os.Remove(path); rmErr == nil {
				err = os.Rename(tempPath, path)
			}
		}
		if err != nil {
			return errors.NewInternal(fmt.Errorf("failed to finalize write: %w", err))
		}
	}

	success = true
	return nil
}
