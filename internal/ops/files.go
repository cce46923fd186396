package ops

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/contactbook/internal/db"
	"github.com/hpungsan/contactbook/internal/errors"
	"github.com/hpungsan/contactbook/internal/report"
	"github.com/hpungsan/contactbook/internal/store"
)

// FileOutput reports a file written or read by the session.
type FileOutput struct {
	Path    string   `json:"path"`
	Count   int      `json:"count"`
	Format  string   `json:"format,omitempty"`
	Skipped []string `json:"skipped,omitempty"`
}

// SaveAs writes the book as JSON to path, independent of the configured
// backend. An empty path saves through the backend instead.
func (s *Session) SaveAs(ctx context.Context, path string) (*FileOutput, error) {
	if path == "" {
		if err := s.Save(ctx); err != nil {
			return nil, err
		}
		return &FileOutput{Path: s.Location(), Count: s.book.Len()}, nil
	}
	if err := store.Save(path, s.book); err != nil {
		return nil, err
	}
	s.logger.Debug("book saved", zap.String("location", path), zap.Int("contacts", s.book.Len()))
	return &FileOutput{Path: path, Count: s.book.Len()}, nil
}

// Import replaces the book with the contents of a JSON file. Unlike startup
// loading, a missing or malformed file is an error and the book is kept.
// Records that fail validation are skipped and reported.
func (s *Session) Import(path string) (*FileOutput, error) {
	if path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}

	b, err := store.Load(path)
	skipped := store.Skipped(err)
	if err != nil && len(skipped) == 0 {
		return nil, err
	}

	out := &FileOutput{Path: path, Count: b.Len()}
	for _, sk := range skipped {
		out.Skipped = append(out.Skipped, sk.Name+": "+sk.Message)
	}
	if len(skipped) > 0 {
		s.logger.Warn("skipped invalid records", zap.String("location", path), zap.Any("skipped", skipped))
	}

	s.book = b
	s.markDirty()
	return out, nil
}

// ExportInput contains parameters for Export.
type ExportInput struct {
	Format string // markdown (default), html, yaml, json
	Path   string // optional, default: <export dir>/contacts-<timestamp><ext>
}

// Export renders the book to a file.
func (s *Session) Export(input ExportInput) (*FileOutput, error) {
	formatName := input.Format
	if formatName == "" {
		formatName = string(report.FormatMarkdown)
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	path := input.Path
	if path == "" {
		path = report.DefaultPath(s.exportDir(), "contacts", format, time.Now())
	}

	if err := report.Write(format, path, s.book); err != nil {
		return nil, err
	}
	s.logger.Debug("book exported", zap.String("path", path), zap.String("format", string(format)))
	return &FileOutput{Path: path, Count: s.book.Len(), Format: string(format)}, nil
}

func (s *Session) exportDir() string {
	if s.cfg.ExportDir != "" {
		return s.cfg.ExportDir
	}
	return filepath.Join(s.baseDir, "exports")
}

// HistoryOutput lists recent saves.
type HistoryOutput struct {
	Items []db.Snapshot `json:"items"`
	Count int           `json:"count"`
}

// History returns up to limit saves, newest first. Only the sqlite backend
// keeps save history.
func (s *Session) History(ctx context.Context, limit int) (*HistoryOutput, error) {
	if s.database == nil {
		return nil, errors.NewInvalidRequest("history requires the sqlite backend")
	}
	items, err := db.ListSnapshots(ctx, s.database, limit)
	if err != nil {
		return nil, err
	}
	return &HistoryOutput{Items: items, Count: len(items)}, nil
}
