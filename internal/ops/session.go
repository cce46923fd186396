package ops

import (
	"context"
	"database/sql"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hpungsan/contactbook/internal/book"
	"github.com/hpungsan/contactbook/internal/config"
	"github.com/hpungsan/contactbook/internal/db"
	"github.com/hpungsan/contactbook/internal/errors"
	"github.com/hpungsan/contactbook/internal/store"
)

// Session owns the in-memory book for one run: it loads through the
// configured backend, tracks unsaved changes, and commits them.
type Session struct {
	cfg      *config.Config
	baseDir  string
	logger   *zap.Logger
	backend  store.Backend
	database *sql.DB

	book  *book.Book
	dirty bool
}

// Open selects the backend from cfg and loads the book. A missing book or
// one with undecodable records is logged and does not fail Open.
func Open(ctx context.Context, cfg *config.Config, baseDir string, logger *zap.Logger) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{cfg: cfg, baseDir: baseDir, logger: logger}

	switch cfg.Backend {
	case config.BackendSQLite:
		database, err := db.Init(baseDir)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		db.ConfigurePool(database, cfg)
		s.database = database
		s.backend = &db.Backend{DB: database, Path: filepath.Join(baseDir, db.FileName)}
	case "", config.BackendJSON:
		s.backend = store.NewFileBackend(cfg.BookPath)
	default:
		return nil, errors.NewInvalidRequest("unknown backend: " + cfg.Backend)
	}

	b, err := s.backend.Load(ctx)
	if err := s.absorbLoadError(err); err != nil {
		s.Close()
		return nil, err
	}
	s.book = b

	logger.Debug("book loaded",
		zap.String("backend", cfg.Backend),
		zap.String("location", s.backend.Location()),
		zap.Int("contacts", b.Len()))
	return s, nil
}

// absorbLoadError logs recoverable load failures and returns the rest.
func (s *Session) absorbLoadError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errors.ErrNotFound):
		s.logger.Info("no saved book, starting empty", zap.String("location", s.backend.Location()))
		return nil
	case errors.Is(err, errors.ErrDecode):
		if skipped := store.Skipped(err); len(skipped) > 0 {
			s.logger.Warn("skipped invalid records",
				zap.String("location", s.backend.Location()),
				zap.Any("skipped", skipped))
		} else {
			s.logger.Warn("book could not be decoded, starting empty",
				zap.String("location", s.backend.Location()),
				zap.Error(err))
		}
		return nil
	default:
		return err
	}
}

// Close releases the database handle, if any. Unsaved changes are dropped.
func (s *Session) Close() error {
	if s.database == nil {
		return nil
	}
	err := s.database.Close()
	s.database = nil
	return err
}

// Book returns the live book.
func (s *Session) Book() *book.Book { return s.book }

// Config returns the effective configuration.
func (s *Session) Config() *config.Config { return s.cfg }

// Location describes where the book is persisted.
func (s *Session) Location() string { return s.backend.Location() }

// Dirty reports whether the book has unsaved changes.
func (s *Session) Dirty() bool { return s.dirty }

func (s *Session) markDirty() { s.dirty = true }

// Commit saves the book if it changed and auto-save is enabled. It reports
// whether a save happened.
func (s *Session) Commit(ctx context.Context) (bool, error) {
	if !s.dirty || !s.cfg.AutoSaveEnabled() {
		return false, nil
	}
	if err := s.Save(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Save writes the book through the backend regardless of auto-save.
func (s *Session) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.NewInternal(err)
	}
	if err := s.backend.Save(ctx, s.book); err != nil {
		return err
	}
	s.dirty = false
	s.logger.Debug("book saved",
		zap.String("location", s.backend.Location()),
		zap.Int("contacts", s.book.Len()))
	return nil
}
