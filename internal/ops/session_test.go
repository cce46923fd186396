package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hpungsan/contactbook/internal/config"
	"github.com/hpungsan/contactbook/internal/errors"
	"github.com/hpungsan/contactbook/internal/store"
)

func openTestSession(t *testing.T, mutate func(cfg *config.Config)) (*Session, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.BookPath = filepath.Join(dir, "book.json")
	if mutate != nil {
		mutate(cfg)
	}
	s, err := Open(t.Context(), cfg, dir, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func TestOpen_MissingBookStartsEmpty(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.BookPath = filepath.Join(dir, "missing.json")

	s, err := Open(t.Context(), cfg, dir, zap.New(core))
	require.NoError(t, err)
	require.Equal(t, 0, s.Book().Len())
	require.False(t, s.Dirty())
	require.Equal(t, 1, logs.FilterMessage("no saved book, starting empty").Len())
}

func TestOpen_MalformedBookStartsEmpty(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.BookPath = filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(cfg.BookPath, []byte("{not json"), 0600))

	s, err := Open(t.Context(), cfg, dir, zap.New(core))
	require.NoError(t, err)
	require.Equal(t, 0, s.Book().Len())
	require.Equal(t, 1, logs.FilterMessage("book could not be decoded, starting empty").Len())
}

func TestOpen_SkipsInvalidRecords(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.BookPath = filepath.Join(dir, "book.json")
	doc := `[{"name": "Good", "phones": ["0987654321"]}, {"name": "Bad", "phones": ["12"]}]`
	require.NoError(t, os.WriteFile(cfg.BookPath, []byte(doc), 0600))

	s, err := Open(t.Context(), cfg, dir, zap.New(core))
	require.NoError(t, err)
	require.Equal(t, []string{"Good"}, s.Book().Names())

	entries := logs.FilterMessage("skipped invalid records").All()
	require.Len(t, entries, 1)
	skipped, ok := entries[0].ContextMap()["skipped"].([]store.SkippedRecord)
	require.True(t, ok)
	require.Equal(t, "Bad", skipped[0].Name)
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = "postgres"

	_, err := Open(t.Context(), cfg, t.TempDir(), nil)
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestCommit_SavesOnlyWhenDirty(t *testing.T) {
	s, _ := openTestSession(t, nil)
	ctx := t.Context()

	saved, err := s.Commit(ctx)
	require.NoError(t, err)
	require.False(t, saved)
	_, err = os.Stat(s.Location())
	require.True(t, os.IsNotExist(err), "clean session must not create the book file")

	_, err = s.AddContact(AddContactInput{Name: "Jane", Phones: []string{"0987654321"}})
	require.NoError(t, err)
	require.True(t, s.Dirty())

	saved, err = s.Commit(ctx)
	require.NoError(t, err)
	require.True(t, saved)
	require.False(t, s.Dirty())

	b, err := store.Load(s.Location())
	require.NoError(t, err)
	require.Equal(t, []string{"Jane"}, b.Names())
}

func TestCommit_AutoSaveDisabled(t *testing.T) {
	s, _ := openTestSession(t, func(cfg *config.Config) {
		off := false
		cfg.AutoSave = &off
	})
	ctx := t.Context()

	_, err := s.AddContact(AddContactInput{Name: "Jane"})
	require.NoError(t, err)

	saved, err := s.Commit(ctx)
	require.NoError(t, err)
	require.False(t, saved)
	require.True(t, s.Dirty())

	require.NoError(t, s.Save(ctx))
	require.False(t, s.Dirty())
	_, err = os.Stat(s.Location())
	require.NoError(t, err)
}

func TestSession_SQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendSQLite
	ctx := t.Context()

	s, err := Open(ctx, cfg, dir, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "contacts.db"), s.Location())

	_, err = s.AddContact(AddContactInput{Name: "John Doe", Phones: []string{"0987654321"}})
	require.NoError(t, err)
	_, err = s.AddNote(NoteInput{Name: "john doe", Text: "Meeting", Tags: "#urgent"})
	require.NoError(t, err)
	_, err = s.Commit(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, cfg, dir, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	v, err := reopened.ShowContact("John Doe")
	require.NoError(t, err)
	require.Equal(t, []string{"0987654321"}, v.Phones)
	require.Equal(t, []string{"#urgent"}, v.Notes[0].Hashtags)
}

func TestSession_JSONReopenRoundTrip(t *testing.T) {
	s, dir := openTestSession(t, nil)
	ctx := t.Context()

	_, err := s.AddContact(AddContactInput{Name: "Jane"})
	require.NoError(t, err)
	_, err = s.SetBirthday("jane", "29.02.2000")
	require.NoError(t, err)
	_, err = s.Commit(ctx)
	require.NoError(t, err)

	reopened, err := Open(ctx, s.Config(), dir, zap.NewNop())
	require.NoError(t, err)
	out, err := reopened.ShowBirthday("JANE")
	require.NoError(t, err)
	require.Equal(t, "29.02.2000", out.Value)
	require.True(t, out.Set)
}

func TestHistory(t *testing.T) {
	s, _ := openTestSession(t, func(cfg *config.Config) { cfg.Backend = config.BackendSQLite })
	ctx := t.Context()

	out, err := s.History(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 0, out.Count)

	_, err = s.AddContact(AddContactInput{Name: "Jane"})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx))
	_, err = s.AddContact(AddContactInput{Name: "John Doe"})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx))

	out, err = s.History(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 2, out.Count)
	require.Equal(t, 2, out.Items[0].ContactCount)
	require.Equal(t, 1, out.Items[1].ContactCount)

	out, err = s.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
}

func TestHistory_JSONBackend(t *testing.T) {
	s, _ := openTestSession(t, nil)
	_, err := s.History(t.Context(), 0)
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}
