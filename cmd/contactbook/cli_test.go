package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hpungsan/contactbook/internal/config"
	"github.com/hpungsan/contactbook/internal/errors"
)

// testEnv returns an env whose book lives in a temp dir.
func testEnv(t *testing.T) *appEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.BookPath = filepath.Join(dir, "book.json")
	return &appEnv{
		baseDir: dir,
		cfg:     cfg,
		logger:  zap.NewNop(),
		now:     func() time.Time { return time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC) },
	}
}

// runCLI runs one invocation and returns its stdout.
func runCLI(t *testing.T, env *appEnv, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	env.out = &out
	app := newCLIApp(env)
	err := app.Run(append([]string{"contactbook"}, args...))
	return out.String(), err
}

// mustRun runs one invocation and fails the test on error.
func mustRun(t *testing.T, env *appEnv, args ...string) string {
	t.Helper()
	out, err := runCLI(t, env, args...)
	require.NoError(t, err, "contactbook %v", args)
	return out
}

func decode(t *testing.T, out string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m), "output: %s", out)
	return m
}

func TestCLIAddAndShow(t *testing.T) {
	env := testEnv(t)

	out := mustRun(t, env, "add", "--phone", "0987654321", "--phone", "1234567890", "John Doe")
	result := decode(t, out)
	require.Equal(t, false, result["replaced"])

	// Separate invocation reads the saved book.
	out = mustRun(t, env, "show", "john doe")
	result = decode(t, out)
	require.Equal(t, "John Doe", result["name"])
	require.Equal(t, []any{"0987654321", "1234567890"}, result["phones"])
	require.Nil(t, result["email"])
	require.Equal(t,
		"Contact name: John Doe, phones: 0987654321; 1234567890, email: not set, birthday: not set, notes: , address: not set",
		result["summary"])
}

func TestCLIAddReplacesExisting(t *testing.T) {
	env := testEnv(t)

	mustRun(t, env, "add", "--phone", "1111111111", "John", "Doe")
	mustRun(t, env, "note", "add", "John Doe", "Call", "back")

	result := decode(t, mustRun(t, env, "add", "--phone", "2222222222", "john doe"))
	require.Equal(t, true, result["replaced"])

	result = decode(t, mustRun(t, env, "show", "John Doe"))
	require.Equal(t, []any{"2222222222"}, result["phones"])
	require.Empty(t, result["notes"])

	result = decode(t, mustRun(t, env, "names"))
	require.Equal(t, float64(1), result["count"])
}

func TestCLIAddMultiWordName(t *testing.T) {
	env := testEnv(t)

	result := decode(t, mustRun(t, env, "add", "--phone", "0987654321", "Jane", "Smith"))
	added := result["contact"].(map[string]any)
	require.Equal(t, "Jane Smith", added["name"])

	_, err := runCLI(t, env, "add", "--phone", "0987654321")
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "[INVALID_REQUEST] "), "got %q", err.Error())
}

func TestCLIErrorFormat(t *testing.T) {
	env := testEnv(t)

	_, err := runCLI(t, env, "add", "--phone", "123", "Jane")
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "[INVALID_PHONE] "), "got %q", err.Error())

	_, err = runCLI(t, env, "show")
	require.EqualError(t, err, "[INVALID_REQUEST] NAME is required")

	_, err = runCLI(t, env, "show", "Nobody")
	require.True(t, strings.HasPrefix(err.Error(), "[NOT_FOUND] "))

	_, err = runCLI(t, env, "note", "delete", "Nobody", "x")
	require.True(t, strings.HasPrefix(err.Error(), "[INVALID_REQUEST] index must be an integer"))

	// Nothing was written by the failed commands.
	_, statErr := os.Stat(env.cfg.BookPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestCLIFieldCommands(t *testing.T) {
	env := testEnv(t)
	mustRun(t, env, "add", "Jane")

	mustRun(t, env, "phone", "add", "Jane", "0987654321")
	mustRun(t, env, "phone", "edit", "Jane", "0", "1111111111")
	out := mustRun(t, env, "phone", "show", "Jane")
	require.Equal(t, []any{"1111111111"}, decode(t, out)["phones"])

	mustRun(t, env, "birthday", "set", "Jane", "24.03.1990")
	out = mustRun(t, env, "birthday", "show", "Jane")
	require.Equal(t, "24.03.1990", decode(t, out)["value"])

	mustRun(t, env, "email", "add", "Jane", "jane@example.com")
	_, err := runCLI(t, env, "email", "delete", "Jane", "other@example.com")
	require.True(t, strings.HasPrefix(err.Error(), "[NOT_FOUND] "))
	mustRun(t, env, "email", "delete", "Jane", "jane@example.com")

	mustRun(t, env, "address", "add", "Jane", "123", "Main", "St")
	out = mustRun(t, env, "address", "show", "Jane")
	require.Equal(t, "123 Main St", decode(t, out)["address"])
	mustRun(t, env, "address", "delete", "Jane")
	_, err = runCLI(t, env, "address", "edit", "Jane", "Elsewhere")
	require.True(t, strings.HasPrefix(err.Error(), "[NO_ADDRESS] "))
}

func TestCLINotesAndTags(t *testing.T) {
	env := testEnv(t)
	mustRun(t, env, "add", "Jane")
	mustRun(t, env, "add", "amy")

	mustRun(t, env, "note", "add", "--tags", "#urgent #work", "Jane", "Meeting", "tomorrow")
	mustRun(t, env, "note", "add", "--tags", "#urgent", "amy", "Call")

	out := mustRun(t, env, "tag", "add", "Jane", "0", "work")
	require.Equal(t, "already exists", decode(t, out)["outcome"])

	out = mustRun(t, env, "tag", "remove", "Jane", "0", "#work")
	require.Equal(t, "removed", decode(t, out)["outcome"])

	out = mustRun(t, env, "sort-by-tag", "#urgent")
	require.Equal(t, []any{"amy", "Jane"}, decode(t, out)["names"])

	out = mustRun(t, env, "find", "--tag", "#work")
	require.Equal(t, float64(0), decode(t, out)["count"])

	_, err := runCLI(t, env, "note", "edit", "--tags", "bad", "Jane", "0", "New text")
	require.True(t, strings.HasPrefix(err.Error(), "[INVALID_HASHTAG] "))

	mustRun(t, env, "note", "delete", "Jane", "0")
	out = mustRun(t, env, "show", "Jane")
	require.Empty(t, decode(t, out)["notes"])
}

func TestCLIBirthdays(t *testing.T) {
	env := testEnv(t)
	mustRun(t, env, "add", "C")
	mustRun(t, env, "birthday", "set", "C", "10.06.2000")

	// env.now is Monday 2024-06-10.
	out := mustRun(t, env, "birthdays")
	result := decode(t, out)
	require.Equal(t, "10.06.2024", result["today"])
	require.Equal(t, []any{"C"}, result["labels"])

	out = mustRun(t, env, "birthdays", "--today", "01.01.2024")
	require.Empty(t, decode(t, out)["labels"])

	out = mustRun(t, env, "birthdays", "--markdown")
	require.Contains(t, out, "### Monday")
	require.Contains(t, out, "- C (10.06.2024)")

	_, err := runCLI(t, env, "birthdays", "--today", "2024-06-10")
	require.True(t, strings.HasPrefix(err.Error(), "[INVALID_DATE] "))
}

func TestCLIFileOverride(t *testing.T) {
	env := testEnv(t)
	other := filepath.Join(t.TempDir(), "other.json")

	mustRun(t, env, "--file", other, "add", "Jane")

	_, err := os.Stat(other)
	require.NoError(t, err)
	_, err = os.Stat(env.cfg.BookPath)
	require.True(t, os.IsNotExist(err), "configured book must be untouched")

	out := mustRun(t, env, "--file", other, "names")
	require.Equal(t, []any{"Jane"}, decode(t, out)["names"])
}

func TestCLISaveImportExport(t *testing.T) {
	env := testEnv(t)
	mustRun(t, env, "add", "--phone", "0987654321", "Jane")

	copyPath := filepath.Join(t.TempDir(), "copy.json")
	out := mustRun(t, env, "save", "--path", copyPath)
	require.Equal(t, copyPath, decode(t, out)["path"])

	mustRun(t, env, "delete", "Jane")
	out = mustRun(t, env, "all")
	require.Equal(t, float64(0), decode(t, out)["count"])

	out = mustRun(t, env, "import", copyPath)
	require.Equal(t, float64(1), decode(t, out)["count"])
	out = mustRun(t, env, "names")
	require.Equal(t, []any{"Jane"}, decode(t, out)["names"])

	exportPath := filepath.Join(t.TempDir(), "book.html")
	mustRun(t, env, "export", "--format", "html", "--path", exportPath)
	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "<h2>Jane</h2>")
}

func TestCLISQLiteBackend(t *testing.T) {
	env := testEnv(t)
	env.cfg.Backend = config.BackendSQLite

	mustRun(t, env, "add", "--phone", "0987654321", "Jane")
	out := mustRun(t, env, "show", "Jane")
	require.Equal(t, []any{"0987654321"}, decode(t, out)["phones"])

	_, err := os.Stat(filepath.Join(env.baseDir, "contacts.db"))
	require.NoError(t, err)
	_, err = os.Stat(env.cfg.BookPath)
	require.True(t, os.IsNotExist(err))

	mustRun(t, env, "add", "John")
	result := decode(t, mustRun(t, env, "history", "--limit", "5"))
	require.Equal(t, float64(2), result["count"])
	latest := result["items"].([]any)[0].(map[string]any)
	require.Equal(t, float64(2), latest["contact_count"])
}

func TestCLIAutoSaveOffIsReadOnly(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	env := testEnv(t)
	env.logger = zap.New(core)
	off := false
	env.cfg.AutoSave = &off

	result := decode(t, mustRun(t, env, "add", "--phone", "0987654321", "Jane"))
	require.Equal(t, "Jane", result["contact"].(map[string]any)["name"])
	require.Equal(t, 1, logs.FilterMessage("read-only mode (auto_save is off): changes were not saved").Len())

	_, err := os.Stat(env.cfg.BookPath)
	require.True(t, os.IsNotExist(err))
	_, err = runCLI(t, env, "show", "Jane")
	require.True(t, strings.HasPrefix(err.Error(), "[NOT_FOUND] "), "got %q", err.Error())
}

func TestCLIHistoryNeedsSQLite(t *testing.T) {
	env := testEnv(t)
	_, err := runCLI(t, env, "history")
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "[INVALID_REQUEST] "), "got %q", err.Error())
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"12", 12, false},
		{"-1", -1, false},
		{"one", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseIndex(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseIndex(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseIndex(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestFailLogsInternalErrorsOnly(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	env := testEnv(t)
	env.logger = zap.New(core)

	err := env.fail(errors.NewInvalidPhone("12"))
	require.True(t, strings.HasPrefix(err.Error(), "[INVALID_PHONE] "))
	require.Equal(t, 0, logs.Len())

	err = env.fail(errors.NewInternal(os.ErrClosed))
	require.True(t, strings.HasPrefix(err.Error(), "[INTERNAL] "), "got %q", err.Error())
	require.Equal(t, 1, logs.FilterMessage("command failed").Len())
}
