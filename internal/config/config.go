package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the name of both the global base directory (~/.contactbook)
// and the per-project config directory.
const DirName = ".contactbook"

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds application configuration.
type Config struct {
	// BookPath is the JSON backing file. Relative paths resolve against the
	// working directory.
	BookPath string `json:"book_path,omitempty"`

	// Backend selects where the book is persisted: "json" (default) or "sqlite".
	// The sqlite backend keeps the database in the base directory.
	Backend string `json:"backend,omitempty"`

	// AutoSave persists the book after every mutating command. The CLI runs
	// one command per process, so false turns it into a read-only dry run:
	// mutating commands print their result and the stored book is left as it
	// was. `save --path` still writes a copy of the loaded book.
	AutoSave *bool `json:"auto_save,omitempty"`

	// ExportDir is the default directory for `export` when no path is given.
	// Empty means <base dir>/exports.
	ExportDir string `json:"export_dir,omitempty"`

	// DBMaxOpenConns limits open SQLite connections. 0 means sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits idle SQLite connections. 0 means sql.DB default.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	autoSave := true
	return &Config{
		BookPath: "contacts_book.json",
		Backend:  BackendJSON,
		AutoSave: &autoSave,
	}
}

// AutoSaveEnabled reports whether mutating commands save immediately.
func (c *Config) AutoSaveEnabled() bool {
	return c.AutoSave == nil || *c.AutoSave
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.Backend {
	case "", BackendJSON, BackendSQLite:
		return nil
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendJSON, BackendSQLite)
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.contactbook.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both the global dir and the nearest
// project .contactbook/config.json found walking upward from startDir.
// Project values take precedence. Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	cfg := Merge(Merge(DefaultConfig(), global), repo)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindRepoConfig walks upward from startDir to find the nearest .contactbook/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, DirName, "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	merged := Merge(DefaultConfig(), cfg)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// Merge combines base and overlay configs. Overlay values win when set.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.BookPath = overlay.BookPath
	if result.BookPath == "" {
		result.BookPath = base.BookPath
	}

	result.Backend = overlay.Backend
	if result.Backend == "" {
		result.Backend = base.Backend
	}

	result.ExportDir = overlay.ExportDir
	if result.ExportDir == "" {
		result.ExportDir = base.ExportDir
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Tri-state: an explicit false in the overlay must win over a base true.
	result.AutoSave = overlay.AutoSave
	if result.AutoSave == nil {
		result.AutoSave = base.AutoSave
	}

	return result
}
