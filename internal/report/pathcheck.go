package report

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/hpungsan/contactbook/internal/errors"
)

// ValidatePath checks an export destination:
// 1. No directory traversal (..)
// 2. Extension matches the format
// 3. The file itself is not a symlink
func ValidatePath(path string, f Format) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}

	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	exts, ok := extensions[f]
	if !ok {
		return errors.NewInvalidRequest(fmt.Sprintf("unknown export format %q", f))
	}
	cleaned := filepath.Clean(path)
	if !slices.Contains(exts, strings.ToLower(filepath.Ext(cleaned))) {
		return errors.NewInvalidRequest(fmt.Sprintf("path must have one of %v for %s export", exts, f))
	}

	if info, err := os.Lstat(cleaned); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("path must not be a symlink")
		}
	}

	return nil
}

// DefaultPath builds <dir>/<name>-<timestamp><ext> for an export without an
// explicit destination.
func DefaultPath(dir, name string, f Format, now time.Time) string {
	file := fmt.Sprintf("%s-%s%s", SanitizeForFilename(name), now.UTC().Format("20060102-150405"), f.Ext())
	return filepath.Join(dir, file)
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	// Also check for forward slashes on all platforms (e.g., user input)
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}

// SanitizeForFilename makes s safe to embed in a file name.
func SanitizeForFilename(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, "..", "-")

	var result strings.Builder
	for _, r := range s {
		if r >= 32 && r != 127 {
			result.WriteRune(r)
		}
	}
	s = strings.ReplaceAll(result.String(), " ", "-")

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")

	if s == "" {
		s = "contacts"
	}
	return s
}
