// Package fsutil provides filesystem path helpers shared across hotwatch.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// Canonicalize resolves a path to its canonical identity: absolute,
// symlink-free, and cleaned. Two different spellings of the same file
// canonicalize to the same string. It fails when the path does not name an
// existing regular file.
func Canonicalize(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path %q: %w", path, err)
	}

	resolved, err := filepath.EvalSymlinks(absolute)
	if err != nil {
		return "", fmt.Errorf("resolve symlinks for %q: %w", path, err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("stat %q: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%q is not a regular file", path)
	}

	return filepath.Clean(resolved), nil
}

// IsRegularFile reports whether path currently names a regular file.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
