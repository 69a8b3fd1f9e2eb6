package pathutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SafePath joins filename onto baseDir, refusing absolute names and
// anything that would resolve outside baseDir.
func SafePath(baseDir, filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("invalid filename: empty")
	}
	if filepath.IsAbs(filename) {
		return "", fmt.Errorf("invalid filename: absolute paths not allowed")
	}
	if strings.Contains(filepath.Clean(filename), "..") {
		return "", fmt.Errorf("invalid filename: path traversal not allowed")
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for base directory: %w", err)
	}
	full := filepath.Join(absBase, filename)

	// Trailing separator so /foo/bar does not match /foo/barbaz.
	prefix := strings.TrimSuffix(absBase, string(filepath.Separator)) + string(filepath.Separator)
	if full != absBase && !strings.HasPrefix(full, prefix) {
		return "", fmt.Errorf("path outside base directory not allowed")
	}
	return full, nil
}

// ValidateFilePath rejects paths containing traversal segments.
func ValidateFilePath(filePath string) error {
	if filePath == "" {
		return nil
	}
	for _, part := range strings.Split(filepath.ToSlash(filePath), "/") {
		if part == ".." {
			return fmt.Errorf("invalid file path %q: path traversal not allowed", filePath)
		}
	}
	return nil
}
