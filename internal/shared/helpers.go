// Package shared provides common utility functions used across multiple
// packages in the confmerge codebase.
package shared

import (
	"fmt"
	"path/filepath"
	"strings"
)

// AbsolutePath cleans a path and makes it absolute against the working
// directory. Two paths naming the same file through different spellings
// map to the same result.
func AbsolutePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("empty path")
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// RelativeTo resolves target against the directory containing from.
// Absolute targets and an empty from are returned unchanged.
func RelativeTo(from string, target string) string {
	target = strings.TrimSpace(target)
	if from == "" || filepath.IsAbs(target) {
		return target
	}
	return filepath.Clean(filepath.Join(filepath.Dir(from), target))
}

// FileExtension returns the lowercased extension of path without the dot.
func FileExtension(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
