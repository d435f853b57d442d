// Package testutil provides shared test helpers used across integration
// and e2e test packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// RepoRoot returns the absolute path to the repository root, two levels
// above the test package directory.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// ConfigFixture returns the absolute path of a file under fixtures/configs.
func ConfigFixture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(RepoRoot(t), "fixtures", "configs", name)
	require.FileExists(t, path)
	return path
}
