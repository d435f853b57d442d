package adapters

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"confmerge/internal/ports"
	"confmerge/internal/shared"
)

// DiscoveryAdapter finds config documents under a directory tree.
type DiscoveryAdapter struct{}

func NewDiscoveryAdapter() DiscoveryAdapter {
	return DiscoveryAdapter{}
}

// FindConfigs returns every YAML, JSON and JSONC file below root in walk
// order, skipping VCS and build directories.
func (a DiscoveryAdapter) FindConfigs(root string) ([]string, error) {
	var paths []string
	if root == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("config directory is empty")
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && shouldSkipConfigDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isConfigFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to scan config directory: " + root).
			WithCause(err)
	}
	return paths, nil
}

func shouldSkipConfigDir(name string) bool {
	switch name {
	case ".git", ".hg", ".svn", "node_modules", "vendor", "testdata":
		return true
	}
	return strings.HasPrefix(name, ".")
}

func isConfigFile(path string) bool {
	switch shared.FileExtension(path) {
	case "yaml", "yml", "json", "jsonc":
		return true
	}
	return false
}

var _ ports.DiscoveryPort = DiscoveryAdapter{}
