package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confmerge/internal/adapters"
	"confmerge/internal/app"
)

func withBufferedService(t *testing.T) *bytes.Buffer {
	t.Helper()
	var out bytes.Buffer
	previous := newAppService
	newAppService = func() app.Service {
		service := app.NewService()
		service.Writer = adapters.NewOutputFileAdapter(&out)
		return service
	}
	t.Cleanup(func() { newAppService = previous })
	return &out
}

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveCommandRun(t *testing.T) {
	out := withBufferedService(t)
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "name: base\nworkers: 2\n")
	cfg := writeFile(t, dir, "app.yaml", "__base__: base.yaml\nworkers: 4\n")

	root := newRootCommand()
	root.SetArgs([]string{"resolve", cfg, "--set", "name=override"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "name: override\nworkers: 4\n", out.String())
}

func TestResolveCommandJSON(t *testing.T) {
	out := withBufferedService(t)
	dir := t.TempDir()
	cfg := writeFile(t, dir, "app.yaml", "b: 1\na: [x, y]\n")

	root := newRootCommand()
	root.SetArgs([]string{"resolve", cfg, "--format", "json"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    \"x\",\n    \"y\"\n  ]\n}\n", out.String())
}

func TestMergeCommandRun(t *testing.T) {
	out := withBufferedService(t)
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "items:\n  - a\n  - b\n")
	override := writeFile(t, dir, "override.yaml", "items:\n  post_item: c\n")

	root := newRootCommand()
	root.SetArgs([]string{"merge", base, override})
	require.NoError(t, root.Execute())
	assert.Equal(t, "items:\n  - a\n  - b\n  - c\n", out.String())
}

func TestBasesCommandRun(t *testing.T) {
	withBufferedService(t)
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "a: 1\n")
	cfg := writeFile(t, dir, "app.yaml", "__base__: base.yaml\n")

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"bases", cfg})
	require.NoError(t, root.Execute())
	assert.Equal(t, cfg+"\n  "+base+"\n", out.String())
}

func TestValidateCommandReportsCycle(t *testing.T) {
	withBufferedService(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "__base__: b.yaml\n")
	writeFile(t, dir, "b.yaml", "__base__: a.yaml\n")

	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"validate", filepath.Join(dir, "a.yaml")})
	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, 3, exitCodeForError(err))
}
