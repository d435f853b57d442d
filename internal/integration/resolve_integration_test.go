package integration

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"confmerge/internal/adapters"
	"confmerge/internal/app"
	"confmerge/internal/types"
)

func TestResolveIntegration(t *testing.T) {
	root := repoRoot(t)
	var out bytes.Buffer
	service := app.NewService()
	service.Writer = adapters.NewOutputFileAdapter(&out)

	result, err := service.Resolve(t.Context(), app.ResolveRequest{
		Path:      filepath.Join(root, "fixtures/configs/experiment.yaml"),
		VarsFiles: []string{filepath.Join(root, "fixtures/configs/vars.yaml")},
		Set:       []string{"logging.level=warn"},
	})
	require.NoError(t, err)
	// experiment, shared.jsonc, resnet and base; the second shared.jsonc
	// visit is a cache hit.
	assert.Equal(t, 4, result.Documents)

	var resolved map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &resolved))
	assert.Equal(t, 42, resolved["seed"])
	trainer := resolved["trainer"].(map[string]any)
	assert.Equal(t, []any{"cuda:0", "cuda:1", "tpu"}, trainer["devices"])
	assert.Equal(t, map[string]any{"level": "warn"}, resolved["logging"])
}

func TestValidateFixturesDirectory(t *testing.T) {
	root := repoRoot(t)
	dir := t.TempDir()
	for _, name := range []string{"base.yaml", "shared.jsonc"} {
		data, err := os.ReadFile(filepath.Join(root, "fixtures/configs", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}

	result, err := app.NewService().Validate(t.Context(), app.ValidateRequest{Paths: []string{dir}})
	require.NoError(t, err)
	require.Len(t, result.Documents, 2)
}

func TestMergeIntegrationWritesJSON(t *testing.T) {
	root := repoRoot(t)
	output := filepath.Join(t.TempDir(), "merged.json")

	_, err := app.NewService().Merge(t.Context(), app.MergeRequest{
		Paths: []string{
			filepath.Join(root, "fixtures/configs/base.yaml"),
			filepath.Join(root, "fixtures/configs/vars.yaml"),
		},
		Output: output,
		Format: types.OutputFormatJSON,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"seed": 42`)
	assert.Contains(t, string(data), `"tpu"`)
}

func repoRoot(t *testing.T) string {
	t.Helper()
	root, err := filepath.Abs(filepath.Join("..", ".."))
	require.NoError(t, err)
	return root
}
