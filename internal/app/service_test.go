package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"confmerge/internal/adapters"
	"confmerge/internal/core"
)

func newMemoryService(t *testing.T, docs map[string]string) (Service, *bytes.Buffer) {
	t.Helper()
	source := adapters.NewMemorySourceAdapter()
	for path, text := range docs {
		source.Add(path, text)
	}
	var out bytes.Buffer
	return Service{
		Source: source,
		Writer: adapters.NewOutputFileAdapter(&out),
		Stdin:  strings.NewReader(""),
	}, &out
}

func requireYAML(t *testing.T, want string, got string) {
	t.Helper()
	var wantValue, gotValue any
	require.NoError(t, yaml.Unmarshal([]byte(want), &wantValue))
	require.NoError(t, yaml.Unmarshal([]byte(got), &gotValue))
	if diff := cmp.Diff(wantValue, gotValue); diff != "" {
		t.Fatalf("unexpected document (-want +got):\n%s", diff)
	}
}

func TestServiceResolve(t *testing.T) {
	service, out := newMemoryService(t, map[string]string{
		"/cfg/base.yaml": "a: 1\nb: 2\n",
		"/cfg/app.yaml":  "__base__: base.yaml\nb: 3\n",
	})
	result, err := service.Resolve(t.Context(), ResolveRequest{Path: "/cfg/app.yaml"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Documents)
	assert.Equal(t, "-", result.Output)
	assert.Equal(t, "a: 1\nb: 3\n", out.String())
}

func TestServiceResolveWithOverrides(t *testing.T) {
	service, out := newMemoryService(t, map[string]string{
		"/cfg/app.yaml":  "name: app\ntags: [a]\nmodel: {layers: 2}\n",
		"/cfg/vars.yaml": "tags: {post_item: b}\nmodel: {layers: 4}\n",
		"/cfg/more.yaml": "tags: {post_item: c}\n",
	})
	_, err := service.Resolve(t.Context(), ResolveRequest{
		Path:      "/cfg/app.yaml",
		VarsFiles: []string{"/cfg/vars.yaml", "/cfg/more.yaml"},
		Set:       []string{"model.layers=8", "model.act=gelu", "name="},
	})
	require.NoError(t, err)
	requireYAML(t, "name: ''\ntags: [a, c]\nmodel: {layers: 8, act: gelu}\n", out.String())
}

func TestServiceResolveOverrideKeepsDocumentPatch(t *testing.T) {
	docs := map[string]string{
		"/cfg/app.yaml":  "list: {post_item: a}\n",
		"/cfg/vars.yaml": "list: {post_item: b}\n",
	}
	req := ResolveRequest{VarsFiles: []string{"/cfg/vars.yaml"}, Format: "json"}

	service, fromFile := newMemoryService(t, docs)
	req.Path = "/cfg/app.yaml"
	_, err := service.Resolve(t.Context(), req)
	require.NoError(t, err)

	service, fromStdin := newMemoryService(t, docs)
	service.Stdin = strings.NewReader(docs["/cfg/app.yaml"])
	req.Path = "-"
	_, err = service.Resolve(t.Context(), req)
	require.NoError(t, err)

	requireYAML(t, "list: [a, b]\n", fromFile.String())
	assert.Equal(t, fromFile.String(), fromStdin.String())
}

func TestServiceResolveStdin(t *testing.T) {
	service, out := newMemoryService(t, map[string]string{
		"/cfg/base.yaml": "a: 1\n",
	})
	service.Stdin = strings.NewReader("__base__: /cfg/base.yaml\nb: 2\n")
	_, err := service.Resolve(t.Context(), ResolveRequest{Path: "-", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": 2\n}\n", out.String())
}

func TestServiceResolveWritesFile(t *testing.T) {
	service, out := newMemoryService(t, map[string]string{
		"/cfg/app.yaml": "a: 1\n",
	})
	output := filepath.Join(t.TempDir(), "resolved.yaml")
	result, err := service.Resolve(t.Context(), ResolveRequest{Path: "/cfg/app.yaml", Output: output})
	require.NoError(t, err)
	assert.Equal(t, output, result.Output)
	assert.FileExists(t, output)
	assert.Empty(t, out.String())
}

func TestServiceResolveErrors(t *testing.T) {
	service, out := newMemoryService(t, map[string]string{
		"/cfg/a.yaml": "__base__: b.yaml\n",
		"/cfg/b.yaml": "__base__: a.yaml\n",
	})

	_, err := service.Resolve(t.Context(), ResolveRequest{})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	_, err = service.Resolve(t.Context(), ResolveRequest{Path: "/cfg/a.yaml"})
	var cycle *core.CircularReferenceError
	require.ErrorAs(t, err, &cycle)

	_, err = service.Resolve(t.Context(), ResolveRequest{Path: "/cfg/missing.yaml"})
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))

	_, err = service.Resolve(t.Context(), ResolveRequest{Path: "/cfg/b.yaml", Set: []string{"novalue"}})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	assert.Empty(t, out.String())
}

func TestServiceMerge(t *testing.T) {
	service, out := newMemoryService(t, map[string]string{
		"/cfg/base.yaml":  "a: 1\nlist: [x, y]\n",
		"/cfg/one.yaml":   "list: {__delete__: [0]}\nb: 2\n",
		"/cfg/two.yaml":   "list: {post_item: z}\n",
		"/cfg/based.yaml": "__base__: base.yaml\n",
	})
	result, err := service.Merge(t.Context(), MergeRequest{
		Paths: []string{"/cfg/base.yaml", "/cfg/one.yaml", "/cfg/two.yaml"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Merged)
	requireYAML(t, "a: 1\nlist: [y, z]\nb: 2\n", out.String())

	_, err = service.Merge(t.Context(), MergeRequest{Paths: []string{"/cfg/base.yaml"}})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	_, err = service.Merge(t.Context(), MergeRequest{Paths: []string{"/cfg/base.yaml", "/cfg/based.yaml"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "__base__")
}

func TestServiceBases(t *testing.T) {
	service, _ := newMemoryService(t, map[string]string{
		"/cfg/shared.yaml": "x: 1\n",
		"/cfg/b.yaml":      "__base__: shared.yaml\n",
		"/cfg/a.yaml":      "__base__: [b.yaml, shared.yaml]\n",
	})
	result, err := service.Bases(t.Context(), BasesRequest{Path: "/cfg/a.yaml"})
	require.NoError(t, err)
	require.Len(t, result.Documents, 4)
	assert.Equal(t, 0, result.Documents[0].Depth)
	assert.Equal(t, 2, result.Documents[2].Depth)
	assert.True(t, result.Documents[3].Cached)
}

func TestServiceValidate(t *testing.T) {
	service, out := newMemoryService(t, map[string]string{
		"/cfg/base.yaml": "a: 1\n",
		"/cfg/app.yaml":  "__base__: base.yaml\n",
		"/cfg/bad.yaml":  "list: {post_item: x, __delete__: [a]}\n",
	})
	result, err := service.Validate(t.Context(), ValidateRequest{Paths: []string{"/cfg/app.yaml", "/cfg/base.yaml"}})
	require.NoError(t, err)
	want := []ValidatedDocument{
		{Path: "/cfg/app.yaml", Bases: 1},
		{Path: "/cfg/base.yaml", Bases: 0},
	}
	if diff := cmp.Diff(want, result.Documents); diff != "" {
		t.Fatalf("unexpected validation result (-want +got):\n%s", diff)
	}
	assert.Empty(t, out.String())

	_, err = service.Validate(t.Context(), ValidateRequest{Paths: []string{"/cfg/app.yaml", "/cfg/bad.yaml"}})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	_, err = service.Validate(t.Context(), ValidateRequest{})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestParseAssignment(t *testing.T) {
	node, err := parseAssignment("model.layers=[1, 2]")
	require.NoError(t, err)
	var value any
	require.NoError(t, node.Decode(&value))
	assert.Equal(t, map[string]any{"model": map[string]any{"layers": []any{1, 2}}}, value)

	for _, raw := range []string{"novalue", "=1", "a..b=1"} {
		_, err := parseAssignment(raw)
		require.Error(t, err, raw)
		assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err), raw)
	}
}

func TestServiceValidateDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte("a: 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), []byte("__base__: base.yaml\n"), 0o644))

	service := NewService()
	result, err := service.Validate(t.Context(), ValidateRequest{Paths: []string{dir}})
	require.NoError(t, err)
	want := []ValidatedDocument{
		{Path: filepath.Join(dir, "app.yaml"), Bases: 1},
		{Path: filepath.Join(dir, "base.yaml"), Bases: 0},
	}
	if diff := cmp.Diff(want, result.Documents); diff != "" {
		t.Fatalf("unexpected validation result (-want +got):\n%s", diff)
	}
}
