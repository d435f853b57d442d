package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"confmerge/internal/types"
)

func parseYAML(t *testing.T, text string) *yaml.Node {
	t.Helper()
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(text), &doc))
	if len(doc.Content) == 0 {
		return NewMapping()
	}
	return doc.Content[0]
}

func encodeYAML(t *testing.T, node *yaml.Node) string {
	t.Helper()
	data, err := yaml.Marshal(node)
	require.NoError(t, err)
	return string(data)
}

// requireTree compares got with the tree written as YAML in want.
func requireTree(t *testing.T, want string, got *yaml.Node) {
	t.Helper()
	wantValue, err := ToValue(parseYAML(t, want))
	require.NoError(t, err)
	gotValue, err := ToValue(got)
	require.NoError(t, err)
	if diff := cmp.Diff(wantValue, gotValue); diff != "" {
		t.Fatalf("unexpected tree (-want +got):\n%s", diff)
	}
}

// requireNoDirectives walks the tree and fails on any directive key.
func requireNoDirectives(t *testing.T, node *yaml.Node) {
	t.Helper()
	node = Unwrap(node)
	if node == nil {
		return
	}
	if isMapping(node) {
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			_, isDirective := directiveKeySet[key]
			require.False(t, isDirective, "directive %q left in tree", key)
			requireNoDirectives(t, node.Content[i+1])
		}
		return
	}
	for _, child := range node.Content {
		requireNoDirectives(t, child)
	}
}

var directiveKeySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(types.DirectiveKeys))
	for _, key := range types.DirectiveKeys {
		set[key] = struct{}{}
	}
	return set
}()
