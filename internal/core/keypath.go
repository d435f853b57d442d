package core

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"confmerge/internal/types"
)

// Lookup descends a dotted key path. Empty segments are skipped, so ""
// selects the whole tree. Numeric segments index into sequences.
func Lookup(ref types.DocumentRef, tree *yaml.Node, keyPath string) (*yaml.Node, error) {
	current := Unwrap(tree)
	for _, segment := range strings.Split(keyPath, ".") {
		if segment == "" {
			continue
		}
		next, ok := child(current, segment)
		if !ok {
			return nil, &KeyPathError{Ref: ref, KeyPath: keyPath, Segment: segment}
		}
		current = next
	}
	return current, nil
}

func child(node *yaml.Node, segment string) (*yaml.Node, bool) {
	switch {
	case isMapping(node):
		value, pos := MappingGet(node, segment)
		return Unwrap(value), pos >= 0
	case isSequence(node):
		index, err := strconv.Atoi(segment)
		if err != nil || index < 0 || index >= len(node.Content) {
			return nil, false
		}
		return Unwrap(node.Content[index]), true
	}
	return nil, false
}
