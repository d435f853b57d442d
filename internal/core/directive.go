package core

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"confmerge/internal/types"
)

type deleteKind int

const (
	deleteNone deleteKind = iota
	// deleteKeys removes named keys from the base mapping.
	deleteKeys
	// deleteReplaceAll discards the base mapping; the override stands alone.
	deleteReplaceAll
	// deleteClear empties the base list before any other list directive.
	deleteClear
	// deleteIndices removes positions from the base list.
	deleteIndices
)

type deleteDirective struct {
	kind    deleteKind
	keys    []string
	indices []int
}

// parseMappingDelete interprets __delete__ on an override merged into a
// mapping: a string or list names keys, any other truthy value replaces
// the base outright.
func parseMappingDelete(node *yaml.Node) (deleteDirective, error) {
	node = Unwrap(node)
	switch {
	case isNull(node):
		return deleteDirective{}, nil
	case isScalar(node) && node.ShortTag() == tagStr:
		return deleteDirective{kind: deleteKeys, keys: []string{node.Value}}, nil
	case isSequence(node):
		keys := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			item = Unwrap(item)
			if !isScalar(item) {
				return deleteDirective{}, invalidDirective(types.DirectiveDelete, "key list entries must be scalars")
			}
			keys = append(keys, item.Value)
		}
		return deleteDirective{kind: deleteKeys, keys: keys}, nil
	case truthy(node):
		return deleteDirective{kind: deleteReplaceAll}, nil
	}
	return deleteDirective{}, nil
}

// parseListDelete interprets __delete__ on an override merged into a
// list: true clears it, an integer or list of integers names positions.
func parseListDelete(node *yaml.Node) (deleteDirective, error) {
	node = Unwrap(node)
	if isNull(node) {
		return deleteDirective{}, nil
	}
	if value, ok := scalarBool(node); ok {
		if value {
			return deleteDirective{kind: deleteClear}, nil
		}
		return deleteDirective{}, nil
	}
	if index, ok := scalarInt(node); ok {
		return deleteDirective{kind: deleteIndices, indices: []int{index}}, nil
	}
	if !isSequence(node) {
		return deleteDirective{}, invalidDirective(types.DirectiveDelete, "list form must be true, an index or a list of indices")
	}
	indices := make([]int, 0, len(node.Content))
	for _, item := range node.Content {
		index, ok := scalarInt(Unwrap(item))
		if !ok {
			return deleteDirective{}, invalidDirective(types.DirectiveDelete, "index list entries must be integers")
		}
		indices = append(indices, index)
	}
	return deleteDirective{kind: deleteIndices, indices: indices}, nil
}

type changeItem struct {
	index int
	value *yaml.Node
}

type insertItem struct {
	index  int
	value  *yaml.Node
	extend bool
}

// listPatch is the parsed form of a mapping that edits a base list.
type listPatch struct {
	delete  deleteDirective
	changes []changeItem
	inserts []insertItem
	pre     []*yaml.Node
	post    []*yaml.Node
}

var listPatchKeys = map[string]struct{}{
	types.DirectiveDelete:     {},
	types.DirectiveChangeItem: {},
	types.DirectiveInsertItem: {},
	types.DirectivePreItem:    {},
	types.DirectivePostItem:   {},
}

// isListPatch reports whether override would edit a base list. A lone
// __delete__ counts only when the base actually is a list.
func isListPatch(override *yaml.Node, againstList bool) bool {
	if !isMapping(override) {
		return false
	}
	for i := 0; i+1 < len(override.Content); i += 2 {
		key := override.Content[i].Value
		if key == types.DirectiveDelete {
			if againstList {
				return true
			}
			continue
		}
		if _, ok := listPatchKeys[key]; ok {
			return true
		}
	}
	return false
}

func parseListPatch(node *yaml.Node) (listPatch, error) {
	var patch listPatch
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := Unwrap(node.Content[i+1])
		var err error
		switch key {
		case types.DirectiveDelete:
			patch.delete, err = parseListDelete(value)
		case types.DirectiveChangeItem:
			patch.changes, err = parseChangeItems(value)
		case types.DirectiveInsertItem:
			patch.inserts, err = parseInsertItems(value)
		case types.DirectivePreItem:
			patch.pre = listItems(value)
		case types.DirectivePostItem:
			patch.post = listItems(value)
		default:
			err = invalidDirective("list patch", "unexpected key "+strconv.Quote(key))
		}
		if err != nil {
			return listPatch{}, err
		}
	}
	return patch, nil
}

func parseChangeItems(node *yaml.Node) ([]changeItem, error) {
	if !isSequence(node) {
		return nil, invalidDirective(types.DirectiveChangeItem, "expected a list of [index, value] pairs")
	}
	changes := make([]changeItem, 0, len(node.Content))
	for _, entry := range node.Content {
		entry = Unwrap(entry)
		if !isSequence(entry) || len(entry.Content) != 2 {
			return nil, invalidDirective(types.DirectiveChangeItem, "entries must be [index, value] pairs")
		}
		index, ok := scalarInt(Unwrap(entry.Content[0]))
		if !ok {
			return nil, invalidDirective(types.DirectiveChangeItem, "index must be an integer")
		}
		changes = append(changes, changeItem{index: index, value: entry.Content[1]})
	}
	return changes, nil
}

func parseInsertItems(node *yaml.Node) ([]insertItem, error) {
	if !isSequence(node) {
		return nil, invalidDirective(types.DirectiveInsertItem, "expected a list of [index, value] entries")
	}
	inserts := make([]insertItem, 0, len(node.Content))
	for _, entry := range node.Content {
		entry = Unwrap(entry)
		if !isSequence(entry) || len(entry.Content) < 2 || len(entry.Content) > 3 {
			return nil, invalidDirective(types.DirectiveInsertItem, "entries must be [index, value] or [index, value, extend]")
		}
		index, ok := scalarInt(Unwrap(entry.Content[0]))
		if !ok {
			return nil, invalidDirective(types.DirectiveInsertItem, "index must be an integer")
		}
		item := insertItem{index: index, value: Unwrap(entry.Content[1])}
		if len(entry.Content) == 3 {
			item.extend = truthy(entry.Content[2])
		}
		if item.extend && !isSequence(item.value) {
			return nil, invalidDirective(types.DirectiveInsertItem, "cannot extend a non-list")
		}
		inserts = append(inserts, item)
	}
	return inserts, nil
}

// listItems wraps a bare value into a one-element list.
func listItems(node *yaml.Node) []*yaml.Node {
	if isSequence(node) {
		return append([]*yaml.Node(nil), node.Content...)
	}
	if node == nil {
		node = &yaml.Node{Kind: yaml.ScalarNode, Tag: tagNull, Value: "null"}
	}
	return []*yaml.Node{node}
}
