package core

import (
	"sort"

	"gopkg.in/yaml.v3"

	"confmerge/internal/types"
)

// applyListPatch edits base with the directives in override, in a fixed
// order: clear, change_item, insert_item, __delete__ indices, then
// pre_item and post_item. Insert shifts the pending delete indices so
// they keep pointing at the elements they named in the original list.
func applyListPatch(base, override *yaml.Node) (*yaml.Node, error) {
	patch, err := parseListPatch(override)
	if err != nil {
		return nil, err
	}

	items := append([]*yaml.Node(nil), base.Content...)
	deletes := patch.delete

	if deletes.kind == deleteClear {
		items = nil
	}

	for _, change := range patch.changes {
		index := change.index
		if index < 0 {
			index += len(items)
		}
		if index < 0 || index >= len(items) {
			return nil, &IndexRangeError{Directive: types.DirectiveChangeItem, Index: change.index, Length: len(items)}
		}
		merged, err := merge(Unwrap(items[index]), Unwrap(change.value))
		if err != nil {
			return nil, err
		}
		items[index] = merged
	}

	if len(patch.inserts) > 0 {
		items, err = applyInserts(items, patch.inserts, &deletes)
		if err != nil {
			return nil, err
		}
	}

	if deletes.kind == deleteIndices {
		items, err = deleteIndicesFrom(items, deletes.indices)
		if err != nil {
			return nil, err
		}
	}

	if patch.pre != nil {
		items = append(patch.pre, items...)
	}
	if patch.post != nil {
		items = append(items, patch.post...)
	}

	result := emptyLike(base)
	result.Kind = yaml.SequenceNode
	if result.Tag == "" {
		result.Tag = tagSeq
	}
	result.Content = items
	return result, nil
}

// applyInserts places insert_item entries. Indices are normalised against
// the list length first; entries before the start are prepended, entries
// past the end appended, and the rest inserted from the highest index
// down so earlier positions stay valid.
func applyInserts(items []*yaml.Node, inserts []insertItem, deletes *deleteDirective) ([]*yaml.Node, error) {
	length := len(items)
	ordered := make([]insertItem, len(inserts))
	copy(ordered, inserts)
	for i := range ordered {
		if ordered[i].index < 0 {
			ordered[i].index += length
		}
	}

	if deletes.kind == deleteIndices {
		for i, index := range deletes.indices {
			if index >= 0 {
				continue
			}
			if index < -length {
				return nil, &IndexRangeError{Directive: types.DirectiveDelete, Index: index, Length: length}
			}
			deletes.indices[i] = index + length
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].index < ordered[j].index
	})

	var prefix, suffix []*yaml.Node
	var inRange []placement
	for _, item := range ordered {
		values := insertValues(item)
		switch {
		case item.index < 0:
			prefix = append(prefix, values...)
		case item.index >= length:
			suffix = append(suffix, values...)
		default:
			inRange = append(inRange, placement{index: item.index, values: values})
		}
	}

	for i := len(inRange) - 1; i >= 0; i-- {
		place := inRange[i]
		items = spliceAt(items, place.index, place.values)
		if deletes.kind == deleteIndices {
			for j, index := range deletes.indices {
				if index >= place.index {
					deletes.indices[j] = index + len(place.values)
				}
			}
		}
	}

	if len(prefix) > 0 && deletes.kind == deleteIndices {
		for j := range deletes.indices {
			deletes.indices[j] += len(prefix)
		}
	}

	out := make([]*yaml.Node, 0, len(prefix)+len(items)+len(suffix))
	out = append(out, prefix...)
	out = append(out, items...)
	out = append(out, suffix...)
	return out, nil
}

type placement struct {
	index  int
	values []*yaml.Node
}

// insertValues returns the elements an entry contributes: the members of
// its value when extend is set, the value itself otherwise.
func insertValues(item insertItem) []*yaml.Node {
	if item.extend {
		return append([]*yaml.Node(nil), item.value.Content...)
	}
	return []*yaml.Node{item.value}
}

func spliceAt(items []*yaml.Node, index int, values []*yaml.Node) []*yaml.Node {
	out := make([]*yaml.Node, 0, len(items)+len(values))
	out = append(out, items[:index]...)
	out = append(out, values...)
	out = append(out, items[index:]...)
	return out
}

// deleteIndicesFrom removes each distinct index, highest first.
func deleteIndicesFrom(items []*yaml.Node, indices []int) ([]*yaml.Node, error) {
	length := len(items)
	unique := make(map[int]struct{}, len(indices))
	for _, index := range indices {
		original := index
		if index < 0 {
			index += length
		}
		if index < 0 || index >= length {
			return nil, &IndexRangeError{Directive: types.DirectiveDelete, Index: original, Length: length}
		}
		unique[index] = struct{}{}
	}
	ordered := make([]int, 0, len(unique))
	for index := range unique {
		ordered = append(ordered, index)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ordered)))
	for _, index := range ordered {
		items = append(items[:index], items[index+1:]...)
	}
	return items, nil
}
