package core

import (
	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"confmerge/internal/types"
)

// Merge combines base and override into a new tree; override wins on
// conflicting scalars and on type mismatches. Neither input is modified
// and the result carries no directive keys.
//
// Mapping overrides may carry __delete__ to drop base keys (string or
// list) or to discard the base entirely (any other truthy value). A
// mapping merged onto a list is a list patch, see applyListPatch.
func Merge(base, override *yaml.Node) (*yaml.Node, error) {
	merged, err := merge(Clone(base), Clone(override))
	if err != nil {
		return nil, err
	}
	return Normalize(merged)
}

// merge works on trees it owns and may reuse their nodes. Directives
// that find nothing to act on are kept, so a later merge can still apply
// them; Normalize settles whatever is left.
func merge(base, override *yaml.Node) (*yaml.Node, error) {
	switch {
	case isMapping(base) && isMapping(override):
		if isListPatch(override, false) {
			if isListPatch(base, false) {
				return mergePatches(base, override), nil
			}
			return nil, invalidDirective("list patch", "list directives cannot be applied to a mapping")
		}
		return mergeMappings(base, override)
	case isSequence(base) && isListPatch(override, true):
		return applyListPatch(base, override)
	}
	return override, nil
}

func mergeMappings(base, override *yaml.Node) (*yaml.Node, error) {
	if raw, ok := MappingTake(override, types.DirectiveDelete); ok {
		directive, err := parseMappingDelete(raw)
		if err != nil {
			return nil, err
		}
		switch directive.kind {
		case deleteKeys:
			for _, key := range directive.keys {
				MappingDelete(base, key)
			}
		case deleteReplaceAll:
			return stripImports(override)
		}
	}

	for i := 0; i+1 < len(override.Content); i += 2 {
		key := override.Content[i].Value
		value := Unwrap(override.Content[i+1])
		switch key {
		case types.DirectiveImport:
			continue
		case types.DirectiveBase:
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unresolved __base__ directive in merge override")
		}

		existing, pos := MappingGet(base, key)
		if pos < 0 {
			base.Content = append(base.Content, override.Content[i], value)
			continue
		}
		if !isMapping(value) {
			base.Content[2*pos+1] = value
			continue
		}
		merged, err := merge(Unwrap(existing), value)
		if err != nil {
			return nil, err
		}
		base.Content[2*pos+1] = merged
	}
	return base, nil
}

// mergePatches combines two pending list patches key by key; the later
// patch wins for each directive it sets.
func mergePatches(base, override *yaml.Node) *yaml.Node {
	for i := 0; i+1 < len(override.Content); i += 2 {
		MappingSet(base, override.Content[i].Value, override.Content[i+1])
	}
	return base
}

// Normalize settles the directives left in a tree by applying each one
// to an empty base: list patches build a new list, __delete__ drops
// nothing. The result contains no directive keys.
func Normalize(node *yaml.Node) (*yaml.Node, error) {
	node = Unwrap(node)
	switch {
	case node == nil:
		return nil, nil
	case isListPatch(node, false):
		patched, err := applyListPatch(NewSequence(), node)
		if err != nil {
			return nil, err
		}
		return Normalize(patched)
	case isMapping(node):
		if _, pos := MappingGet(node, types.DirectiveBase); pos >= 0 {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unresolved __base__ directive")
		}
		settled, err := mergeMappings(emptyLike(node), node)
		if err != nil {
			return nil, err
		}
		for i := 1; i < len(settled.Content); i += 2 {
			value, err := Normalize(settled.Content[i])
			if err != nil {
				return nil, err
			}
			settled.Content[i] = value
		}
		return settled, nil
	case isSequence(node):
		for i, item := range node.Content {
			value, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			node.Content[i] = value
		}
	}
	return node, nil
}

// stripImports drops the legacy __import__ key from a mapping.
func stripImports(node *yaml.Node) (*yaml.Node, error) {
	MappingDelete(node, types.DirectiveImport)
	return node, nil
}

func emptyLike(node *yaml.Node) *yaml.Node {
	return &yaml.Node{
		Kind:        node.Kind,
		Tag:         node.Tag,
		Style:       node.Style,
		HeadComment: node.HeadComment,
		LineComment: node.LineComment,
		FootComment: node.FootComment,
		Line:        node.Line,
		Column:      node.Column,
	}
}

// Overlay merges like Merge but keeps directives that found nothing to
// act on, so the result can itself be used as an override later.
func Overlay(base, override *yaml.Node) (*yaml.Node, error) {
	return merge(Clone(base), Clone(override))
}
