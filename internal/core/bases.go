package core

import (
	"context"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"confmerge/internal/shared"
	"confmerge/internal/types"
)

// ParseBaseRefs normalises a __base__ value into an ordered list. It
// accepts a single path, a list of paths, and [path, key.path] pairs in
// any mix; null means no bases.
func ParseBaseRefs(node *yaml.Node) ([]types.BaseRef, error) {
	node = Unwrap(node)
	switch {
	case isNull(node):
		return nil, nil
	case isScalar(node):
		return []types.BaseRef{{Path: node.Value}}, nil
	case !isSequence(node):
		return nil, invalidDirective(types.DirectiveBase, "expected a path or a list of paths")
	}

	refs := make([]types.BaseRef, 0, len(node.Content))
	for _, item := range node.Content {
		item = Unwrap(item)
		switch {
		case isScalar(item) && !isNull(item):
			refs = append(refs, types.BaseRef{Path: item.Value})
		case isSequence(item) && len(item.Content) >= 1 && len(item.Content) <= 2:
			ref, err := parseBasePair(item)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		default:
			return nil, invalidDirective(types.DirectiveBase, "entries must be a path or a [path, key] pair")
		}
	}
	return refs, nil
}

func parseBasePair(item *yaml.Node) (types.BaseRef, error) {
	var ref types.BaseRef
	for i, part := range item.Content {
		part = Unwrap(part)
		if !isScalar(part) {
			return types.BaseRef{}, invalidDirective(types.DirectiveBase, "pair members must be scalars")
		}
		if isNull(part) {
			continue
		}
		if i == 0 {
			ref.Path = part.Value
		} else {
			ref.KeyPath = part.Value
		}
	}
	if ref.Path == "" {
		return types.BaseRef{}, invalidDirective(types.DirectiveBase, "pair without a path")
	}
	return ref, nil
}

// resolveBases folds the bases of a document left to right and merges
// the document itself on top. node must already have __base__ removed.
func (s *Session) resolveBases(ctx context.Context, node *yaml.Node, raw *yaml.Node, id types.DocumentRef, depth int) (*yaml.Node, error) {
	refs, err := ParseBaseRefs(raw)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return node, nil
	}

	accumulated := NewMapping()
	for _, ref := range refs {
		path := shared.RelativeTo(string(id), ref.Path)
		tree, baseID, err := s.resolveReference(ctx, path, depth+1, ref.KeyPath)
		if err != nil {
			return nil, err
		}
		subtree, err := Lookup(baseID, tree, ref.KeyPath)
		if err != nil {
			return nil, err
		}
		accumulated, err = merge(accumulated, subtree)
		if err != nil {
			return nil, err
		}
		log.Ctx(ctx).Debug().
			Str("document", string(id)).
			Str("base", string(baseID)).
			Str("key_path", ref.KeyPath).
			Msg("base merged")
	}
	return merge(accumulated, node)
}
