package core

import (
	"context"
	"fmt"
	"sync/atomic"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"confmerge/internal/ports"
	"confmerge/internal/shared"
	"confmerge/internal/types"
)

const DefaultMaxDepth = 64

// Engine resolves configuration documents: it expands __base__
// inheritance, applies merge directives and returns fully inlined trees.
//
// The Engine methods start a fresh Session for every call, so separate
// calls never share cache state. Use NewSession to resolve several
// documents against one cache.
type Engine struct {
	Source     ports.DocumentSourcePort
	MaxDepth   int
	OnDocument func(types.DocumentEvent)
}

func NewEngine(source ports.DocumentSourcePort) Engine {
	return Engine{
		Source:   source,
		MaxDepth: DefaultMaxDepth,
	}
}

// WithMaxDepth bounds how deep __base__ chains may nest.
func (e Engine) WithMaxDepth(depth int) Engine {
	e.MaxDepth = depth
	return e
}

// WithDocumentHook registers a callback invoked whenever a document is
// entered, including cache hits.
func (e Engine) WithDocumentHook(hook func(types.DocumentEvent)) Engine {
	e.OnDocument = hook
	return e
}

func (e Engine) NewSession() *Session {
	return &Session{engine: e, cache: NewResolutionCache()}
}

func (e Engine) ResolveByReference(ctx context.Context, ref string) (*yaml.Node, error) {
	return e.NewSession().ResolveByReference(ctx, ref)
}

func (e Engine) ResolveWithOverride(ctx context.Context, ref string, override *yaml.Node) (*yaml.Node, error) {
	return e.NewSession().ResolveWithOverride(ctx, ref, override)
}

func (e Engine) ResolveByText(ctx context.Context, text string, ref string, override *yaml.Node) (*yaml.Node, error) {
	return e.NewSession().ResolveByText(ctx, text, ref, override)
}

// Session owns one resolution cache. Documents resolved through the same
// session are read once; later requests get copies of the cached tree.
// A session may be reused sequentially but not concurrently.
type Session struct {
	engine Engine
	cache  *ResolutionCache
	busy   atomic.Bool
}

// ResolveByReference reads the document at ref and resolves it.
func (s *Session) ResolveByReference(ctx context.Context, ref string) (*yaml.Node, error) {
	return s.ResolveWithOverride(ctx, ref, nil)
}

// ResolveWithOverride resolves the document at ref and merges override on
// top of the settled result. The override is not cached.
func (s *Session) ResolveWithOverride(ctx context.Context, ref string, override *yaml.Node) (*yaml.Node, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.busy.Store(false)

	tree, _, err := s.resolveReference(ctx, ref, 0, "")
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, tree, override)
}

// ResolveByText resolves a document given as text. A non-empty ref names
// the document for relative bases, caching and cycle detection. override
// is applied as in ResolveWithOverride.
func (s *Session) ResolveByText(ctx context.Context, text string, ref string, override *yaml.Node) (*yaml.Node, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.busy.Store(false)

	tree, err := s.resolveText(ctx, text, ref)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, tree, override)
}

// Cache exposes the session cache, mainly for inspection in tests.
func (s *Session) Cache() *ResolutionCache {
	return s.cache
}

func (s *Session) acquire() error {
	if s.engine.Source == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resolver requires a document source")
	}
	if !s.busy.CompareAndSwap(false, true) {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("resolution session is already in use")
	}
	return nil
}

// finish settles pending directives so the override sees the resolved
// document, never the document's own list patches.
func (s *Session) finish(ctx context.Context, tree *yaml.Node, override *yaml.Node) (*yaml.Node, error) {
	tree, err := Normalize(tree)
	if err != nil {
		return nil, err
	}
	if override != nil {
		tree, err = merge(tree, Clone(override))
		if err != nil {
			return nil, err
		}
		if tree, err = Normalize(tree); err != nil {
			return nil, err
		}
	}
	log.Ctx(ctx).Debug().Int("documents", s.cache.Len()).Msg("resolution completed")
	return tree, nil
}

// resolveReference returns the resolved tree for ref together with its
// absolute identity. The tree is a private copy the caller may modify.
func (s *Session) resolveReference(ctx context.Context, ref string, depth int, keyPath string) (*yaml.Node, types.DocumentRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	id, err := documentID(ref)
	if err != nil {
		return nil, "", err
	}
	assert.NotEmpty(ctx, string(id), "document identity must be set")
	if err := s.checkDepth(id, depth); err != nil {
		return nil, "", err
	}

	tree, inProgress, ok := s.cache.Lookup(id)
	if inProgress {
		return nil, "", &CircularReferenceError{Ref: id, Chain: append(s.cache.Chain(), id)}
	}
	if ok {
		s.report(types.DocumentEvent{Ref: id, Depth: depth, KeyPath: keyPath, Cached: true})
		log.Ctx(ctx).Debug().Str("document", string(id)).Msg("document cache hit")
		return tree, id, nil
	}

	s.report(types.DocumentEvent{Ref: id, Depth: depth, KeyPath: keyPath})
	s.cache.Begin(id)
	raw, err := s.engine.Source.Read(string(id))
	if err != nil {
		s.cache.Abandon(id)
		return nil, "", err
	}
	log.Ctx(ctx).Debug().Str("document", string(id)).Int("depth", depth).Msg("document read")

	resolved, err := s.resolveTree(ctx, Clone(raw), id, depth)
	if err != nil {
		s.cache.Abandon(id)
		return nil, "", err
	}
	s.cache.Finish(id, resolved)
	return resolved, id, nil
}

func (s *Session) resolveText(ctx context.Context, text string, ref string) (*yaml.Node, error) {
	raw, err := s.engine.Source.Parse(ref, []byte(text))
	if err != nil {
		return nil, err
	}
	if ref == "" {
		s.report(types.DocumentEvent{})
		return s.resolveTree(ctx, Clone(raw), "", 0)
	}

	id, err := documentID(ref)
	if err != nil {
		return nil, err
	}
	tree, inProgress, ok := s.cache.Lookup(id)
	if inProgress {
		return nil, &CircularReferenceError{Ref: id, Chain: append(s.cache.Chain(), id)}
	}
	if ok {
		s.report(types.DocumentEvent{Ref: id, Cached: true})
		return tree, nil
	}

	s.report(types.DocumentEvent{Ref: id})
	s.cache.Begin(id)
	resolved, err := s.resolveTree(ctx, Clone(raw), id, 0)
	if err != nil {
		s.cache.Abandon(id)
		return nil, err
	}
	s.cache.Finish(id, resolved)
	return resolved, nil
}

// resolveTree expands __base__ wherever a mapping declares it, innermost
// mappings first, and drops __import__.
func (s *Session) resolveTree(ctx context.Context, node *yaml.Node, id types.DocumentRef, depth int) (*yaml.Node, error) {
	node = Unwrap(node)
	switch {
	case isSequence(node):
		for i, item := range node.Content {
			resolved, err := s.resolveTree(ctx, item, id, depth)
			if err != nil {
				return nil, err
			}
			node.Content[i] = resolved
		}
		return node, nil
	case !isMapping(node):
		return node, nil
	}

	MappingDelete(node, types.DirectiveImport)
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == types.DirectiveBase {
			continue
		}
		value := Unwrap(node.Content[i+1])
		if !isMapping(value) && !isSequence(value) {
			continue
		}
		resolved, err := s.resolveTree(ctx, value, id, depth)
		if err != nil {
			return nil, err
		}
		node.Content[i+1] = resolved
	}

	raw, ok := MappingTake(node, types.DirectiveBase)
	if !ok {
		return node, nil
	}
	return s.resolveBases(ctx, node, raw, id, depth)
}

func (s *Session) checkDepth(id types.DocumentRef, depth int) error {
	limit := s.engine.MaxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	if depth <= limit {
		return nil
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("base chain exceeds maximum depth of %d at %s", limit, id))
}

func (s *Session) report(event types.DocumentEvent) {
	if s.engine.OnDocument != nil {
		s.engine.OnDocument(event)
	}
}

func documentID(ref string) (types.DocumentRef, error) {
	abs, err := shared.AbsolutePath(ref)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid document reference: " + ref).
			WithCause(err)
	}
	return types.DocumentRef(abs), nil
}
