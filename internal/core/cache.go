package core

import (
	"gopkg.in/yaml.v3"

	"confmerge/internal/types"
)

type cacheState int

const (
	cacheMissing cacheState = iota
	// cacheInProgress marks a document whose resolution has started but
	// not finished; meeting it again means the base graph has a cycle.
	cacheInProgress
	cacheResolved
)

type cacheEntry struct {
	state cacheState
	tree  *yaml.Node
}

// ResolutionCache maps absolute document identities to their resolution
// state. It belongs to a single Session and is not safe for concurrent
// use.
type ResolutionCache struct {
	entries map[types.DocumentRef]cacheEntry
	// stack holds the in-progress documents in the order they were entered.
	stack []types.DocumentRef
}

func NewResolutionCache() *ResolutionCache {
	return &ResolutionCache{entries: make(map[types.DocumentRef]cacheEntry)}
}

// Lookup returns a private copy of a resolved tree. inProgress is true
// when ref has been entered but not finished.
func (c *ResolutionCache) Lookup(ref types.DocumentRef) (tree *yaml.Node, inProgress bool, ok bool) {
	entry, found := c.entries[ref]
	switch {
	case !found:
		return nil, false, false
	case entry.state == cacheInProgress:
		return nil, true, true
	}
	return Clone(entry.tree), false, true
}

// Begin marks ref as in progress.
func (c *ResolutionCache) Begin(ref types.DocumentRef) {
	c.entries[ref] = cacheEntry{state: cacheInProgress}
	c.stack = append(c.stack, ref)
}

// Finish stores a copy of the resolved tree under ref.
func (c *ResolutionCache) Finish(ref types.DocumentRef, tree *yaml.Node) {
	c.entries[ref] = cacheEntry{state: cacheResolved, tree: Clone(tree)}
	c.pop(ref)
}

// Abandon forgets an in-progress entry after a failed resolution so the
// cache never holds a partial result.
func (c *ResolutionCache) Abandon(ref types.DocumentRef) {
	if entry, ok := c.entries[ref]; ok && entry.state == cacheInProgress {
		delete(c.entries, ref)
	}
	c.pop(ref)
}

// Chain returns the in-progress documents from the outermost one down.
func (c *ResolutionCache) Chain() []types.DocumentRef {
	return append([]types.DocumentRef(nil), c.stack...)
}

func (c *ResolutionCache) Len() int {
	return len(c.entries)
}

func (c *ResolutionCache) pop(ref types.DocumentRef) {
	for i := len(c.stack) - 1; i >= 0; i-- {
		if c.stack[i] == ref {
			c.stack = append(c.stack[:i], c.stack[i+1:]...)
			return
		}
	}
}
