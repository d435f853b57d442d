package types

// DocumentRef identifies a document by path. The empty ref stands for
// inline text that has no identity and is never cached.
type DocumentRef string

func (r DocumentRef) IsInline() bool {
	return r == ""
}

// BaseRef is one entry of a __base__ list: the document to inherit from
// and an optional dotted key path selecting a subtree of it.
type BaseRef struct {
	Path    string
	KeyPath string
}

// DocumentEvent is reported each time the resolver enters a document.
type DocumentEvent struct {
	// Ref is the absolute identity of the document, empty for inline text.
	Ref DocumentRef

	// Depth is the base-chain depth; the top-level document is 0.
	Depth int

	// KeyPath is the sub-path the parent requested, if any.
	KeyPath string

	// Cached is true when the document was served from the session cache.
	Cached bool
}
