package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"confmerge/internal/types"
)

// CircularReferenceError reports a document that was reached again while
// it was still being resolved. Chain lists the documents on the
// resolution stack, outermost first, ending with the repeated one.
type CircularReferenceError struct {
	Ref   types.DocumentRef
	Chain []types.DocumentRef
}

func (e *CircularReferenceError) Error() string {
	if len(e.Chain) == 0 {
		return fmt.Sprintf("circular reference detected in config file: %s", e.Ref)
	}
	parts := make([]string, 0, len(e.Chain))
	for _, ref := range e.Chain {
		parts = append(parts, string(ref))
	}
	return fmt.Sprintf("circular reference detected in config file: %s", strings.Join(parts, " -> "))
}

func (e *CircularReferenceError) Code() errbuilder.ErrCode {
	return errbuilder.CodeFailedPrecondition
}

// KeyPathError reports a __base__ key path segment missing from the
// resolved base document.
type KeyPathError struct {
	Ref     types.DocumentRef
	KeyPath string
	Segment string
}

func (e *KeyPathError) Error() string {
	return fmt.Sprintf("key %q of path %q not found in base %s", e.Segment, e.KeyPath, e.Ref)
}

func (e *KeyPathError) Code() errbuilder.ErrCode {
	return errbuilder.CodeNotFound
}

// IndexRangeError reports a change or delete index outside the target
// list after negative indices were normalised.
type IndexRangeError struct {
	Directive string
	Index     int
	Length    int
}

func (e *IndexRangeError) Error() string {
	return fmt.Sprintf("cannot apply %s at index %d to list of length %d", e.Directive, e.Index, e.Length)
}

func (e *IndexRangeError) Code() errbuilder.ErrCode {
	return errbuilder.CodeInvalidArgument
}

func invalidDirective(directive string, msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid %s: %s", directive, msg))
}
