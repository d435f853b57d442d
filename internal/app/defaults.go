package app

import (
	"dario.cat/mergo"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"confmerge/internal/core"
	"confmerge/internal/types"
)

// DefaultResolveRequest holds the values used for fields a caller leaves
// empty.
func DefaultResolveRequest() ResolveRequest {
	return ResolveRequest{
		Output:   "-",
		Format:   types.OutputFormatYAML,
		MaxDepth: core.DefaultMaxDepth,
	}
}

func DefaultMergeRequest() MergeRequest {
	return MergeRequest{
		Output: "-",
		Format: types.OutputFormatYAML,
	}
}

func DefaultBasesRequest() BasesRequest {
	return BasesRequest{MaxDepth: core.DefaultMaxDepth}
}

func DefaultValidateRequest() ValidateRequest {
	return ValidateRequest{MaxDepth: core.DefaultMaxDepth}
}

// withDefaults fills the zero fields of req from defaults.
func withDefaults[T any](req T, defaults T) (T, error) {
	if err := mergo.Merge(&req, defaults); err != nil {
		var zero T
		return zero, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to apply request defaults").
			WithCause(err)
	}
	return req, nil
}
