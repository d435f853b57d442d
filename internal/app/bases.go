package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"confmerge/internal/types"
)

// Bases resolves a document and reports every document entered along
// the way, depth first, in the order the resolver visited them.
func (s Service) Bases(ctx context.Context, req BasesRequest) (BasesResult, error) {
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return BasesResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("config file path is required")
	}

	req, err := withDefaults(req, DefaultBasesRequest())
	if err != nil {
		return BasesResult{}, err
	}

	var events []types.DocumentEvent
	engine := s.engine(req.MaxDepth, func(event types.DocumentEvent) {
		events = append(events, event)
	})
	if _, err := engine.ResolveByReference(ctx, path); err != nil {
		return BasesResult{}, err
	}
	return BasesResult{Documents: events}, nil
}
