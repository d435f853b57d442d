package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"confmerge/internal/core"
)

// Merge folds already-parsed documents left to right with the tree merger.
// __base__ is not expanded here; use Resolve for that.
func (s Service) Merge(ctx context.Context, req MergeRequest) (MergeResult, error) {
	if len(req.Paths) < 2 {
		return MergeResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("merge requires a base and at least one override")
	}
	req, err := withDefaults(req, DefaultMergeRequest())
	if err != nil {
		return MergeResult{}, err
	}
	format, err := parseFormat(string(req.Format))
	if err != nil {
		return MergeResult{}, err
	}

	var merged *yaml.Node
	for _, path := range req.Paths {
		path = strings.TrimSpace(path)
		tree, err := s.Source.Read(path)
		if err != nil {
			return MergeResult{}, err
		}
		merged, err = core.Overlay(merged, tree)
		if err != nil {
			return MergeResult{}, err
		}
		log.Ctx(ctx).Debug().Str("path", path).Msg("document merged")
	}
	merged, err = core.Normalize(merged)
	if err != nil {
		return MergeResult{}, err
	}

	if err := s.Writer.WriteDocument(req.Output, merged, format); err != nil {
		return MergeResult{}, err
	}
	return MergeResult{Merged: len(req.Paths)}, nil
}
