package app

import (
	"context"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"confmerge/internal/types"
)

// Validate resolves each document independently and stops at the first
// failure. Directories are expanded to the config files below them.
func (s Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	if len(req.Paths) == 0 {
		return ValidateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one config file path is required")
	}
	req, err := withDefaults(req, DefaultValidateRequest())
	if err != nil {
		return ValidateResult{}, err
	}
	paths, err := s.expandPaths(req.Paths)
	if err != nil {
		return ValidateResult{}, err
	}

	result := ValidateResult{}
	for _, path := range paths {
		bases := 0
		engine := s.engine(req.MaxDepth, func(event types.DocumentEvent) {
			if event.Depth > 0 {
				bases++
			}
		})
		if _, err := engine.ResolveByReference(ctx, path); err != nil {
			return ValidateResult{}, err
		}
		log.Ctx(ctx).Debug().Str("path", path).Int("bases", bases).Msg("config validated")
		result.Documents = append(result.Documents, ValidatedDocument{Path: path, Bases: bases})
	}
	return result, nil
}

func (s Service) expandPaths(paths []string) ([]string, error) {
	expanded := make([]string, 0, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		info, err := os.Stat(path)
		if s.Discovery == nil || err != nil || !info.IsDir() {
			expanded = append(expanded, path)
			continue
		}
		found, err := s.Discovery.FindConfigs(path)
		if err != nil {
			return nil, err
		}
		expanded = append(expanded, found...)
	}
	return expanded, nil
}
