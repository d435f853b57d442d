package app

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"confmerge/internal/core"
	"confmerge/internal/types"
)

func (s Service) Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("config file path is required")
	}
	req, err := withDefaults(req, DefaultResolveRequest())
	if err != nil {
		return ResolveResult{}, err
	}
	format, err := parseFormat(string(req.Format))
	if err != nil {
		return ResolveResult{}, err
	}

	override, err := s.buildOverride(req.VarsFiles, req.Set)
	if err != nil {
		return ResolveResult{}, err
	}

	documents := 0
	engine := s.engine(req.MaxDepth, func(event types.DocumentEvent) {
		if !event.Cached {
			documents++
		}
	})

	tree, err := s.resolveInput(ctx, engine, path, override)
	if err != nil {
		return ResolveResult{}, err
	}

	if err := s.Writer.WriteDocument(req.Output, tree, format); err != nil {
		return ResolveResult{}, err
	}
	log.Ctx(ctx).Debug().
		Str("path", path).
		Int("documents", documents).
		Str("output", req.Output).
		Msg("config resolved")
	return ResolveResult{Path: path, Output: req.Output, Documents: documents}, nil
}

// resolveInput resolves a file, or stdin when path is "-"; both apply the
// override to the settled document.
func (s Service) resolveInput(ctx context.Context, engine core.Engine, path string, override *yaml.Node) (*yaml.Node, error) {
	if path != "-" {
		return engine.ResolveWithOverride(ctx, path, override)
	}
	text, err := s.readStdin()
	if err != nil {
		return nil, err
	}
	return engine.ResolveByText(ctx, text, "", override)
}

func (s Service) readStdin() (string, error) {
	in := s.Stdin
	if in == nil {
		in = os.Stdin
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read config from stdin").
			WithCause(err)
	}
	return string(data), nil
}

func parseFormat(value string) (types.OutputFormat, error) {
	switch types.OutputFormat(strings.ToLower(strings.TrimSpace(value))) {
	case types.OutputFormatYAML:
		return types.OutputFormatYAML, nil
	case types.OutputFormatJSON:
		return types.OutputFormatJSON, nil
	}
	return "", errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("unsupported output format: " + value)
}
