package app

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"confmerge/internal/core"
)

// buildOverride combines variable files and key=value assignments, in
// that order, into the one-shot override applied after resolution.
// Returns nil when there is nothing to apply.
func (s Service) buildOverride(varsFiles []string, assignments []string) (*yaml.Node, error) {
	var override *yaml.Node
	for _, path := range varsFiles {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		vars, err := s.Source.Read(path)
		if err != nil {
			return nil, err
		}
		override, err = core.Overlay(override, vars)
		if err != nil {
			return nil, err
		}
	}
	for _, raw := range assignments {
		assignment, err := parseAssignment(raw)
		if err != nil {
			return nil, err
		}
		override, err = core.Overlay(override, assignment)
		if err != nil {
			return nil, err
		}
	}
	return override, nil
}

// parseAssignment turns "a.b.c=value" into {a: {b: {c: value}}}. The
// value is read as a YAML scalar or flow collection.
func parseAssignment(raw string) (*yaml.Node, error) {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("override must have the form key.path=value: " + raw)
	}

	leaf := core.NewString(value)
	if strings.TrimSpace(value) != "" {
		var doc yaml.Node
		if err := yaml.Unmarshal([]byte(value), &doc); err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid override value for " + key).
				WithCause(err)
		}
		if len(doc.Content) > 0 {
			leaf = doc.Content[0]
		}
	}

	segments := strings.Split(key, ".")
	node := leaf
	for i := len(segments) - 1; i >= 0; i-- {
		segment := strings.TrimSpace(segments[i])
		if segment == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("override key has an empty segment: " + key)
		}
		parent := core.NewMapping()
		parent.Content = append(parent.Content, core.NewString(segment), node)
		node = parent
	}
	return node, nil
}
