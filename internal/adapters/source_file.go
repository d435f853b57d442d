package adapters

import (
	"bytes"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"confmerge/internal/ports"
	"confmerge/internal/shared"
	"confmerge/internal/types"
)

// FileSourceAdapter reads documents from the local filesystem. YAML is
// the default format; .json and .jsonc files may carry comments and
// trailing commas.
type FileSourceAdapter struct{}

func NewFileSourceAdapter() FileSourceAdapter {
	return FileSourceAdapter{}
}

func (a FileSourceAdapter) Read(ref string) (*yaml.Node, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("config file not found: " + ref).
			WithCause(err)
	}
	return a.Parse(ref, data)
}

func (a FileSourceAdapter) Parse(name string, data []byte) (*yaml.Node, error) {
	return parseDocument(name, data)
}

// SourceFormatFor picks the document format from a file name.
func SourceFormatFor(name string) types.SourceFormat {
	switch shared.FileExtension(name) {
	case "json", "jsonc":
		return types.SourceFormatJSONC
	default:
		return types.SourceFormatYAML
	}
}

func parseDocument(name string, data []byte) (*yaml.Node, error) {
	if SourceFormatFor(name) == types.SourceFormatJSONC {
		data = jsonc.ToJSON(data)
	}

	label := name
	if label == "" {
		label = "<inline>"
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse config file: " + label).
			WithCause(err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 || len(bytes.TrimSpace(data)) == 0 {
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}, nil
	}
	return doc.Content[0], nil
}

var _ ports.DocumentSourcePort = FileSourceAdapter{}
