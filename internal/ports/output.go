package ports

import (
	"gopkg.in/yaml.v3"

	"confmerge/internal/types"
)

type DocumentWriterPort interface {
	// WriteDocument encodes node to path, or to the writer's default
	// stream when path is empty or "-".
	WriteDocument(path string, node *yaml.Node, format types.OutputFormat) error
}
