package app

import (
	"io"
	"os"

	"confmerge/internal/adapters"
	"confmerge/internal/core"
	"confmerge/internal/ports"
	"confmerge/internal/types"
)

type Service struct {
	Source    ports.DocumentSourcePort
	Writer    ports.DocumentWriterPort
	Discovery ports.DiscoveryPort
	Stdin     io.Reader
}

func NewService() Service {
	return Service{
		Source:    adapters.NewFileSourceAdapter(),
		Writer:    adapters.NewOutputFileAdapter(os.Stdout),
		Discovery: adapters.NewDiscoveryAdapter(),
		Stdin:     os.Stdin,
	}
}

func (s Service) engine(maxDepth int, hook func(types.DocumentEvent)) core.Engine {
	engine := core.NewEngine(s.Source).WithMaxDepth(maxDepth)
	if hook != nil {
		engine = engine.WithDocumentHook(hook)
	}
	return engine
}
