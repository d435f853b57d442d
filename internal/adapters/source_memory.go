package adapters

import (
	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"confmerge/internal/ports"
	"confmerge/internal/shared"
)

// MemorySourceAdapter serves documents from memory, keyed by absolute
// path. It counts reads per document, which makes cache behaviour easy
// to observe.
type MemorySourceAdapter struct {
	docs  map[string]string
	reads map[string]int
}

func NewMemorySourceAdapter() *MemorySourceAdapter {
	return &MemorySourceAdapter{
		docs:  make(map[string]string),
		reads: make(map[string]int),
	}
}

// Add registers text under path and returns the absolute key it is
// stored under.
func (a *MemorySourceAdapter) Add(path string, text string) string {
	key, err := shared.AbsolutePath(path)
	if err != nil {
		key = path
	}
	a.docs[key] = text
	return key
}

func (a *MemorySourceAdapter) Read(ref string) (*yaml.Node, error) {
	key, err := shared.AbsolutePath(ref)
	if err != nil {
		key = ref
	}
	a.reads[key]++
	text, ok := a.docs[key]
	if !ok {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("config file not found: " + ref)
	}
	return parseDocument(key, []byte(text))
}

func (a *MemorySourceAdapter) Parse(name string, data []byte) (*yaml.Node, error) {
	return parseDocument(name, data)
}

// Reads returns how many times path was requested.
func (a *MemorySourceAdapter) Reads(path string) int {
	key, err := shared.AbsolutePath(path)
	if err != nil {
		key = path
	}
	return a.reads[key]
}

var _ ports.DocumentSourcePort = (*MemorySourceAdapter)(nil)
