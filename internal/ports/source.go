package ports

import "gopkg.in/yaml.v3"

// DocumentSourcePort turns document references into parsed trees.
//
// Read and Parse return the root content node, never a document node.
// Missing resources and parse failures are reported as is; the resolver
// passes them to its caller without wrapping. Relative references are
// resolved by the caller before Read is invoked.
type DocumentSourcePort interface {
	// Read loads and parses the document at ref.
	Read(ref string) (*yaml.Node, error)

	// Parse parses text that came from somewhere other than Read. name is
	// used to pick the format and in error messages; it may be empty.
	Parse(name string, data []byte) (*yaml.Node, error)
}
