package types

type OutputFormat string

const (
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatJSON OutputFormat = "json"
)

type SourceFormat string

const (
	SourceFormatYAML  SourceFormat = "yaml"
	SourceFormatJSONC SourceFormat = "jsonc"
)

// Directive keys recognised while resolving and merging. None of them
// survive into a resolved document.
const (
	DirectiveBase   = "__base__"
	DirectiveImport = "__import__"
	DirectiveDelete = "__delete__"

	DirectiveChangeItem = "change_item"
	DirectiveInsertItem = "insert_item"
	DirectivePreItem    = "pre_item"
	DirectivePostItem   = "post_item"
)

// DirectiveKeys lists every reserved key in a stable order.
var DirectiveKeys = []string{
	DirectiveBase,
	DirectiveImport,
	DirectiveDelete,
	DirectiveChangeItem,
	DirectiveInsertItem,
	DirectivePreItem,
	DirectivePostItem,
}
