package app

import "confmerge/internal/types"

type ResolveRequest struct {
	Path      string
	Output    string
	Format    types.OutputFormat
	VarsFiles []string
	Set       []string
	MaxDepth  int
}

type ResolveResult struct {
	Path      string
	Output    string
	Documents int
}

type MergeRequest struct {
	Paths  []string
	Output string
	Format types.OutputFormat
}

type MergeResult struct {
	Merged int
}

type BasesRequest struct {
	Path     string
	MaxDepth int
}

type BasesResult struct {
	Documents []types.DocumentEvent
}

type ValidateRequest struct {
	Paths    []string
	MaxDepth int
}

type ValidateResult struct {
	Documents []ValidatedDocument
}

type ValidatedDocument struct {
	Path  string
	Bases int
}
