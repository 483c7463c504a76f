// Package mcp provides an MCP (Model Context Protocol) server adapter for ragdesk.
// It lets AI assistants ask questions of the local document corpus.
package mcp

import "errors"

var (
	// ErrMissingAnswerService is returned when the answer service is not provided.
	ErrMissingAnswerService = errors.New("mcp: answer service is required")

	// ErrMissingDocumentService is returned by document tools when no document service is wired.
	ErrMissingDocumentService = errors.New("mcp: document service is not available")

	// ErrEmptyQuery is returned when a tool is called without a query.
	ErrEmptyQuery = errors.New("mcp: query is required")
)
