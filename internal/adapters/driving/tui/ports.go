// Package tui provides an interactive terminal user interface for ragdesk.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer answers questions from the corpus.
	Answer driving.AnswerService

	// Document lists, deletes and rebuilds documents.
	Document driving.DocumentService

	// Ingest admits new documents. Optional.
	Ingest driving.IngestService

	// ChunkSize is the configured chunk size, used when showing a
	// document's chunk boundaries. Zero means domain.DefaultChunkSize.
	ChunkSize int
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	answer driving.AnswerService,
	document driving.DocumentService,
	ingest driving.IngestService,
) *Ports {
	return &Ports{
		Answer:   answer,
		Document: document,
		Ingest:   ingest,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
