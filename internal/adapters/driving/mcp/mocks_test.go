package mcp

import (
	"context"
	"io"
	"strings"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer domain.Answer
	hits   []domain.RetrievalHit
	err    error

	lastQuery string
	lastK     int
}

func (m *mockAnswerService) Ask(_ context.Context, query string) domain.Answer {
	m.lastQuery = query
	return m.answer
}

func (m *mockAnswerService) Retrieve(_ context.Context, query string, k int) ([]domain.RetrievalHit, error) {
	m.lastQuery = query
	m.lastK = k
	return m.hits, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ int64) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.document == nil {
		return nil, domain.ErrNotFound
	}
	return m.document, nil
}

func (m *mockDocumentService) Download(_ context.Context, _ int64) (string, io.ReadCloser, error) {
	if m.document == nil {
		return "", nil, domain.ErrNotFound
	}
	return m.document.Name, io.NopCloser(strings.NewReader(m.document.Content)), nil
}

func (m *mockDocumentService) Delete(_ context.Context, _ int64) error {
	return m.err
}

func (m *mockDocumentService) Rebuild(_ context.Context) (*domain.RebuildStats, error) {
	return &domain.RebuildStats{}, m.err
}

func (m *mockDocumentService) IndexSize() int {
	return len(m.documents)
}
