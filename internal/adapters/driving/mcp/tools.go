package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// defaultSearchLimit is used when the search tool is called without a limit.
const defaultSearchLimit = 5

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the document corpus"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string      `json:"answer"`
	Fallback bool        `json:"fallback"`
	Error    string      `json:"error,omitempty"`
	Sources  []HitOutput `json:"sources"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the text to find similar chunks for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []HitOutput `json:"results"`
	Count   int         `json:"count"`
}

// HitOutput represents a single retrieved chunk.
type HitOutput struct {
	DocumentID int64   `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	Name       string  `json:"name"`
	URI        string  `json:"uri"`
	Distance   float64 `json:"distance"`
	Position   int     `json:"position"`
	Content    string  `json:"content"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput describes a stored document without its content.
type DocumentOutput struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	URI        string `json:"uri"`
	UploadedAt string `json:"uploaded_at"`
	Protected  bool   `json:"protected"`
}

// GetDocumentInput is the input schema for the get_document tool.
type GetDocumentInput struct {
	ID int64 `json:"id" jsonschema:"the document id"`
}

// GetDocumentOutput is the output schema for the get_document tool.
type GetDocumentOutput struct {
	Document DocumentOutput `json:"document"`
	Content  string         `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the most relevant documents as context",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the document chunks nearest to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List all stored documents",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Read the cleaned text of a stored document",
	}, s.handleGetDocument)
}

// handleAsk handles the ask tool invocation.
// A fallback answer is a successful call; the cause is reported in Error.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer := s.ports.Answer.Ask(ctx, input.Question)

	output := AskOutput{
		Answer:   answer.Text,
		Fallback: answer.Fallback,
		Sources:  toHitOutputs(answer.Hits),
	}
	if answer.Err != nil {
		output.Error = answer.Err.Error()
	}

	return nil, output, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchOutput{}, ErrEmptyQuery
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	hits, err := s.ports.Answer.Retrieve(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	return nil, SearchOutput{Results: toHitOutputs(hits), Count: len(hits)}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Document == nil {
		return nil, ListDocumentsOutput{}, ErrMissingDocumentService
	}

	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = toDocumentOutput(&docs[i])
	}

	return nil, output, nil
}

// handleGetDocument handles the get_document tool invocation.
func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDocumentInput,
) (*mcp.CallToolResult, GetDocumentOutput, error) {
	if s.ports.Document == nil {
		return nil, GetDocumentOutput{}, ErrMissingDocumentService
	}

	doc, err := s.ports.Document.Get(ctx, input.ID)
	if err != nil {
		return nil, GetDocumentOutput{}, err
	}

	return nil, GetDocumentOutput{
		Document: toDocumentOutput(doc),
		Content:  doc.Content,
	}, nil
}

func toHitOutputs(hits []domain.RetrievalHit) []HitOutput {
	out := make([]HitOutput, len(hits))
	for i := range hits {
		out[i] = HitOutput{
			DocumentID: hits[i].Document.ID,
			ChunkID:    hits[i].Chunk.ID,
			Name:       hits[i].Document.Name,
			URI:        documentURI(hits[i].Document.ID),
			Distance:   hits[i].Distance,
			Position:   hits[i].Chunk.Position,
			Content:    hits[i].Chunk.Content,
		}
	}
	return out
}

func toDocumentOutput(doc *domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:         doc.ID,
		Name:       doc.Name,
		URI:        documentURI(doc.ID),
		UploadedAt: doc.FormatUploadDate(),
		Protected:  doc.Protected,
	}
}
