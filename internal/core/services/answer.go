package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
	"github.com/custodia-labs/ragdesk/internal/logger"
	"github.com/custodia-labs/ragdesk/internal/postprocessors/chunker"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// defaultUserTemplate frames the retrieved context and the question.
// Its two %s verbs are filled with the context and the question in order.
const defaultUserTemplate = "Context: %s\n\nQuestion: %s"

// AnswerService answers questions from the indexed corpus.
type AnswerService struct {
	corpus    *Corpus
	docStore  driven.DocumentStore
	embedder  driven.EmbeddingService
	llm       driven.LLMService
	prompts   driven.PromptStore
	retrieval domain.RetrievalSettings
	options   driven.ChatOptions
}

// NewAnswerService creates a new answer service.
// The embedder, llm and prompts parameters are optional (can be nil).
// Asking without an embedder or llm always yields the fallback answer.
func NewAnswerService(
	corpus *Corpus,
	docStore driven.DocumentStore,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	retrieval domain.RetrievalSettings,
	llmSettings domain.LLMSettings,
) *AnswerService {
	opts := driven.ChatOptions{
		MaxTokens:   llmSettings.MaxTokens,
		Temperature: llmSettings.Temperature,
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = domain.DefaultMaxTokens
	}
	return &AnswerService{
		corpus:    corpus,
		docStore:  docStore,
		embedder:  embedder,
		llm:       llm,
		prompts:   prompts,
		retrieval: retrieval,
		options:   opts,
	}
}

// Ask retrieves context for query and asks the completion service.
func (s *AnswerService) Ask(ctx context.Context, query string) (answer domain.Answer) {
	logger.Section("Answer")
	logger.Debug("Query: %q", query)

	defer func() {
		if r := recover(); r != nil {
			answer = fallback(answer.Hits, fmt.Errorf("%w: panic: %v", domain.ErrCompletionService, r))
		}
	}()

	hits, text, err := s.answer(ctx, query)
	if err != nil {
		return fallback(hits, err)
	}

	logger.Debug("Answer: %d chars from %d hits", len(text), len(hits))
	return domain.Answer{Text: text, Hits: hits}
}

func fallback(hits []domain.RetrievalHit, err error) domain.Answer {
	logger.Warn("Answering failed: %v", err)
	return domain.Answer{
		Text:     domain.FallbackAnswer,
		Hits:     hits,
		Fallback: true,
		Err:      err,
	}
}

func (s *AnswerService) answer(ctx context.Context, query string) ([]domain.RetrievalHit, string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, "", fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	hits, err := s.Retrieve(ctx, query, 0)
	if err != nil {
		return nil, "", err
	}

	if s.llm == nil {
		return hits, "", fmt.Errorf("%w: %w", domain.ErrCompletionService, domain.ErrNotConfigured)
	}

	messages, err := s.buildMessages(BuildContext(hits, s.contextBudget()), query)
	if err != nil {
		return hits, "", err
	}

	reply, err := s.llm.Chat(ctx, messages, s.options)
	if err != nil {
		return hits, "", fmt.Errorf("%w: %w", domain.ErrCompletionService, err)
	}

	return hits, PostProcess(reply), nil
}

// Retrieve returns the k nearest hits for query, resolved to documents.
func (s *AnswerService) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievalHit, error) {
	if k <= 0 {
		k = s.topK()
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("embedding service: %w", domain.ErrNotConfigured)
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, err)
	}
	if len(vec) != s.embedder.Dimensions() {
		return nil, fmt.Errorf("%w: query vector has dimension %d, expected %d",
			domain.ErrEmbeddingFailure, len(vec), s.embedder.Dimensions())
	}

	s.corpus.mu.RLock()
	defer s.corpus.mu.RUnlock()

	matches, err := s.corpus.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	logger.Debug("Search: %d matches (k=%d, attribution=%s)", len(matches), k, s.attribution())

	return s.resolve(ctx, matches)
}

// resolve maps matched vectors to their documents.
// Matches whose document no longer exists are skipped.
func (s *AnswerService) resolve(ctx context.Context, matches []driven.VectorHit) ([]domain.RetrievalHit, error) {
	cache := make(map[int64]*domain.Document)
	lookup := func(id int64) (*domain.Document, error) {
		if doc, ok := cache[id]; ok {
			return doc, nil
		}
		doc, err := s.docStore.GetDocument(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			cache[id] = nil
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("resolving document %d: %w", id, err)
		}
		cache[id] = doc
		return doc, nil
	}

	positional := s.attribution() == domain.AttributionPositional
	hits := make([]domain.RetrievalHit, 0, len(matches))
	for _, m := range matches {
		id := m.Entry.DocumentID
		if positional {
			id = int64(m.Ordinal) + 1
		}

		doc, err := lookup(id)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			logger.Debug("Match %d resolves to missing document %d, skipped", m.Ordinal, id)
			continue
		}

		chunk := domain.Chunk{
			ID:         m.Entry.ChunkID,
			DocumentID: doc.ID,
			Content:    m.Entry.Content,
			Position:   m.Entry.Position,
		}
		if positional {
			chunk.Content = truncateRunes(doc.Content, s.contextBudget())
			chunk.Position = 0
			chunk.ID = chunker.ID(doc.ID, 0)
		}

		hits = append(hits, domain.RetrievalHit{
			Ordinal:  m.Ordinal,
			Distance: m.Distance,
			Document: *doc,
			Chunk:    chunk,
		})
	}
	return hits, nil
}

func (s *AnswerService) buildMessages(contextText, query string) ([]driven.ChatMessage, error) {
	userTemplate := defaultUserTemplate
	var system string

	if s.prompts != nil {
		var err error
		system, err = s.prompts.Load(driven.PromptAnswerSystem)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrCompletionService, err)
		}
		if tmpl, err := s.prompts.Load(driven.PromptAnswerUser); err == nil {
			userTemplate = tmpl
		} else {
			logger.Debug("Using default user prompt: %v", err)
		}
	}

	messages := make([]driven.ChatMessage, 0, 2)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, driven.ChatMessage{Role: driven.RoleSystem, Content: system})
	}
	messages = append(messages, driven.ChatMessage{
		Role:    driven.RoleUser,
		Content: RenderUserPrompt(userTemplate, contextText, query),
	})
	return messages, nil
}

func (s *AnswerService) topK() int {
	if s.retrieval.TopK > 0 {
		return s.retrieval.TopK
	}
	return domain.DefaultTopK
}

func (s *AnswerService) contextBudget() int {
	if s.retrieval.ContextBudget > 0 {
		return s.retrieval.ContextBudget
	}
	return domain.DefaultContextBudget
}

func (s *AnswerService) attribution() domain.AttributionMode {
	if s.retrieval.Attribution.IsValid() {
		return s.retrieval.Attribution
	}
	return domain.AttributionTagged
}

// BuildContext truncates each hit's text to budget runes and joins them
// with newlines in retrieval order.
func BuildContext(hits []domain.RetrievalHit, budget int) string {
	pieces := make([]string, len(hits))
	for i, h := range hits {
		pieces[i] = truncateRunes(h.Chunk.Content, budget)
	}
	return strings.Join(pieces, "\n")
}

// RenderUserPrompt fills the two %s placeholders of tmpl with the context
// and the question. Templates without exactly two placeholders fall back
// to the default framing. No other formatting verbs are interpreted.
func RenderUserPrompt(tmpl, contextText, query string) string {
	parts := strings.Split(tmpl, "%s")
	if len(parts) != 3 {
		parts = strings.Split(defaultUserTemplate, "%s")
	}
	return parts[0] + contextText + parts[1] + query + parts[2]
}

// PostProcess trims every line of a completion and drops the blank ones.
func PostProcess(reply string) string {
	lines := strings.Split(reply, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
