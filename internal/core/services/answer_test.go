package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
	"github.com/custodia-labs/ragdesk/internal/postprocessors/chunker"
)

func TestAnswerService_Ask(t *testing.T) {
	h := newHarness(t)
	h.add(t, "a.txt", "hello world")
	h.llm.reply = "  First line  \n\n\n   second line\n"

	answer := h.answers.Ask(context.Background(), "what?")

	require.NoError(t, answer.Err)
	assert.False(t, answer.Fallback)
	assert.Equal(t, "First line\nsecond line", answer.Text)
	require.Len(t, answer.Hits, 1)
	assert.Equal(t, "a.txt", answer.Hits[0].Document.Name)

	require.Len(t, h.llm.messages, 2)
	assert.Equal(t, driven.RoleSystem, h.llm.messages[0].Role)
	assert.Equal(t, "You are a helpful assistant.", h.llm.messages[0].Content)
	assert.Equal(t, driven.RoleUser, h.llm.messages[1].Role)
	assert.Equal(t, "Context: hello world\n\nQuestion: what?", h.llm.messages[1].Content)
	assert.Equal(t, domain.DefaultMaxTokens, h.llm.opts.MaxTokens)
	assert.InDelta(t, domain.DefaultTemperature, h.llm.opts.Temperature, 1e-9)
}

func TestAnswerService_Ask_ContextInRetrievalOrder(t *testing.T) {
	h := newHarness(t)
	h.add(t, "returns.txt", "Returns are accepted within thirty days of purchase.")
	h.add(t, "shipping.txt", "Standard shipping takes three to five business days.")

	answer := h.answers.Ask(context.Background(), "standard shipping business days")

	require.False(t, answer.Fallback)
	require.Len(t, answer.Hits, 2)
	assert.Equal(t, "shipping.txt", answer.Hits[0].Document.Name)
	want := "Context: " + answer.Hits[0].Chunk.Content + "\n" + answer.Hits[1].Chunk.Content +
		"\n\nQuestion: standard shipping business days"
	assert.Equal(t, want, h.llm.messages[1].Content)
}

func TestAnswerService_Ask_EmptyCorpus(t *testing.T) {
	h := newHarness(t)

	answer := h.answers.Ask(context.Background(), "anything")

	assert.False(t, answer.Fallback)
	assert.Empty(t, answer.Hits)
	assert.Equal(t, "Context: \n\nQuestion: anything", h.llm.messages[1].Content)
}

func TestAnswerService_Ask_Fallback(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		setup   func(h *harness)
		wantErr []error
		llmUsed bool
	}{
		{
			name:    "completion error",
			query:   "q",
			setup:   func(h *harness) { h.llm.err = assert.AnError },
			wantErr: []error{domain.ErrCompletionService, assert.AnError},
			llmUsed: true,
		},
		{
			name:    "completion panics",
			query:   "q",
			setup:   func(h *harness) { h.llm.panicMsg = "boom" },
			wantErr: []error{domain.ErrCompletionService},
			llmUsed: true,
		},
		{
			name:    "embedding error",
			query:   "q",
			setup:   func(h *harness) { h.embedder.embedErr = assert.AnError },
			wantErr: []error{domain.ErrEmbeddingFailure, assert.AnError},
		},
		{
			name:    "embedding dimension mismatch",
			query:   "q",
			setup:   func(h *harness) { h.embedder.badDims = true },
			wantErr: []error{domain.ErrEmbeddingFailure},
		},
		{
			name:    "system prompt unavailable",
			query:   "q",
			setup:   func(h *harness) { h.prompts.err = assert.AnError },
			wantErr: []error{domain.ErrCompletionService, assert.AnError},
		},
		{
			name:    "blank query",
			query:   "   ",
			setup:   func(*harness) {},
			wantErr: []error{domain.ErrInvalidInput},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.add(t, "a.txt", "hello world")
			tt.setup(h)

			var answer domain.Answer
			require.NotPanics(t, func() {
				answer = h.answers.Ask(context.Background(), tt.query)
			})

			assert.True(t, answer.Fallback)
			assert.Equal(t, domain.FallbackAnswer, answer.Text)
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, answer.Err, want)
			}
			assert.Equal(t, tt.llmUsed, h.llm.calls > 0)
		})
	}
}

func TestAnswerService_Ask_NoLLM(t *testing.T) {
	h := newHarness(t)
	h.add(t, "a.txt", "hello world")
	svc := NewAnswerService(h.corpus, h.docStore, h.embedder, nil, nil,
		domain.DefaultAppSettings().Retrieval, domain.LLMSettings{})

	answer := svc.Ask(context.Background(), "hello")

	assert.True(t, answer.Fallback)
	assert.ErrorIs(t, answer.Err, domain.ErrCompletionService)
	assert.ErrorIs(t, answer.Err, domain.ErrNotConfigured)
	assert.Len(t, answer.Hits, 1, "retrieval still ran")
}

func TestAnswerService_Ask_MalformedUserTemplate(t *testing.T) {
	h := newHarness(t)
	h.add(t, "a.txt", "hello world")
	h.prompts.prompts[driven.PromptAnswerUser] = "Only one placeholder: %s"

	answer := h.answers.Ask(context.Background(), "hi")

	require.False(t, answer.Fallback)
	assert.Equal(t, "Context: hello world\n\nQuestion: hi", h.llm.messages[1].Content)
}

func TestAnswerService_Ask_NoPromptStore(t *testing.T) {
	h := newHarness(t)
	h.add(t, "a.txt", "hello world")
	svc := NewAnswerService(h.corpus, h.docStore, h.embedder, h.llm, nil,
		domain.DefaultAppSettings().Retrieval, domain.DefaultAppSettings().LLM)

	answer := svc.Ask(context.Background(), "hi")

	require.False(t, answer.Fallback)
	require.Len(t, h.llm.messages, 1)
	assert.Equal(t, driven.RoleUser, h.llm.messages[0].Role)
}

func TestAnswerService_Retrieve_Ordering(t *testing.T) {
	h := newHarness(t)
	h.add(t, "returns.txt", "Returns are accepted within thirty days of purchase with a receipt.")
	h.add(t, "shipping.txt", "Standard shipping takes three to five business days.")
	h.add(t, "hours.txt", "The store opens at nine and closes at six on weekdays.")

	hits, err := h.answers.Retrieve(context.Background(), "standard shipping business days", 3)

	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "shipping.txt", hits[0].Document.Name)
	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i-1].Distance, hits[i].Distance)
	}
}

func TestAnswerService_Retrieve_NeverPads(t *testing.T) {
	h := newHarness(t)
	h.add(t, "a.txt", "alpha")
	h.add(t, "b.txt", "beta")
	h.add(t, "c.txt", "gamma")
	require.Equal(t, 3, h.index.Len())

	hits, err := h.answers.Retrieve(context.Background(), "alpha", 5)

	require.NoError(t, err)
	require.Len(t, hits, 3)
	seen := make(map[int]bool)
	for _, hit := range hits {
		assert.GreaterOrEqual(t, hit.Ordinal, 0)
		assert.Less(t, hit.Ordinal, 3)
		assert.False(t, seen[hit.Ordinal])
		seen[hit.Ordinal] = true
	}
}

func TestAnswerService_Retrieve_DefaultTopK(t *testing.T) {
	h := newHarness(t, withRetrieval(domain.RetrievalSettings{TopK: 2}))
	h.add(t, "a.txt", "alpha")
	h.add(t, "b.txt", "beta")
	h.add(t, "c.txt", "gamma")

	hits, err := h.answers.Retrieve(context.Background(), "alpha", 0)

	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestAnswerService_Retrieve_TaggedUsesMatchedChunk(t *testing.T) {
	h := newHarness(t, withChunkSize(10))
	h.add(t, "long.txt", "abcdefghij"+"klmnopqrst"+"uvwxyz")

	hits, err := h.answers.Retrieve(context.Background(), "klmnopqrst", 1)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "klmnopqrst", hits[0].Chunk.Content)
	assert.Equal(t, 1, hits[0].Chunk.Position)
	assert.Equal(t, int64(1), hits[0].Document.ID)
	assert.Equal(t, chunker.ID(1, 1), hits[0].Chunk.ID)
}

func TestAnswerService_Retrieve_ChunkIDsSurviveRebuild(t *testing.T) {
	h := newHarness(t, withChunkSize(10))
	h.add(t, "first.txt", "abcdefghij")
	h.add(t, "second.txt", "klmnopqrst"+"uvwxyz")

	before, err := h.answers.Retrieve(context.Background(), "uvwxyz", 1)
	require.NoError(t, err)
	require.Len(t, before, 1)
	assert.Equal(t, chunker.ID(2, 1), before[0].Chunk.ID)

	_, err = h.documents.Rebuild(context.Background())
	require.NoError(t, err)

	after, err := h.answers.Retrieve(context.Background(), "uvwxyz", 1)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, before[0].Chunk.ID, after[0].Chunk.ID)
}

func TestAnswerService_Retrieve_SkipsMissingDocuments(t *testing.T) {
	h := newHarness(t)
	h.add(t, "a.txt", "alpha")
	h.add(t, "b.txt", "beta")
	// Remove the row behind the service's back, leaving its vector stale
	require.NoError(t, h.docStore.DocumentStore.DeleteDocument(context.Background(), 1))

	hits, err := h.answers.Retrieve(context.Background(), "alpha", 5)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b.txt", hits[0].Document.Name)
}

func TestAnswerService_Retrieve_NoEmbedder(t *testing.T) {
	h := newHarness(t)
	svc := NewAnswerService(h.corpus, h.docStore, nil, nil, nil, domain.RetrievalSettings{}, domain.LLMSettings{})

	_, err := svc.Retrieve(context.Background(), "q", 1)

	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestAnswerService_PositionalAttribution_SingleChunkDocuments(t *testing.T) {
	tagged := newHarness(t)
	positional := newHarness(t, withRetrieval(domain.RetrievalSettings{Attribution: domain.AttributionPositional}))
	uploaded := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, h := range []*harness{tagged, positional} {
		h.ingest.now = func() time.Time { return uploaded }
		h.add(t, "a.txt", "alpha release notes")
		h.add(t, "b.txt", "beta release notes")
		h.add(t, "c.txt", "gamma release notes")
	}

	want, err := tagged.answers.Retrieve(context.Background(), "beta notes", 3)
	require.NoError(t, err)
	got, err := positional.answers.Retrieve(context.Background(), "beta notes", 3)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestAnswerService_PositionalAttribution_MultiChunkMisattributes(t *testing.T) {
	settings := domain.RetrievalSettings{Attribution: domain.AttributionPositional, ContextBudget: 8}
	h := newHarness(t, withChunkSize(10), withRetrieval(settings))
	h.add(t, "first.txt", strings.Repeat("abcdefghij", 3))
	h.add(t, "second.txt", "klmnopqrst")
	require.Equal(t, 4, h.index.Len())

	hits, err := h.answers.Retrieve(context.Background(), "abcdefghij", 4)
	require.NoError(t, err)

	// Ordinals 2 and 3 map to ids 3 and 4, which do not exist
	require.Len(t, hits, 2)
	byOrdinal := make(map[int]domain.RetrievalHit)
	for _, hit := range hits {
		byOrdinal[hit.Ordinal] = hit
	}

	require.Contains(t, byOrdinal, 1)
	assert.Equal(t, "second.txt", byOrdinal[1].Document.Name,
		"the second vector belongs to first.txt but resolves by position to document 2")
	assert.Equal(t, "klmnopqr", byOrdinal[1].Chunk.Content, "document content cut to the context budget")

	// The tagged mode resolves the same vector correctly
	h.answers.retrieval.Attribution = domain.AttributionTagged
	hits, err = h.answers.Retrieve(context.Background(), "abcdefghij", 4)
	require.NoError(t, err)
	require.Len(t, hits, 4)
	for _, hit := range hits {
		if hit.Ordinal < 3 {
			assert.Equal(t, "first.txt", hit.Document.Name)
		}
	}
}

func TestBuildContext(t *testing.T) {
	hits := []domain.RetrievalHit{
		{Chunk: domain.Chunk{Content: "abcdef"}},
		{Chunk: domain.Chunk{Content: "日本語テキスト"}},
		{Chunk: domain.Chunk{Content: "xy"}},
	}

	assert.Equal(t, "abc\n日本語\nxy", BuildContext(hits, 3))
	assert.Equal(t, "abcdef\n日本語テキスト\nxy", BuildContext(hits, 0))
	assert.Empty(t, BuildContext(nil, 10))
}

func TestRenderUserPrompt(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{"default", "Context: %s\n\nQuestion: %s", "Context: CTX\n\nQuestion: Q"},
		{"custom", "Q after C.\n%s\n---\n%s?", "Q after C.\nCTX\n---\nQ?"},
		{"other verbs kept", "%d %s / %s 100%", "%d CTX / Q 100%"},
		{"too few", "Just %s", "Context: CTX\n\nQuestion: Q"},
		{"too many", "%s %s %s", "Context: CTX\n\nQuestion: Q"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderUserPrompt(tt.tmpl, "CTX", "Q"))
		})
	}
}

func TestRenderUserPrompt_PlaceholderInInput(t *testing.T) {
	got := RenderUserPrompt(defaultUserTemplate, "ctx with %s", "q with %s")

	assert.Equal(t, "Context: ctx with %s\n\nQuestion: q with %s", got)
}

func TestPostProcess(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"  padded  ", "padded"},
		{"a\n\n\nb", "a\nb"},
		{"\n  one \n\t two\t\n\n", "one\ntwo"},
		{"   \n \n", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PostProcess(tt.in), "input %q", tt.in)
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", truncateRunes("héllo", 4))
	assert.Equal(t, "héllo", truncateRunes("héllo", 5))
	assert.Equal(t, "héllo", truncateRunes("héllo", 50))
	assert.Equal(t, "héllo", truncateRunes("héllo", 0))
	assert.Empty(t, truncateRunes("", 3))
}
