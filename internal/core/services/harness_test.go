package services

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdesk/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/ragdesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragdesk/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
	"github.com/custodia-labs/ragdesk/internal/normalisers"
	"github.com/custodia-labs/ragdesk/internal/postprocessors"
)

const testDims = 64

// harness wires the three corpus services over in-memory adapters.
type harness struct {
	corpus    *Corpus
	docStore  *faultyDocStore
	artifacts *faultyArtifactStore
	index     *faultyIndex
	embedder  *mockEmbeddingService
	llm       *mockLLMService
	prompts   *mockPromptStore

	ingest    *IngestService
	documents *DocumentService
	answers   *AnswerService
}

type harnessOptions struct {
	chunkSize int
	ingest    domain.IngestSettings
	retrieval domain.RetrievalSettings
}

type harnessOption func(*harnessOptions)

func withChunkSize(n int) harnessOption {
	return func(o *harnessOptions) { o.chunkSize = n }
}

func withFormats(formats ...domain.Format) harnessOption {
	return func(o *harnessOptions) { o.ingest.Formats = formats }
}

func withSegment(segment bool) harnessOption {
	return func(o *harnessOptions) { o.ingest.Segment = segment }
}

func withRetrieval(r domain.RetrievalSettings) harnessOption {
	return func(o *harnessOptions) { o.retrieval = r }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	defaults := domain.DefaultAppSettings()
	o := harnessOptions{
		chunkSize: domain.DefaultChunkSize,
		ingest:    defaults.Ingest,
		retrieval: defaults.Retrieval,
	}
	// Exact content assertions read better without word segmentation
	o.ingest.Segment = false
	for _, opt := range opts {
		opt(&o)
	}
	o.ingest.ChunkSize = o.chunkSize

	pipeline, err := postprocessors.BuildPipeline(postprocessors.NewDefaultRegistry(), domain.PipelineConfigFor(o.ingest))
	require.NoError(t, err)

	index, err := flat.New(testDims)
	require.NoError(t, err)

	h := &harness{
		docStore:  &faultyDocStore{DocumentStore: memory.NewDocumentStore()},
		artifacts: &faultyArtifactStore{ArtifactStore: memory.NewArtifactStore()},
		index:     &faultyIndex{Index: index},
		embedder:  &mockEmbeddingService{inner: hashing.NewEmbeddingService(testDims)},
		llm:       &mockLLMService{reply: "An answer."},
		prompts: &mockPromptStore{prompts: map[string]string{
			driven.PromptAnswerSystem: "You are a helpful assistant.",
			driven.PromptAnswerUser:   "Context: %s\n\nQuestion: %s",
		}},
	}
	h.corpus = NewCorpus(h.index)
	h.ingest = NewIngestService(h.corpus, h.docStore, h.artifacts, normalisers.NewDefaultRegistry(),
		pipeline, h.embedder, o.ingest)
	h.documents = NewDocumentService(h.corpus, h.docStore, h.artifacts, pipeline, h.embedder)
	h.answers = NewAnswerService(h.corpus, h.docStore, h.embedder, h.llm, h.prompts,
		o.retrieval, defaults.LLM)
	return h
}

func (h *harness) add(t *testing.T, name, content string) *domain.IngestResult {
	t.Helper()
	result, err := h.ingest.Ingest(context.Background(), driving.IngestRequest{
		Name:         name,
		DeclaredType: "txt",
		Content:      []byte(content),
	})
	require.NoError(t, err)
	return result
}

func (h *harness) docCount(t *testing.T) int {
	t.Helper()
	n, err := h.docStore.CountDocuments(context.Background())
	require.NoError(t, err)
	return n
}

// entries returns every indexed vector in ordinal order.
func (h *harness) entries(t *testing.T) []driven.VectorHit {
	t.Helper()
	if h.index.Len() == 0 {
		return nil
	}
	hits, err := h.index.Search(context.Background(), make([]float32, testDims), h.index.Len())
	require.NoError(t, err)
	slices.SortFunc(hits, func(a, b driven.VectorHit) int { return a.Ordinal - b.Ordinal })
	return hits
}

// mockEmbeddingService delegates to the hashing embedder and can be told
// to fail or to return misaligned output.
type mockEmbeddingService struct {
	inner    driven.EmbeddingService
	embedErr error
	batchErr error
	dropLast bool
	badDims  bool
	batches  atomic.Int64
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	v, err := m.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if m.badDims {
		v = v[:len(v)-1]
	}
	return v, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.batches.Add(1)
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	vectors, err := m.inner.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if m.dropLast && len(vectors) > 0 {
		vectors = vectors[:len(vectors)-1]
	}
	if m.badDims && len(vectors) > 0 {
		vectors[0] = append(vectors[0], 0)
	}
	return vectors, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return m.inner.Dimensions()
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embedding"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockLLMService records the last request and returns a canned reply.
type mockLLMService struct {
	reply    string
	err      error
	panicMsg string

	mu       sync.Mutex
	messages []driven.ChatMessage
	opts     driven.ChatOptions
	calls    int
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	m.calls++
	m.messages = messages
	m.opts = opts
	m.mu.Unlock()
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("prompt not found")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// faultyDocStore injects failures into the memory document store.
type faultyDocStore struct {
	*memory.DocumentStore
	insertErr error
	deleteErr error
	listErr   error
}

func (s *faultyDocStore) InsertDocument(ctx context.Context, doc *domain.Document) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	return s.DocumentStore.InsertDocument(ctx, doc)
}

func (s *faultyDocStore) DeleteDocument(ctx context.Context, id int64) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.DocumentStore.DeleteDocument(ctx, id)
}

func (s *faultyDocStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.DocumentStore.ListDocuments(ctx)
}

// faultyArtifactStore injects failures into the memory artifact store.
type faultyArtifactStore struct {
	*memory.ArtifactStore
	saveErr   error
	removeErr error
}

func (s *faultyArtifactStore) Save(ctx context.Context, name string, content []byte) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.ArtifactStore.Save(ctx, name, content)
}

func (s *faultyArtifactStore) Remove(ctx context.Context, name string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	return s.ArtifactStore.Remove(ctx, name)
}

func (s *faultyArtifactStore) read(t *testing.T, name string) string {
	t.Helper()
	r, err := s.Open(context.Background(), name)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

// faultyIndex injects failures into the flat index.
type faultyIndex struct {
	*flat.Index
	addErr   error
	resetErr error
}

func (i *faultyIndex) Add(ctx context.Context, entries []driven.VectorEntry) error {
	if i.addErr != nil {
		return i.addErr
	}
	return i.Index.Add(ctx, entries)
}

func (i *faultyIndex) Reset(ctx context.Context) error {
	if i.resetErr != nil {
		return i.resetErr
	}
	return i.Index.Reset(ctx)
}
