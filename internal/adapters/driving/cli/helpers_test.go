package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
)

// mockIngestService records ingest requests.
type mockIngestService struct {
	requests []driving.IngestRequest
	err      error
}

func (m *mockIngestService) Ingest(_ context.Context, req driving.IngestRequest) (*domain.IngestResult, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestResult{
		Document: domain.Document{ID: int64(len(m.requests) + 2), Name: req.Name},
		Chunks:   3,
	}, nil
}

func (m *mockIngestService) Bootstrap(_ context.Context, _ string) (*domain.IngestResult, error) {
	return nil, nil
}

// mockAnswerService returns a canned answer and hits.
type mockAnswerService struct {
	answer      domain.Answer
	hits        []domain.RetrievalHit
	retrieveErr error

	lastQuestion string
	lastK        int
}

func (m *mockAnswerService) Ask(_ context.Context, question string) domain.Answer {
	m.lastQuestion = question
	return m.answer
}

func (m *mockAnswerService) Retrieve(_ context.Context, query string, k int) ([]domain.RetrievalHit, error) {
	m.lastQuestion = query
	m.lastK = k
	if m.retrieveErr != nil {
		return nil, m.retrieveErr
	}
	return m.hits, nil
}

// mockDocumentService serves documents from a map.
type mockDocumentService struct {
	docs       []domain.Document
	files      map[int64][]byte
	size       int
	listErr    error
	deleteErr  error
	rebuildErr error
	deleted    []int64
	rebuilds   int
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.docs, nil
}

func (m *mockDocumentService) Get(_ context.Context, id int64) (*domain.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			doc := m.docs[i]
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Download(ctx context.Context, id int64) (string, io.ReadCloser, error) {
	doc, err := m.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	data, ok := m.files[id]
	if !ok {
		return "", nil, domain.ErrNotFound
	}
	return doc.Name, io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockDocumentService) Delete(_ context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	m.size -= 2
	return nil
}

func (m *mockDocumentService) Rebuild(_ context.Context) (*domain.RebuildStats, error) {
	m.rebuilds++
	if m.rebuildErr != nil {
		return nil, m.rebuildErr
	}
	return &domain.RebuildStats{Documents: len(m.docs), Vectors: m.size, Duration: 1500 * time.Microsecond}, nil
}

func (m *mockDocumentService) IndexSize() int {
	return m.size
}

// mockSettingsService keeps settings in memory and applies dotted keys
// for the handful of fields the tests touch.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error
	setErr      error
	sets        map[string]string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultAppSettings(),
		sets:     map[string]string{},
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if !strings.Contains(key, ".") {
		return domain.ErrInvalidInput
	}
	m.sets[key] = value
	switch key {
	case "embedding.api_key":
		m.settings.Embedding.APIKey = value
	case "llm.api_key":
		m.settings.LLM.APIKey = value
	}
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.pingErr
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.pingErr
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	ingest   *mockIngestService
	answer   *mockAnswerService
	document *mockDocumentService
	settings *mockSettingsService

	prepares int
}

var testUploadDate = time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

func newTestServices() *testServices {
	docs := []domain.Document{
		{ID: 1, Name: "initial_context.txt", UploadedAt: testUploadDate, Content: "Bootstrap text.", Protected: true},
		{ID: 2, Name: "returns.txt", UploadedAt: testUploadDate, Content: "Returns are accepted within thirty days."},
	}
	return &testServices{
		ingest: &mockIngestService{},
		answer: &mockAnswerService{
			answer: domain.Answer{
				Text: "Returns are accepted within thirty days.",
				Hits: []domain.RetrievalHit{{
					Ordinal:  1,
					Distance: 0.1234,
					Document: docs[1],
					Chunk:    domain.Chunk{ID: "chunk-2-0", DocumentID: 2, Content: "Returns are accepted\nwithin thirty days.", Position: 0},
				}},
			},
		},
		document: &mockDocumentService{
			docs:  docs,
			files: map[int64][]byte{2: []byte("raw returns policy")},
			size:  6,
		},
		settings: newMockSettingsService(),
	}
}

// setupTestServices installs fresh mock services and resets command flags.
// The returned function restores the previous state.
func setupTestServices() func() {
	cleanup, _ := setupTestServicesWithMocks()
	return cleanup
}

func setupTestServicesWithMocks() (func(), *testServices) {
	prevIngest, prevAnswer := ingestService, answerService
	prevDocument, prevSettings := documentService, settingsService
	prevTUI := tuiConfig
	prevPrepare, prevPrepared := prepareIndex, indexPrepared

	ts := newTestServices()
	SetServices(&Services{
		Ingest:   ts.ingest,
		Answer:   ts.answer,
		Document: ts.document,
		Settings: ts.settings,
		Prepare: func(context.Context) error {
			ts.prepares++
			return nil
		},
	})
	resetFlags()

	return func() {
		ingestService, answerService = prevIngest, prevAnswer
		documentService, settingsService = prevDocument, prevSettings
		tuiConfig = prevTUI
		prepareIndex, indexPrepared = prevPrepare, prevPrepared
		resetFlags()
		rootCmd.SetIn(nil)
	}, ts
}

func resetFlags() {
	addType, addName = "", ""
	askSources = false
	searchLimit, searchAsJSON = 0, false
	downloadOutput = ""
	verbose = false
}

// execute runs the root command with args and returns its combined output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

var errBoom = errors.New("boom")
