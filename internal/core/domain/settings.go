package domain

import "time"

const unknownDescription = "Unknown"

// Defaults shared by configuration and services.
const (
	DefaultChunkSize     = 1000
	DefaultTopK          = 10
	DefaultContextBudget = 1000
	DefaultMaxTokens     = 1000
	DefaultTemperature   = 0.7
	DefaultTimeout       = 60 * time.Second
	DefaultBootstrapPath = "data/initial_context.txt"
)

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderLocal is the built-in hashing embedder. It needs no network.
	AIProviderLocal AIProvider = "local"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderLocal, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLocal
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderLocal:
		return "Local (hashing, offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's vector size when non-zero.
	Dimensions int

	// RateLimit caps embedding requests per second. Zero disables it.
	RateLimit float64

	// Timeout bounds each embedding request.
	Timeout time.Duration
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds completion provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// MaxTokens bounds the completion length.
	MaxTokens int

	// Temperature is the sampling temperature.
	Temperature float64

	// Timeout bounds each completion request.
	Timeout time.Duration
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderLocal {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// IngestSettings controls extraction and chunking.
type IngestSettings struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// Segment re-joins the cleaned text on word boundaries before chunking.
	Segment bool

	// Formats lists the accepted upload formats.
	Formats []Format

	// BootstrapPath is the well-known file ingested once at first run.
	BootstrapPath string
}

// Accepts reports whether uploads of format f are admitted.
func (s IngestSettings) Accepts(f Format) bool {
	for _, allowed := range s.Formats {
		if allowed == f {
			return true
		}
	}
	return false
}

// RetrievalSettings controls nearest-neighbour search and context assembly.
type RetrievalSettings struct {
	// TopK is the number of nearest vectors to retrieve.
	TopK int

	// ContextBudget truncates each context piece, in characters.
	ContextBudget int

	// Attribution selects how hits are resolved to documents.
	Attribution AttributionMode
}

// AppSettings holds all application settings.
type AppSettings struct {
	// DataDir holds the database and uploaded artifacts.
	DataDir string

	Embedding EmbeddingSettings
	LLM       LLMSettings
	Ingest    IngestSettings
	Retrieval RetrievalSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Embeddings work offline through the local provider; the LLM defaults to
// OpenAI and stays unconfigured until an API key is supplied.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderLocal,
			Model:    DefaultEmbeddingModels()[AIProviderLocal],
			Timeout:  DefaultTimeout,
		},
		LLM: LLMSettings{
			Provider:    AIProviderOpenAI,
			Model:       DefaultLLMModels()[AIProviderOpenAI],
			MaxTokens:   DefaultMaxTokens,
			Temperature: DefaultTemperature,
			Timeout:     DefaultTimeout,
		},
		Ingest: IngestSettings{
			ChunkSize:     DefaultChunkSize,
			Segment:       true,
			Formats:       []Format{FormatPDF, FormatText},
			BootstrapPath: DefaultBootstrapPath,
		},
		Retrieval: RetrievalSettings{
			TopK:          DefaultTopK,
			ContextBudget: DefaultContextBudget,
			Attribution:   AttributionTagged,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "hashing-384",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Built-in
		"hashing-384": 384,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration:
// a single non-overlapping chunker.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": DefaultChunkSize,
			},
		},
	}
}

// PipelineConfigFor builds the pipeline configuration for ingest settings.
func PipelineConfigFor(s IngestSettings) PipelineConfig {
	cfg := DefaultPipelineConfig()
	if s.ChunkSize > 0 {
		cfg.ProcessorConfigs["chunker"]["chunk_size"] = s.ChunkSize
	}
	return cfg
}
