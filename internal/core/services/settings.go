package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir            = "data_dir"
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keyEmbedDimensions    = "embedding.dimensions"
	keyEmbedRateLimit     = "embedding.rate_limit"
	keyEmbedTimeout       = "embedding.timeout"
	keyLLMProvider        = "llm.provider"
	keyLLMModel           = "llm.model"
	keyLLMBaseURL         = "llm.base_url"
	keyLLMAPIKey          = "llm.api_key"
	keyLLMMaxTokens       = "llm.max_tokens"
	keyLLMTemperature     = "llm.temperature"
	keyLLMTimeout         = "llm.timeout"
	keyIngestChunkSize    = "ingest.chunk_size"
	keyIngestSegment      = "ingest.segment"
	keyIngestFormats      = "ingest.formats"
	keyIngestBootstrap    = "ingest.bootstrap_path"
	keyRetrievalTopK      = "retrieval.top_k"
	keyRetrievalBudget    = "retrieval.context_budget"
	keyRetrievalAttribute = "retrieval.attribution"
)

// Environment variables consulted when no API key is stored.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	envOpenAIKey    = "OPENAI_API_KEY"
	envAnthropicKey = "ANTHROPIC_API_KEY"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Keys returns every settable configuration key in display order.
func Keys() []string {
	return []string{
		keyDataDir,
		keyEmbedProvider, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey,
		keyEmbedDimensions, keyEmbedRateLimit, keyEmbedTimeout,
		keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey,
		keyLLMMaxTokens, keyLLMTemperature, keyLLMTimeout,
		keyIngestChunkSize, keyIngestSegment, keyIngestFormats, keyIngestBootstrap,
		keyRetrievalTopK, keyRetrievalBudget, keyRetrievalAttribute,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		DataDir: s.configStore.GetString(keyDataDir),
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:      s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.configStore.GetInt(keyEmbedDimensions),
			RateLimit:  s.configStore.GetFloat(keyEmbedRateLimit),
			Timeout:    s.getDuration(keyEmbedTimeout, defaults.Embedding.Timeout),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:       s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL),
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			MaxTokens:   s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
			Temperature: s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
			Timeout:     s.getDuration(keyLLMTimeout, defaults.LLM.Timeout),
		},
		Ingest: domain.IngestSettings{
			ChunkSize:     s.getInt(keyIngestChunkSize, defaults.Ingest.ChunkSize),
			Segment:       s.getBool(keyIngestSegment, defaults.Ingest.Segment),
			Formats:       s.getFormats(defaults.Ingest.Formats),
			BootstrapPath: s.getString(keyIngestBootstrap, defaults.Ingest.BootstrapPath),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:          s.getInt(keyRetrievalTopK, defaults.Retrieval.TopK),
			ContextBudget: s.getInt(keyRetrievalBudget, defaults.Retrieval.ContextBudget),
			Attribution:   s.getAttribution(defaults.Retrieval.Attribution),
		},
	}

	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.envKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envKey(settings.LLM.Provider)
	}

	return settings, nil
}

// Save persists application settings.
// API keys that only come from the environment are not written out.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyDataDir, settings.DataDir},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyEmbedRateLimit, settings.Embedding.RateLimit},
		{keyEmbedTimeout, settings.Embedding.Timeout.String()},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMMaxTokens, settings.LLM.MaxTokens},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyLLMTimeout, settings.LLM.Timeout.String()},
		{keyIngestChunkSize, settings.Ingest.ChunkSize},
		{keyIngestSegment, settings.Ingest.Segment},
		{keyIngestFormats, formatNames(settings.Ingest.Formats)},
		{keyIngestBootstrap, settings.Ingest.BootstrapPath},
		{keyRetrievalTopK, settings.Retrieval.TopK},
		{keyRetrievalBudget, settings.Retrieval.ContextBudget},
		{keyRetrievalAttribute, settings.Retrieval.Attribution.String()},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if err := s.saveAPIKey(keyEmbedAPIKey, settings.Embedding.Provider, settings.Embedding.APIKey); err != nil {
		return err
	}
	return s.saveAPIKey(keyLLMAPIKey, settings.LLM.Provider, settings.LLM.APIKey)
}

func (s *SettingsService) saveAPIKey(key string, provider domain.AIProvider, apiKey string) error {
	if apiKey == "" {
		return nil
	}
	if s.configStore.GetString(key) == "" && apiKey == s.envKey(provider) {
		return nil
	}
	if err := s.configStore.Set(key, apiKey); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Set updates a single dotted configuration key after validating it.
//
//nolint:gocyclo // One case per key keeps the parsing rules in one place.
func (s *SettingsService) Set(key, value string) error {
	value = strings.TrimSpace(value)

	var parsed any
	var err error
	switch key {
	case keyDataDir, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey,
		keyLLMModel, keyLLMBaseURL, keyLLMAPIKey, keyIngestBootstrap:
		parsed = value
	case keyEmbedProvider:
		parsed, err = parseProvider(value, domain.AllEmbeddingProviders())
	case keyLLMProvider:
		parsed, err = parseProvider(value, domain.AllLLMProviders())
	case keyEmbedDimensions:
		parsed, err = parseInt(value, 0)
	case keyLLMMaxTokens, keyIngestChunkSize, keyRetrievalTopK, keyRetrievalBudget:
		parsed, err = parseInt(value, 1)
	case keyEmbedRateLimit:
		parsed, err = parseFloat(value, 0, -1)
	case keyLLMTemperature:
		parsed, err = parseFloat(value, 0, 2)
	case keyEmbedTimeout, keyLLMTimeout:
		var d time.Duration
		d, err = time.ParseDuration(value)
		if err == nil && d <= 0 {
			err = fmt.Errorf("duration must be positive")
		}
		parsed = d.String()
	case keyIngestSegment:
		parsed, err = strconv.ParseBool(value)
	case keyIngestFormats:
		parsed, err = parseFormats(value)
	case keyRetrievalAttribute:
		mode := domain.AttributionMode(value)
		if !mode.IsValid() {
			err = fmt.Errorf("must be %q or %q", domain.AttributionTagged, domain.AttributionPositional)
		}
		parsed = mode.String()
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if _, err := parseProvider(provider.String(), domain.AllEmbeddingProviders()); err != nil {
		return fmt.Errorf("invalid embedding provider: %w", err)
	}

	if apiKey == "" {
		apiKey = s.envKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	// Ollama needs a base URL; hosted and offline providers use their own
	switch {
	case provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "":
		settings.Embedding.BaseURL = "http://localhost:11434"
	case provider != domain.AIProviderOllama:
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey
	// Dimensions follow the new model
	settings.Embedding.Dimensions = 0

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if _, err := parseProvider(provider.String(), domain.AllLLMProviders()); err != nil {
		return fmt.Errorf("invalid LLM provider: %w", err)
	}

	if apiKey == "" {
		apiKey = s.envKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that current settings are internally consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not usable", domain.ErrNotConfigured, settings.Embedding.Provider)
	}
	if !settings.LLM.Provider.IsValid() || settings.LLM.Provider == domain.AIProviderLocal {
		return fmt.Errorf("%w: invalid LLM provider %q", domain.ErrInvalidInput, settings.LLM.Provider)
	}
	if len(settings.Ingest.Formats) == 0 {
		return fmt.Errorf("%w: ingest.formats is empty", domain.ErrInvalidInput)
	}
	if settings.Ingest.ChunkSize <= 0 || settings.Retrieval.TopK <= 0 || settings.Retrieval.ContextBudget <= 0 {
		return fmt.Errorf("%w: sizes must be positive", domain.ErrInvalidInput)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func (s *SettingsService) envKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return s.getenv(envOpenAIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(envAnthropicKey)
	default:
		return ""
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(s.configStore.GetString(key))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getAttribution(defaultVal domain.AttributionMode) domain.AttributionMode {
	mode := domain.AttributionMode(s.configStore.GetString(keyRetrievalAttribute))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getFormats(defaultVal []domain.Format) []domain.Format {
	names := s.configStore.GetStringSlice(keyIngestFormats)
	if len(names) == 0 {
		return defaultVal
	}
	formats := make([]domain.Format, 0, len(names))
	for _, name := range names {
		if f, err := domain.ParseFormat(name); err == nil {
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		return defaultVal
	}
	return formats
}

func parseProvider(value string, allowed []domain.AIProvider) (string, error) {
	for _, p := range allowed {
		if string(p) == value {
			return value, nil
		}
	}
	names := make([]string, len(allowed))
	for i, p := range allowed {
		names[i] = p.String()
	}
	return "", fmt.Errorf("%q is not one of %s", value, strings.Join(names, ", "))
}

func parseInt(value string, minVal int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n < minVal {
		return 0, fmt.Errorf("must be at least %d", minVal)
	}
	return n, nil
}

// parseFloat accepts values in [minVal, maxVal]. A negative maxVal means
// no upper bound.
func parseFloat(value string, minVal, maxVal float64) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if f < minVal || (maxVal >= 0 && f > maxVal) {
		return 0, fmt.Errorf("out of range")
	}
	return f, nil
}

func parseFormats(value string) ([]string, error) {
	var names []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := domain.ParseFormat(part)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", part, err)
		}
		names = append(names, f.String())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one format is required")
	}
	return names, nil
}

func formatNames(formats []domain.Format) []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.String()
	}
	return names
}
