// Command ragdesk answers questions about a local corpus of documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/ragdesk/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragdesk/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragdesk/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/ragdesk/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/ragdesk/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragdesk/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/services"
	"github.com/custodia-labs/ragdesk/internal/logger"
	"github.com/custodia-labs/ragdesk/internal/normalisers"
	"github.com/custodia-labs/ragdesk/internal/postprocessors"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// errCommandFailed marks a command error cobra has already reported.
var errCommandFailed = errors.New("command failed")

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, errCommandFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; keys may come from the real environment.
	_ = godotenv.Load()

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("getting home directory: %w", err)
	}
	baseDir := filepath.Join(home, ".ragdesk")

	configStore, err := file.NewConfigStore(baseDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	dataDir := settings.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(baseDir, "data")
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}
	defer store.Close()

	artifacts, err := filesystem.NewArtifactStore(filepath.Join(dataDir, "files"))
	if err != nil {
		return fmt.Errorf("opening artifact store: %w", err)
	}

	embedder, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		logger.Warn("Embedding service unavailable: %v", err)
	}
	if embedder != nil {
		defer embedder.Close()
	}

	llm, err := ai.CreateLLMService(&settings.LLM)
	if err != nil {
		logger.Warn("LLM service unavailable: %v", err)
	}
	if llm != nil {
		defer llm.Close()
	}

	dims := hashing.DefaultDimensions
	if embedder != nil && embedder.Dimensions() > 0 {
		dims = embedder.Dimensions()
	}
	index, err := flat.New(dims)
	if err != nil {
		return fmt.Errorf("creating vector index: %w", err)
	}

	pipeline, err := postprocessors.BuildPipeline(postprocessors.NewDefaultRegistry(),
		domain.PipelineConfigFor(settings.Ingest))
	if err != nil {
		return fmt.Errorf("building chunking pipeline: %w", err)
	}

	prompts, err := file.NewPromptStore(filepath.Join(baseDir, "prompts"))
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}

	docStore := store.DocumentStore()
	corpus := services.NewCorpus(index)
	ingestService := services.NewIngestService(corpus, docStore, artifacts,
		normalisers.NewDefaultRegistry(), pipeline, embedder, settings.Ingest)
	documentService := services.NewDocumentService(corpus, docStore, artifacts, pipeline, embedder)
	answerService := services.NewAnswerService(corpus, docStore, embedder, llm, prompts,
		settings.Retrieval, settings.LLM)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetServices(&cli.Services{
		Ingest:   ingestService,
		Answer:   answerService,
		Document: documentService,
		Settings: settingsService,
		// The index lives in memory only, so the first search of a process
		// rebuilds it from the store.
		Prepare: func(ctx context.Context) error {
			if _, err := ingestService.Bootstrap(ctx, settings.Ingest.BootstrapPath); err != nil {
				logger.Warn("Bootstrap failed: %v", err)
			}
			_, err := documentService.Rebuild(ctx)
			return err
		},
	})
	cli.SetVersion(version)

	if err := cli.ExecuteContext(ctx); err != nil {
		return errCommandFailed
	}
	return nil
}
