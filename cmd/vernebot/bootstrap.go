package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/vernebot/internal/adapters/driven/ai"
	"github.com/custodia-labs/vernebot/internal/adapters/driven/config/file"
	"github.com/custodia-labs/vernebot/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/vernebot/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/vernebot/internal/adapters/driving/cli"
	"github.com/custodia-labs/vernebot/internal/connectors/filesystem"
	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driving"
	"github.com/custodia-labs/vernebot/internal/core/services"
	"github.com/custodia-labs/vernebot/internal/logger"
	"github.com/custodia-labs/vernebot/internal/normalisers"
	"github.com/custodia-labs/vernebot/internal/normalisers/pdf"
	"github.com/custodia-labs/vernebot/internal/normalisers/plaintext"
	"github.com/custodia-labs/vernebot/internal/postprocessors"
)

// bootstrap wires the adapters into the core services.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, func(), error) {
	if err := file.LoadEnv(); err != nil {
		return nil, nil, err
	}

	configStore, err := file.NewConfigStore(opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("reading settings: %w", err)
	}

	personaPath := ""
	if opts.ConfigPath != "" {
		personaPath = filepath.Join(filepath.Dir(opts.ConfigPath), file.PersonaFile)
	}
	personaStore, err := file.NewPersonaStore(personaPath)
	if err != nil {
		return nil, nil, fmt.Errorf("locating persona: %w", err)
	}
	persona, err := personaStore.Load()
	if err != nil {
		logger.Warn("Using the default persona: %v", err)
		persona = domain.DefaultPersona()
	}

	providers := ai.Init(ctx, *settings)

	if err := pdf.CheckAvailable(); err != nil {
		logger.Debug("PDF support unavailable: %v", err)
	}

	indexStore := sqlite.NewIndexStore()
	builder := memory.Builder{}

	ingestService := services.NewIngestService(
		filesystem.New(filesystem.WithInclude(settings.Knowledge.Include...)),
		normalisers.NewRegistry(plaintext.New(), pdf.New()),
		postprocessors.NewDefaultPipeline(settings.Chunking),
		providers.EmbeddingService,
		builder,
		indexStore,
		services.WithBatchSize(settings.Embedding.BatchSize),
		services.WithProgress(opts.Progress),
	)

	retriever := services.NewRetriever(providers.EmbeddingService, nil)
	generator := services.NewGenerationClient(providers.LLMService, services.GenerationConfig{
		Persona:     persona,
		Timeout:     settings.Chat.Timeout,
		MaxTokens:   settings.Chat.MaxTokens,
		Temperature: settings.Chat.Temperature,
	})
	chatService := services.NewChatService(retriever, generator, indexStore, builder, services.ChatConfig{
		TopK:          settings.Chat.TopK,
		HistoryWindow: settings.Chat.HistoryWindow,
	})

	svc := &cli.Services{
		Settings:  settingsService,
		Ingest:    ingestService,
		Retrieval: retriever,
		Chat:      chatService,
		NewSessions: func() driving.SessionStore {
			return services.NewSessionStore()
		},
	}
	return svc, providers.Close, nil
}
