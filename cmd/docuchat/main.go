// Command docuchat is the document chat CLI. It wires the OpenAI adapters,
// the SQLite store and the core services into the command tree.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/quillon/docuchat/internal/adapters/driven/config/file"
	embopenai "github.com/quillon/docuchat/internal/adapters/driven/embedding/openai"
	llmopenai "github.com/quillon/docuchat/internal/adapters/driven/llm/openai"
	"github.com/quillon/docuchat/internal/adapters/driven/storage/sqlite"
	"github.com/quillon/docuchat/internal/adapters/driving/cli"
	"github.com/quillon/docuchat/internal/core/domain"
	"github.com/quillon/docuchat/internal/core/ports/driven"
	"github.com/quillon/docuchat/internal/core/services"
	"github.com/quillon/docuchat/internal/extractors"
	"github.com/quillon/docuchat/internal/extractors/docx"
	"github.com/quillon/docuchat/internal/extractors/pdf"
	"github.com/quillon/docuchat/internal/extractors/plaintext"
	"github.com/quillon/docuchat/internal/extractors/xlsx"
	"github.com/quillon/docuchat/internal/logger"
	"github.com/quillon/docuchat/internal/postprocessors/chunker"
	"github.com/quillon/docuchat/internal/watch"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	settings := file.LoadSettings(configStore)

	apiKey := os.Getenv(settings.APIKeyEnv)
	if apiKey == "" {
		logger.Warn("%s is not set; ingest, search and chat are disabled", settings.APIKeyEnv)
	}

	cli.SetVersion(version)

	if apiKey != "" {
		cleanup, err := wireServices(settings, apiKey)
		if err != nil {
			return err
		}
		defer cleanup()
	}

	return cli.ExecuteContext(ctx)
}

// wireServices builds the adapters and core services and injects them into
// the command tree.
func wireServices(settings file.Settings, apiKey string) (func(), error) {
	embedder, err := embopenai.NewEmbeddingService(embopenai.Config{
		APIKey:     apiKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.EmbedModel,
		Dimensions: settings.EmbedDims,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding service: %w", err)
	}

	model, err := llmopenai.New(llmopenai.Config{
		APIKey:  apiKey,
		BaseURL: settings.BaseURL,
		Model:   settings.ChatModel,
	})
	if err != nil {
		return nil, fmt.Errorf("creating chat model: %w", err)
	}

	store, err := sqlite.NewStore(settings.DataDir, embedder.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	processor, err := chunker.New(settings.ChunkSize, settings.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("configuring chunker: %w", err)
	}

	registry := extractors.NewRegistry(
		plaintext.New(),
		docx.New(),
		xlsx.New(),
		pdf.New(),
	)

	if err := pdf.CheckAvailable(); err != nil {
		logger.Warn("%v\n%s", err, pdf.InstallInstructions())
	}

	index := store.VectorIndex()
	docStore := store.DocumentStore()

	ingestService := services.NewIngestService(registry, processor, embedder, index, docStore)
	searchService := services.NewSearchService(embedder, index)
	chatService := services.NewChatService(
		embedder,
		index,
		model,
		services.NewContextAssembler(),
		services.NewConversationManager(),
		settings.Chat,
	)

	cli.SetServices(ingestService, searchService, chatService)
	cli.AddPinger("embeddings ("+embedder.ModelName()+")", func(cmd *cobra.Command) error {
		return embedder.Ping(cmd.Context())
	})
	cli.AddPinger("chat model ("+model.ModelName()+")", func(cmd *cobra.Command) error {
		return model.Ping(cmd.Context())
	})
	cli.SetSearchDefaults(domain.SearchOptions{
		TopK:      settings.SearchTopK,
		Threshold: settings.SearchThreshold,
	})
	cli.SetChatDefaults(driven.ChatOptions{
		MaxTokens: settings.ChatMaxTokens,
	})
	cli.SetWatchDefaults(settings.WatchDir, watch.Options{
		Department: settings.Department,
		Tags:       settings.Tags,
	})

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing store: %v", err)
		}
		_ = embedder.Close()
		_ = model.Close()
	}
	return cleanup, nil
}
