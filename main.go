package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/SaiNageswarS/go-api-boot/config"
	"github.com/SaiNageswarS/go-api-boot/dotenv"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/coursepilot/coursepilot/appconfig"
	"github.com/coursepilot/coursepilot/embedding"
	"github.com/coursepilot/coursepilot/index"
	"github.com/coursepilot/coursepilot/ingest"
	"github.com/coursepilot/coursepilot/llm"
	"github.com/coursepilot/coursepilot/memory"
	"github.com/coursepilot/coursepilot/rag"
	"github.com/coursepilot/coursepilot/search"
	"github.com/coursepilot/coursepilot/server"
	"github.com/coursepilot/coursepilot/tools"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

func main() {
	dotenv.LoadEnv()

	// load config file
	ccfgg := &appconfig.AppConfig{}
	err := config.LoadConfig("config.ini", ccfgg)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ollamaClient, err := api.ClientFromEnvironment()
	if err != nil {
		logger.Fatal("Failed to create Ollama client", zap.Error(err))
	}

	var llmClient llm.LLMClient
	switch ccfgg.LLMProvider {
	case "ollama":
		llmClient = llm.NewOllamaClient(ccfgg.OllamaChatModel)
	default:
		llmClient = llm.NewAnthropicClient(ccfgg.AnthropicModel)
	}

	embedder := embedding.NewOllamaEmbedder(ollamaClient, ccfgg.EmbeddingModel, ccfgg.EmbeddingDimensions)
	idx := index.NewVectorIndex(embedder.Dimensions())
	catalog := index.NewCourseCatalog()
	searchService := search.NewService(embedder, idx, catalog, ccfgg.MaxResults)

	registry := tools.NewRegistry()
	if err := registry.Register(tools.NewCourseSearchTool(searchService)); err != nil {
		logger.Fatal("Failed to register search tool", zap.Error(err))
	}
	if err := registry.Register(tools.NewCourseOutlineTool(catalog)); err != nil {
		logger.Fatal("Failed to register outline tool", zap.Error(err))
	}

	store := memory.NewConversationStore(ccfgg.MaxMessages)
	system, err := rag.NewSystem(llmClient, registry, store)
	if err != nil {
		logger.Fatal("Failed to build RAG system", zap.Error(err))
	}

	ctx := getCancellableContext()

	ingestor := ingest.NewIngestor(embedder, idx, catalog, ingest.NewSentenceChunker(5, 1))
	courses, chunks, err := ingestor.IngestDir(ctx, ccfgg.DocsDir)
	if err != nil {
		logger.Fatal("Failed to ingest course documents", zap.Error(err))
	}
	logger.Info("startup ingestion complete",
		zap.Int("courses", courses), zap.Int("chunks", chunks))

	watcher, err := ingest.NewWatcher(ingestor)
	if err != nil {
		logger.Fatal("Failed to create docs watcher", zap.Error(err))
	}
	defer watcher.Stop()
	if err := watcher.Watch(ctx, ccfgg.DocsDir); err != nil {
		logger.Fatal("Failed to watch docs folder", zap.Error(err))
	}

	srv := server.NewServer(system, catalog, ccfgg.HTTPPort)
	if err := srv.Start(ctx); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func getCancellableContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		cancel()
	}()

	return ctx
}
