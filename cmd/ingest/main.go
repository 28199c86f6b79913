package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"gnss-assistant/internal/chunker"
	"gnss-assistant/internal/config"
	"gnss-assistant/internal/domain"
	"gnss-assistant/internal/embedding/ollama"
	"gnss-assistant/internal/embedding/openai"
	"gnss-assistant/internal/ingest"
	"gnss-assistant/internal/logging"
	"gnss-assistant/internal/vectorstore/memory"
	"gnss-assistant/internal/vectorstore/qdrant"
	"gnss-assistant/internal/vectorstore/sqlite"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/gnss-assistant/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.NewConsole()
	defer logger.Sync() //nolint:errcheck

	emb, err := buildEmbedder(cfg)
	if err != nil {
		logger.Fatal("embedder init failed", zap.Error(err))
	}

	store, err := buildStore(cfg)
	if err != nil {
		logger.Fatal("vector store init failed", zap.Error(err))
	}
	defer store.Close()

	splitter := chunker.NewSplitter(cfg.Chunker.MaxChars, cfg.Chunker.Overlap)
	pipeline := ingest.New(splitter, emb, store, logger, cfg.Ingest.MaxBatchSize)

	summary, err := pipeline.Run(context.Background(), cfg.DocsDir)
	if err != nil {
		logger.Fatal("ingestion failed", zap.Error(err))
	}

	total, err := store.Count(context.Background())
	if err != nil {
		logger.Warn("could not count collection", zap.Error(err))
	}

	logger.Info("ingestion complete",
		zap.Int("indexed", summary.Indexed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("chunks", summary.Chunks),
		zap.Int64("collection_size", total))
}

func buildEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "ollama", "":
		return ollama.NewClient(ollama.Config{
			BaseURL: cfg.Embedder.BaseURL,
			Model:   cfg.Embedder.Model,
			Timeout: time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
		}), nil
	case "openai":
		oc := cfg.Embedder.OpenAI
		if oc == nil {
			oc = &config.OpenAIEmbedderConfig{}
		}
		return openai.NewClient(openai.Config{
			BaseURL:   oc.BaseURL,
			APIKeyEnv: oc.APIKeyEnv,
			Model:     oc.Model,
			Timeout:   time.Duration(oc.TimeoutSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func buildStore(cfg *config.AppConfig) (domain.VectorStore, error) {
	switch cfg.Storage.Type {
	case "sqlite", "":
		return sqlite.NewStore(cfg.Storage.Path, cfg.Storage.Collection)
	case "qdrant":
		qc := cfg.Storage.Qdrant
		if qc == nil {
			qc = &config.QdrantConfig{}
		}
		return qdrant.NewStore(qdrant.Config{
			URL:        qc.URL,
			APIKey:     qc.APIKey,
			Collection: cfg.Storage.Collection,
			Timeout:    time.Duration(qc.TimeoutSecs) * time.Second,
		}), nil
	case "memory":
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.Storage.Type)
	}
}
