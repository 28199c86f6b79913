package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"gnss-assistant/internal/config"
	"gnss-assistant/internal/domain"
	"gnss-assistant/internal/embedding/ollama"
	"gnss-assistant/internal/embedding/openai"
	"gnss-assistant/internal/engine"
	"gnss-assistant/internal/generation"
	"gnss-assistant/internal/logging"
	"gnss-assistant/internal/tui"
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

	// The TUI owns the terminal, so logs go to a rotated file.
	logger := logging.NewFile(cfg.LogFile)
	defer logger.Sync() //nolint:errcheck

	emb, err := buildEmbedder(cfg)
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("vector store init failed: %v", err)
	}
	defer store.Close()

	gen := generation.NewClient(generation.Config{
		BaseURL: cfg.Generation.BaseURL,
		Model:   cfg.Generation.Model,
		Timeout: time.Duration(cfg.Generation.TimeoutSecs) * time.Second,
	})

	eng := engine.New(emb, store, gen, cfg.Query.TopK, cfg.Query.Temperature, logger)

	m := tui.New(eng, cfg.Query.Temperature)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
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
