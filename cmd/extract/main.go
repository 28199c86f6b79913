package main

import (
	"bytes"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"gnss-assistant/internal/config"
	"gnss-assistant/internal/logging"
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

	entries, err := os.ReadDir(cfg.DataDir)
	if err != nil {
		logger.Fatal("cannot read data directory", zap.String("dir", cfg.DataDir), zap.Error(err))
	}

	if err := os.MkdirAll(cfg.DocsDir, 0o755); err != nil {
		logger.Fatal("cannot create docs directory", zap.String("dir", cfg.DocsDir), zap.Error(err))
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		logger.Info("no PDF files found", zap.String("dir", cfg.DataDir))
		return
	}

	var converted, failed int
	for _, name := range names {
		src := filepath.Join(cfg.DataDir, name)
		dst := filepath.Join(cfg.DocsDir, strings.TrimSuffix(name, filepath.Ext(name))+".txt")
		if err := extractPDF(src, dst); err != nil {
			logger.Warn("extraction failed", zap.String("pdf", name), zap.Error(err))
			failed++
			continue
		}
		logger.Info("extracted", zap.String("pdf", name), zap.String("txt", filepath.Base(dst)))
		converted++
	}

	logger.Info("extraction complete",
		zap.Int("converted", converted),
		zap.Int("failed", failed),
	)
}

func extractPDF(src, dst string) error {
	f, rdr, err := pdf.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	text, err := rdr.GetPlainText()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, text); err != nil {
		return err
	}
	return os.WriteFile(dst, buf.Bytes(), 0o644)
}
