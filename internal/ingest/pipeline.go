// Package ingest implements the document ingestion pipeline: read, chunk,
// embed and index every text document in a directory, skipping documents
// the collection already holds.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gnss-assistant/internal/chunker"
	"gnss-assistant/internal/domain"
)

// DefaultMaxBatchSize keeps store writes below the backend's per-call limit.
const DefaultMaxBatchSize = 5000

// Pipeline wires the chunker, embedder and vector store for ingestion.
type Pipeline struct {
	splitter *chunker.Splitter
	embedder domain.Embedder
	store    domain.VectorStore
	log      *zap.Logger
	maxBatch int
}

// Summary reports the outcome of one ingestion run.
type Summary struct {
	Indexed int
	Skipped int
	Failed  int
	Chunks  int
}

// New creates an ingestion pipeline. A nil logger disables logging.
func New(splitter *chunker.Splitter, embedder domain.Embedder, store domain.VectorStore, log *zap.Logger, maxBatch int) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatchSize
	}
	return &Pipeline{
		splitter: splitter,
		embedder: embedder,
		store:    store,
		log:      log,
		maxBatch: maxBatch,
	}
}

// Run ingests every *.txt file in docsDir in lexicographic order. A failing
// document is logged and counted; it never stops the run.
func (p *Pipeline) Run(ctx context.Context, docsDir string) (Summary, error) {
	entries, err := os.ReadDir(docsDir)
	if err != nil {
		return Summary{}, fmt.Errorf("reading documents directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var sum Summary
	for _, name := range names {
		chunks, skipped, err := p.IngestFile(ctx, filepath.Join(docsDir, name))
		switch {
		case err != nil:
			p.log.Warn("ingest failed",
				zap.String("document", name),
				zap.Error(err))
			sum.Failed++
		case skipped:
			p.log.Info("skipping document, already indexed",
				zap.String("document", name))
			sum.Skipped++
		default:
			sum.Indexed++
			sum.Chunks += chunks
		}
	}
	return sum, nil
}

// IngestFile indexes one document. It returns the number of chunks written
// and whether the document was skipped because its name is already present
// in the collection.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (int, bool, error) {
	name := filepath.Base(path)

	indexed, err := p.store.Exists(ctx, name)
	if err != nil {
		return 0, false, fmt.Errorf("checking index for %s: %w", name, err)
	}
	if indexed {
		return 0, true, nil
	}

	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", domain.ErrDocumentRead, err)
	}
	doc := domain.Document{Name: name, Path: path, Content: string(data)}

	texts := p.splitter.Split(doc.Content)
	if len(texts) == 0 {
		p.log.Info("document is empty, nothing to index", zap.String("document", name))
		return 0, false, nil
	}

	// One batched call amortises the model load across all chunks.
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, false, fmt.Errorf("embedding %s: %w", name, err)
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:        uuid.New().String(),
			Text:      text,
			Embedding: vectors[i],
			Meta:      domain.ChunkMetadata{Source: doc.Name},
		}
	}

	batches := partition(chunks, p.maxBatch)
	for i, batch := range batches {
		if err := p.store.Add(ctx, batch); err != nil {
			// Earlier batches stay committed; the document is left
			// partially indexed.
			return 0, false, fmt.Errorf("%w: batch %d of %d for %s: %w",
				domain.ErrBatchWrite, i+1, len(batches), name, err)
		}
	}

	p.log.Info("indexed document",
		zap.String("document", name),
		zap.Int("chunks", len(chunks)),
		zap.Duration("elapsed", time.Since(start)))
	return len(chunks), false, nil
}

// partition splits chunks into consecutive batches of at most size.
func partition(chunks []domain.Chunk, size int) [][]domain.Chunk {
	var batches [][]domain.Chunk
	for start := 0; start < len(chunks); start += size {
		end := start + size
		if end > len(chunks) {
			end = len(chunks)
		}
		batches = append(batches, chunks[start:end])
	}
	return batches
}
