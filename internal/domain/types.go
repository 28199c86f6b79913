package domain

import "context"

// Document is a named unit of source text. The name is stable (the file
// name) and identifies the document for idempotency checks and provenance.
type Document struct {
	Name    string
	Path    string
	Content string
}

// ChunkMetadata is the structured metadata persisted alongside every chunk.
// Source is required: it holds the owning document name and is what makes
// "already indexed" checks and source attribution possible.
type ChunkMetadata struct {
	Source string `json:"source"`
}

// Chunk is a bounded slice of a document's text, the unit of embedding and
// retrieval. IDs are opaque and globally unique.
type Chunk struct {
	ID        string
	Text      string
	Embedding []float32
	Meta      ChunkMetadata
}

// ScoredChunk is a retrieval result. Distance is cosine distance to the
// query vector; lower means a better match.
type ScoredChunk struct {
	Text     string
	Meta     ChunkMetadata
	Distance float64
}

// Embedder converts text into fixed-dimension dense vectors. Implementations
// must be deterministic for a fixed model version.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelName() string
}

// VectorStore is a durable collection of chunks supporting an exact filter
// on the source document name and nearest-neighbour queries.
//
// Add appends records as a single write; callers that need to stay under a
// store's per-call size limit partition their input and call Add once per
// batch. Query returns the k nearest chunks ordered by non-decreasing
// distance, or all of them if the collection holds fewer than k.
type VectorStore interface {
	Exists(ctx context.Context, source string) (bool, error)
	Add(ctx context.Context, chunks []Chunk) error
	Query(ctx context.Context, embedding []float32, k int) ([]ScoredChunk, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

// Generator produces a completion for a prompt against a text-generation
// backend. The returned string is the fully accumulated answer; streaming,
// if any, is internal to the implementation.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}
