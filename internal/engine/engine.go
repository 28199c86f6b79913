// Package engine implements the retrieval-augmented query path: embed the
// question, retrieve the closest chunks, assemble a grounded prompt and
// generate an answer with source attribution.
package engine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"gnss-assistant/internal/domain"
)

// Defaults used when the caller leaves Options empty.
const (
	DefaultTopK        = 3
	DefaultTemperature = 0.7
)

// contextSeparator delimits retrieved chunks inside the prompt.
const contextSeparator = "\n---\n"

// promptTemplate frames the assistant persona, the grounding rules, the
// retrieved context and the user's question. The model is instructed to
// answer only from the supplied context; nothing enforces that
// programmatically.
const promptTemplate = `You are ProfessorNav, a dedicated GNSS study assistant. You specialise in
satellite navigation theory, positioning algorithms, satellite data and
programming for GNSS applications in Python, C, C++ and Rust.

Answer using only the trusted material in the context below. Do not
speculate or guess; if the answer is not found in the context, say so
honestly and politely. You may include detailed explanations, mathematical
expressions in Markdown/LaTeX and code blocks where relevant. Be accurate,
concise and easy to understand, but do not shy away from complex answers
when the question calls for them.

Context:
%s

Question:
%s

Answer:
`

// Options adjusts a single query. Zero values select the engine defaults.
type Options struct {
	TopK        int
	Temperature float64
}

// Answer is the generated text plus the metadata of every retrieved chunk,
// in retrieval rank order (best match first).
type Answer struct {
	Text    string
	Sources []domain.ChunkMetadata
}

// Engine answers questions over the indexed corpus.
type Engine struct {
	embedder    domain.Embedder
	store       domain.VectorStore
	generator   domain.Generator
	topK        int
	temperature float64
	log         *zap.Logger
}

// New creates a query engine. A nil logger disables logging; non-positive
// topK and temperature fall back to the package defaults.
func New(embedder domain.Embedder, store domain.VectorStore, generator domain.Generator, topK int, temperature float64, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return &Engine{
		embedder:    embedder,
		store:       store,
		generator:   generator,
		topK:        topK,
		temperature: temperature,
		log:         log,
	}
}

// Answer embeds the question, retrieves the top-k chunks, assembles the
// grounded prompt and invokes generation. An empty collection yields an
// empty context block; generation is still attempted.
func (e *Engine) Answer(ctx context.Context, question string, opts Options) (Answer, error) {
	k := opts.TopK
	if k <= 0 {
		k = e.topK
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = e.temperature
	}

	vec, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return Answer{}, fmt.Errorf("embedding question: %w", err)
	}

	results, err := e.store.Query(ctx, vec, k)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieving context: %w", err)
	}

	texts := make([]string, len(results))
	sources := make([]domain.ChunkMetadata, len(results))
	for i, r := range results {
		texts[i] = r.Text
		sources[i] = r.Meta
	}

	prompt := fmt.Sprintf(promptTemplate, strings.Join(texts, contextSeparator), question)

	e.log.Info("answering question",
		zap.Int("retrieved", len(results)),
		zap.Int("top_k", k),
		zap.Float64("temperature", temperature))

	text, err := e.generator.Generate(ctx, prompt, temperature)
	if err != nil {
		return Answer{}, err
	}

	return Answer{Text: text, Sources: sources}, nil
}
