package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnss-assistant/internal/domain"
	"gnss-assistant/internal/vectorstore/memory"
)

// keywordEmbedder maps texts onto axes by keyword so retrieval is
// deterministic without a model.
type keywordEmbedder struct{}

func (keywordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := []float32{0, 0, 1}
	if strings.Contains(strings.ToLower(text), "pseudorange") {
		vec = []float32{1, 0, 0}
	} else if strings.Contains(strings.ToLower(text), "orbit") {
		vec = []float32{0, 1, 0}
	}
	return vec, nil
}

func (k keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i], _ = k.Embed(ctx, t)
	}
	return vecs, nil
}

func (keywordEmbedder) Dimensions() int   { return 3 }
func (keywordEmbedder) ModelName() string { return "keyword" }

type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, domain.ErrModelUnavailable
}

func (failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, domain.ErrModelUnavailable
}

func (failingEmbedder) Dimensions() int   { return 0 }
func (failingEmbedder) ModelName() string { return "failing" }

// recordingGenerator captures every prompt it is asked to complete.
type recordingGenerator struct {
	prompts      []string
	temperatures []float64
	reply        string
	err          error
}

func (r *recordingGenerator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	r.prompts = append(r.prompts, prompt)
	r.temperatures = append(r.temperatures, temperature)
	if r.err != nil {
		return "", r.err
	}
	return r.reply, nil
}

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	emb := keywordEmbedder{}
	texts := []string{
		"The pseudorange is the raw distance measurement from code correlation.",
		"Satellite orbit parameters are broadcast in the ephemeris.",
		"Receivers track the carrier phase for precise positioning.",
	}
	sources := []string{"gnss_intro.txt", "orbits.txt", "carrier.txt"}
	vecs, err := emb.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	chunks := make([]domain.Chunk, len(texts))
	for i := range texts {
		chunks[i] = domain.Chunk{
			ID:        sources[i],
			Text:      texts[i],
			Embedding: vecs[i],
			Meta:      domain.ChunkMetadata{Source: sources[i]},
		}
	}
	require.NoError(t, store.Add(context.Background(), chunks))
	return store
}

func TestAnswer_GroundsPromptInRetrievedContext(t *testing.T) {
	store := seedStore(t)
	gen := &recordingGenerator{reply: "It is the code-based range measurement."}
	eng := New(keywordEmbedder{}, store, gen, 0, 0, nil)

	ans, err := eng.Answer(context.Background(), "What is a pseudorange measurement?", Options{})
	require.NoError(t, err)

	assert.Equal(t, "It is the code-based range measurement.", ans.Text)
	require.Len(t, gen.prompts, 1, "expected exactly one generation call")

	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "ProfessorNav")
	assert.Contains(t, prompt, "The pseudorange is the raw distance measurement")
	assert.Contains(t, prompt, "What is a pseudorange measurement?")
	assert.Contains(t, prompt, "\n---\n")

	// Sources come back in rank order: the pseudorange chunk first.
	require.NotEmpty(t, ans.Sources)
	assert.Equal(t, "gnss_intro.txt", ans.Sources[0].Source)
	assert.Len(t, ans.Sources, DefaultTopK)
}

func TestAnswer_TopKLimitsSources(t *testing.T) {
	store := seedStore(t)
	gen := &recordingGenerator{reply: "ok"}
	eng := New(keywordEmbedder{}, store, gen, 0, 0, nil)

	ans, err := eng.Answer(context.Background(), "Tell me about orbit determination", Options{TopK: 1})
	require.NoError(t, err)
	require.Len(t, ans.Sources, 1)
	assert.Equal(t, "orbits.txt", ans.Sources[0].Source)
}

func TestAnswer_TemperaturePassedThrough(t *testing.T) {
	store := seedStore(t)
	gen := &recordingGenerator{reply: "ok"}
	eng := New(keywordEmbedder{}, store, gen, 0, 0, nil)

	_, err := eng.Answer(context.Background(), "anything", Options{Temperature: 1.2})
	require.NoError(t, err)
	require.Len(t, gen.temperatures, 1)
	assert.InDelta(t, 1.2, gen.temperatures[0], 1e-9)

	_, err = eng.Answer(context.Background(), "anything", Options{})
	require.NoError(t, err)
	require.Len(t, gen.temperatures, 2)
	assert.InDelta(t, DefaultTemperature, gen.temperatures[1], 1e-9)
}

func TestAnswer_EmptyCollectionStillGenerates(t *testing.T) {
	gen := &recordingGenerator{reply: "I cannot find that in the provided context."}
	eng := New(keywordEmbedder{}, memory.NewStore(), gen, 0, 0, nil)

	ans, err := eng.Answer(context.Background(), "What is GLONASS?", Options{})
	require.NoError(t, err)
	assert.Len(t, gen.prompts, 1)
	assert.Empty(t, ans.Sources)
	assert.Equal(t, "I cannot find that in the provided context.", ans.Text)
}

func TestAnswer_EmbedFailure(t *testing.T) {
	gen := &recordingGenerator{reply: "never used"}
	eng := New(failingEmbedder{}, memory.NewStore(), gen, 0, 0, nil)

	_, err := eng.Answer(context.Background(), "anything", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
	assert.Empty(t, gen.prompts, "generation must not run when embedding fails")
}

func TestAnswer_GenerationFailureReturnsNoPartialAnswer(t *testing.T) {
	store := seedStore(t)
	gen := &recordingGenerator{err: domain.ErrBackendUnavailable}
	eng := New(keywordEmbedder{}, store, gen, 0, 0, nil)

	ans, err := eng.Answer(context.Background(), "What is a pseudorange?", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Empty(t, ans.Text)
	assert.Empty(t, ans.Sources)
}
