package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnss-assistant/internal/domain"
)

func chunk(id, source, text string, embedding []float32) domain.Chunk {
	return domain.Chunk{
		ID:        id,
		Text:      text,
		Embedding: embedding,
		Meta:      domain.ChunkMetadata{Source: source},
	}
}

func TestStore_ExistsAndCount(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	present, err := store.Exists(ctx, "doc.txt")
	require.NoError(t, err)
	assert.False(t, present)

	err = store.Add(ctx, []domain.Chunk{
		chunk("a", "doc.txt", "one", []float32{1, 0}),
		chunk("b", "doc.txt", "two", []float32{0, 1}),
	})
	require.NoError(t, err)

	present, err = store.Exists(ctx, "doc.txt")
	require.NoError(t, err)
	assert.True(t, present)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestStore_DimensionMismatch(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.Add(ctx, []domain.Chunk{chunk("a", "doc.txt", "one", []float32{1, 0, 0})})
	require.NoError(t, err)

	err = store.Add(ctx, []domain.Chunk{chunk("b", "doc.txt", "two", []float32{1, 0})})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestStore_QueryRanking(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.Add(ctx, []domain.Chunk{
		chunk("a", "one.txt", "orthogonal", []float32{0, 1}),
		chunk("b", "two.txt", "identical", []float32{1, 0}),
	})
	require.NoError(t, err)

	results, err := store.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "identical", results[0].Text)
	assert.Equal(t, "orthogonal", results[1].Text)
}

func TestStore_QueryFewerThanK(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.Add(ctx, []domain.Chunk{chunk("a", "doc.txt", "only", []float32{1, 0})})
	require.NoError(t, err)

	results, err := store.Query(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestStore_QueryEmpty(t *testing.T) {
	store := NewStore()

	results, err := store.Query(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}
