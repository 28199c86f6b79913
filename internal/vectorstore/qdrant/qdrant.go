// Package qdrant provides a vector store backed by a Qdrant server through
// its REST API. It assumes cosine distance and creates the collection on
// first write.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gnss-assistant/internal/domain"
)

var _ domain.VectorStore = (*Store)(nil)

// Store is a minimal REST client to Qdrant.
type Store struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
	created    bool
}

// Config contains connection details for a Qdrant vector store.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// NewStore creates a Qdrant-backed store.
func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Exists reports whether any point carries the given source in its payload.
func (s *Store) Exists(ctx context.Context, source string) (bool, error) {
	req := map[string]any{
		"limit": 1,
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "source", "match": map[string]any{"value": source}},
			},
		},
	}
	var resp struct {
		Result struct {
			Points []json.RawMessage `json:"points"`
		} `json:"result"`
	}
	err := s.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/scroll", s.url, s.collection), req, &resp)
	if err != nil {
		// A missing collection means nothing has been indexed yet.
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return len(resp.Result.Points) > 0, nil
}

// Add upserts chunks as points. The collection is created with the first
// batch's dimensionality.
func (s *Store) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := s.ensureCollection(ctx, len(chunks[0].Embedding)); err != nil {
		return err
	}
	points := make([]map[string]any, len(chunks))
	for i, c := range chunks {
		points[i] = map[string]any{
			"id":     c.ID,
			"vector": c.Embedding,
			"payload": map[string]any{
				"source": c.Meta.Source,
				"text":   c.Text,
			},
		}
	}
	body := map[string]any{"points": points}
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body)
}

// Query returns the k nearest points. Qdrant reports cosine similarity, so
// distance is 1 - score.
func (s *Store) Query(ctx context.Context, embedding []float32, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		k = 1
	}
	req := map[string]any{
		"vector":       embedding,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	results := make([]domain.ScoredChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		sc := domain.ScoredChunk{Distance: 1 - r.Score}
		if v, ok := r.Payload["source"].(string); ok {
			sc.Meta.Source = v
		}
		if v, ok := r.Payload["text"].(string); ok {
			sc.Text = v
		}
		results = append(results, sc)
	}
	return results, nil
}

// Count returns the number of stored points.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var resp struct {
		Result struct {
			Count int64 `json:"count"`
		} `json:"result"`
	}
	err := s.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/count", s.url, s.collection), map[string]any{"exact": true}, &resp)
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return resp.Result.Count, nil
}

// Close releases no resources; the HTTP client needs no cleanup.
func (s *Store) Close() error { return nil }

func (s *Store) ensureCollection(ctx context.Context, dimension int) error {
	if s.created {
		return nil
	}
	if dimension <= 0 {
		return fmt.Errorf("%w: empty embedding", domain.ErrDimensionMismatch)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	// Qdrant returns 409 if the collection already exists; treat as created.
	err := s.putJSON(ctx, fmt.Sprintf("%s/collections/%s", s.url, s.collection), body)
	if err == nil || isConflict(err) {
		s.created = true
		return nil
	}
	return err
}

type statusError struct {
	code   int
	method string
	url    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant %s %s failed: status %d", e.method, e.url, e.code)
}

func isConflict(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusConflict
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

func (s *Store) putJSON(ctx context.Context, url string, body any) error {
	return s.doJSON(ctx, http.MethodPut, url, body, nil)
}

func (s *Store) postJSON(ctx context.Context, url string, body any, out any) error {
	return s.doJSON(ctx, http.MethodPost, url, body, out)
}

func (s *Store) doJSON(ctx context.Context, method, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, method: method, url: url}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
