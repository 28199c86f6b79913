// Package sqlite provides the persistent vector store. The collection lives
// in a single SQLite database file; embeddings are stored as little-endian
// float32 blobs and queried with a brute-force cosine scan. Reopening the
// same storage path yields the same collection.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"gnss-assistant/internal/domain"
	"gnss-assistant/internal/vectorstore"
)

var _ domain.VectorStore = (*Store)(nil)

// Store is a SQLite-backed vector collection.
type Store struct {
	db   *sql.DB
	path string

	mu        sync.Mutex
	dimension int
}

// NewStore opens (or creates) the collection named collection under dataDir.
func NewStore(dataDir, collection string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, collection+".db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.loadDimension(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS collection_info (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			dimensions INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

func (s *Store) loadDimension() error {
	row := s.db.QueryRow("SELECT dimensions FROM collection_info WHERE id = 1")
	var dim int
	switch err := row.Scan(&dim); err {
	case nil:
		s.dimension = dim
		return nil
	case sql.ErrNoRows:
		return nil
	default:
		return fmt.Errorf("reading collection info: %w", err)
	}
}

// Exists reports whether any chunk with the given source is present.
func (s *Store) Exists(ctx context.Context, source string) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM chunks WHERE source = ?)", source)
	var present bool
	if err := row.Scan(&present); err != nil {
		return false, fmt.Errorf("checking source %q: %w", source, err)
	}
	return present, nil
}

// Add appends chunks in a single transaction. The first insert into an
// empty collection establishes its dimensionality; every embedding after
// that must match it or the whole call fails with ErrDimensionMismatch.
func (s *Store) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dim := s.dimension
	if dim == 0 {
		dim = len(chunks[0].Embedding)
	}
	for _, c := range chunks {
		if len(c.Embedding) != dim {
			return fmt.Errorf("%w: got %d, collection has %d", domain.ErrDimensionMismatch, len(c.Embedding), dim)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if s.dimension == 0 {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO collection_info (id, dimensions) VALUES (1, ?)", dim); err != nil {
			return fmt.Errorf("recording dimensions: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks (id, source, content, embedding) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		blob := vectorstore.EncodeVector(c.Embedding)
		if _, err := stmt.ExecContext(ctx, c.ID, c.Meta.Source, c.Text, blob); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing insert: %w", err)
	}
	s.dimension = dim
	return nil
}

// Query scans the collection and returns the k nearest chunks by cosine
// distance, fewer if the collection is smaller. Ties keep rowid order.
func (s *Store) Query(ctx context.Context, embedding []float32, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		k = 1
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT source, content, embedding FROM chunks ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var scored []domain.ScoredChunk
	for rows.Next() {
		var source, content string
		var blob []byte
		if err := rows.Scan(&source, &content, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		scored = append(scored, domain.ScoredChunk{
			Text:     content,
			Meta:     domain.ChunkMetadata{Source: source},
			Distance: vectorstore.CosineDistance(embedding, vectorstore.DecodeVector(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Distance < scored[j].Distance })
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int64, error) {
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks")
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}
