package vector

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/coachrag/internal/embedding"
	"github.com/hyperjump/coachrag/internal/models"
	"github.com/hyperjump/coachrag/pkg/utils"
)

// SQLiteStore persists chunks and their embeddings in SQLite and answers
// queries with an exact cosine-distance scan.
type SQLiteStore struct {
	db       *sql.DB
	embedder embedding.Embedder
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string, embedder embedding.Embedder) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db, embedder: embedder}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		doc_id TEXT NOT NULL,
		chunk_id INTEGER NOT NULL,
		content TEXT NOT NULL,
		priority INTEGER NOT NULL,
		embedding BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_doc_id ON chunks(doc_id);
	`
	_, err := db.Exec(schema)
	return err
}

// Type returns the store type identifier.
func (s *SQLiteStore) Type() string { return string(StoreTypeSQLite) }

// Heartbeat pings the database.
func (s *SQLiteStore) Heartbeat(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Add embeds and inserts chunks in one transaction, replacing rows with the same ID.
func (s *SQLiteStore) Add(ctx context.Context, chunks []*models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := embedChunks(ctx, s.embedder, chunks); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO chunks (id, doc_id, chunk_id, content, priority, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, c := range chunks {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.DocumentID, c.ChunkID, c.Content, c.Priority,
			float32SliceToBytes(c.Embedding), c.CreatedAt); err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// Query scans all rows and returns the k nearest by cosine distance. Rows are
// read in insertion order so equal distances keep that order.
func (s *SQLiteStore) Query(ctx context.Context, text string, k int) ([]*models.Candidate, error) {
	if k <= 0 {
		return []*models.Candidate{}, nil
	}
	q, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doc_id, chunk_id, content, priority, embedding FROM chunks ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cands := make([]*models.Candidate, 0)
	for rows.Next() {
		var (
			c    models.Candidate
			blob []byte
		)
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.ChunkID, &c.Content, &c.Priority, &blob); err != nil {
			return nil, err
		}
		vec, err := bytesToFloat32Slice(blob)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", c.ID, err)
		}
		c.Distance = utils.CosineDistance(q, vec)
		cands = append(cands, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nearest(cands, k), nil
}

// DeleteDocument removes all chunks for a document.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, docID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE doc_id = ?`, docID)
	return err
}

// Count returns the total number of chunks.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
