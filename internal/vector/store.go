// Package vector stores document chunks with their priority metadata and
// answers nearest-neighbour queries over them.
package vector

import (
	"context"
	"fmt"
	"sort"

	"github.com/hyperjump/coachrag/internal/config"
	"github.com/hyperjump/coachrag/internal/embedding"
	"github.com/hyperjump/coachrag/internal/models"
	"go.uber.org/zap"
)

// Store is a chunk store with similarity search. Implementations are safe for concurrent use.
type Store interface {
	// Heartbeat checks the backend and returns an error if it is unreachable.
	Heartbeat(ctx context.Context) error
	// Add persists chunks with their doc_id, chunk_id and priority metadata.
	Add(ctx context.Context, chunks []*models.DocumentChunk) error
	// Query returns up to k chunks most similar to text, nearest first.
	Query(ctx context.Context, text string, k int) ([]*models.Candidate, error)
	// DeleteDocument removes every chunk of docID. Unknown IDs are not an error.
	DeleteDocument(ctx context.Context, docID string) error
	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)
	Type() string
	Close() error
}

// initializer is implemented by stores that need setup after a successful heartbeat.
type initializer interface {
	Init(ctx context.Context) error
}

// StoreType names a backend.
type StoreType string

const (
	StoreTypeChroma StoreType = "chroma"
	StoreTypeSQLite StoreType = "sqlite"
	StoreTypeBleve  StoreType = "bleve"
	StoreTypeMemory StoreType = "memory"
)

// NewStore creates the store selected by cfg.Type without contacting it.
func NewStore(cfg *config.VectorStoreConfig, embedder embedding.Embedder, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch StoreType(cfg.Type) {
	case StoreTypeChroma, "":
		s, err := NewChromaStore(&cfg.Chroma, embedder, WithChromaLogger(logger))
		if err != nil {
			return nil, err
		}
		return s, nil
	case StoreTypeSQLite:
		s, err := NewSQLiteStore(cfg.SQLite.Path, embedder)
		if err != nil {
			return nil, err
		}
		return s, nil
	case StoreTypeBleve:
		s, err := NewBleveStore(cfg.Bleve.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case StoreTypeMemory:
		return NewMemoryStore(embedder), nil
	default:
		return nil, fmt.Errorf("unknown vector store type: %s (supported: chroma, sqlite, bleve, memory)", cfg.Type)
	}
}

// Open creates the configured store, checks its heartbeat and runs any setup it needs.
// Any failure is reported as models.ErrStorageUnavailable and the store is closed.
func Open(ctx context.Context, cfg *config.VectorStoreConfig, embedder embedding.Embedder, logger *zap.Logger) (Store, error) {
	s, err := NewStore(cfg, embedder, logger)
	if err != nil {
		return nil, models.StorageUnavailable(err)
	}
	if err := s.Heartbeat(ctx); err != nil {
		_ = s.Close()
		return nil, models.StorageUnavailable(err)
	}
	if in, ok := s.(initializer); ok {
		if err := in.Init(ctx); err != nil {
			_ = s.Close()
			return nil, models.StorageUnavailable(err)
		}
	}
	return s, nil
}

// nearest sorts candidates by ascending distance and keeps the first k.
func nearest(cands []*models.Candidate, k int) []*models.Candidate {
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Distance < cands[j].Distance })
	if k < len(cands) {
		cands = cands[:k]
	}
	return cands
}

// embedChunks fills in missing chunk embeddings in one batch call.
func embedChunks(ctx context.Context, e embedding.Embedder, chunks []*models.DocumentChunk) error {
	var texts []string
	var idx []int
	for i, c := range chunks {
		if c.Embedding == nil {
			texts = append(texts, c.Content)
			idx = append(idx, i)
		}
	}
	if len(texts) == 0 {
		return nil
	}
	vecs, err := e.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vecs) != len(texts) {
		return fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vecs), len(texts))
	}
	for j, v := range vecs {
		chunks[idx[j]].Embedding = v
	}
	return nil
}
