package vector

import (
	"context"
	"sync"

	"github.com/hyperjump/coachrag/internal/embedding"
	"github.com/hyperjump/coachrag/internal/models"
	"github.com/hyperjump/coachrag/pkg/utils"
)

// MemoryStore keeps chunks in process and ranks them by cosine distance.
// Suitable for tests and demos; contents are lost on exit.
type MemoryStore struct {
	embedder embedding.Embedder
	mu       sync.RWMutex
	order    []string
	records  map[string]*models.DocumentChunk
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(embedder embedding.Embedder) *MemoryStore {
	return &MemoryStore{embedder: embedder, records: make(map[string]*models.DocumentChunk)}
}

// Type returns the store type identifier.
func (m *MemoryStore) Type() string { return string(StoreTypeMemory) }

// Heartbeat always succeeds.
func (m *MemoryStore) Heartbeat(context.Context) error { return nil }

// Add stores copies of chunks, replacing records with the same ID.
func (m *MemoryStore) Add(ctx context.Context, chunks []*models.DocumentChunk) error {
	if err := embedChunks(ctx, m.embedder, chunks); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		cp := *c
		if _, exists := m.records[cp.ID]; !exists {
			m.order = append(m.order, cp.ID)
		}
		m.records[cp.ID] = &cp
	}
	return nil
}

// Query returns the k chunks nearest to text. Insertion order breaks distance ties.
func (m *MemoryStore) Query(ctx context.Context, text string, k int) ([]*models.Candidate, error) {
	if k <= 0 {
		return []*models.Candidate{}, nil
	}
	q, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	cands := make([]*models.Candidate, 0, len(m.order))
	for _, id := range m.order {
		r := m.records[id]
		cands = append(cands, &models.Candidate{
			ID:         r.ID,
			DocumentID: r.DocumentID,
			ChunkID:    r.ChunkID,
			Content:    r.Content,
			Priority:   r.Priority,
			Distance:   utils.CosineDistance(q, r.Embedding),
		})
	}
	return nearest(cands, k), nil
}

// DeleteDocument removes all chunks of docID.
func (m *MemoryStore) DeleteDocument(_ context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.order[:0]
	for _, id := range m.order {
		if m.records[id].DocumentID == docID {
			delete(m.records, id)
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return nil
}

// Count returns the number of stored chunks.
func (m *MemoryStore) Count(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
