package vector

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/hyperjump/coachrag/internal/models"
)

// bleveDeletePage bounds how many hits are removed per batch on delete.
const bleveDeletePage = 500

// BleveStore is a lexical chunk store. Relevance comes from Bleve's match score,
// reported as distance 1/(1+score) so lower still means closer.
type BleveStore struct {
	index bleve.Index
}

type bleveChunk struct {
	Content  string `json:"content"`
	DocID    string `json:"doc_id"`
	ChunkID  int    `json:"chunk_id"`
	Priority int    `json:"priority"`
}

// NewBleveStore creates or opens a Bleve index at path.
func NewBleveStore(path string) (*BleveStore, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveStore{index: index}, nil
	}
	index, err := bleve.New(path, chunkMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveStore{index: index}, nil
}

// newBleveMemStore builds an in-memory index, for tests.
func newBleveMemStore() (*BleveStore, error) {
	index, err := bleve.NewMemOnly(chunkMapping())
	if err != nil {
		return nil, err
	}
	return &BleveStore{index: index}, nil
}

func chunkMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()

	content := bleve.NewTextFieldMapping()
	content.Analyzer = standard.Name
	doc.AddFieldMappingsAt("content", content)
	doc.AddFieldMappingsAt("doc_id", bleve.NewKeywordFieldMapping())
	doc.AddFieldMappingsAt("chunk_id", bleve.NewNumericFieldMapping())
	doc.AddFieldMappingsAt("priority", bleve.NewNumericFieldMapping())

	im.AddDocumentMapping("chunk", doc)
	im.DefaultType = "chunk"
	im.DefaultMapping = doc
	return im
}

// Type returns the store type identifier.
func (b *BleveStore) Type() string { return string(StoreTypeBleve) }

// Heartbeat checks the index can be read.
func (b *BleveStore) Heartbeat(context.Context) error {
	_, err := b.index.DocCount()
	return err
}

// Add indexes chunks in one batch.
func (b *BleveStore) Add(_ context.Context, chunks []*models.DocumentChunk) error {
	batch := b.index.NewBatch()
	for _, c := range chunks {
		if err := batch.Index(c.ID, bleveChunk{
			Content:  c.Content,
			DocID:    c.DocumentID,
			ChunkID:  c.ChunkID,
			Priority: c.Priority,
		}); err != nil {
			return fmt.Errorf("index chunk %s: %w", c.ID, err)
		}
	}
	return b.index.Batch(batch)
}

// Query runs a match query over chunk content and returns up to k hits.
func (b *BleveStore) Query(_ context.Context, text string, k int) ([]*models.Candidate, error) {
	if k <= 0 {
		return []*models.Candidate{}, nil
	}
	q := bleve.NewMatchQuery(text)
	q.SetField("content")
	req := bleve.NewSearchRequest(q)
	req.Size = k
	req.Fields = []string{"content", "doc_id", "chunk_id", "priority"}
	res, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*models.Candidate, len(res.Hits))
	for i, hit := range res.Hits {
		out[i] = &models.Candidate{
			ID:         hit.ID,
			DocumentID: metadataString(hit.Fields, "doc_id"),
			ChunkID:    metadataInt(hit.Fields, "chunk_id"),
			Content:    metadataString(hit.Fields, "content"),
			Priority:   metadataInt(hit.Fields, "priority"),
			Distance:   1 / (1 + hit.Score),
		}
	}
	return out, nil
}

// DeleteDocument removes every chunk whose doc_id term matches.
func (b *BleveStore) DeleteDocument(_ context.Context, docID string) error {
	for {
		q := bleve.NewTermQuery(docID)
		q.SetField("doc_id")
		req := bleve.NewSearchRequest(q)
		req.Size = bleveDeletePage
		res, err := b.index.Search(req)
		if err != nil {
			return fmt.Errorf("Bleve search failed: %w", err)
		}
		if len(res.Hits) == 0 {
			return nil
		}
		batch := b.index.NewBatch()
		for _, hit := range res.Hits {
			batch.Delete(hit.ID)
		}
		if err := b.index.Batch(batch); err != nil {
			return fmt.Errorf("Bleve delete failed: %w", err)
		}
	}
}

// Count returns the number of indexed chunks.
func (b *BleveStore) Count(context.Context) (int, error) {
	n, err := b.index.DocCount()
	return int(n), err
}

// Close closes the index.
func (b *BleveStore) Close() error {
	return b.index.Close()
}
