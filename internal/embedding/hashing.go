package embedding

import (
	"context"

	"github.com/hyperjump/coachrag/pkg/utils"
)

// HashEmbedder is a local, deterministic embedder based on feature hashing of
// word unigrams and bigrams. Texts sharing vocabulary land close together, which
// is enough for small corpora and for running without an embedding service.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder returns a HashEmbedder producing vectors of the given size.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Embed returns the L2-normalised hashed feature vector of text.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, e.dimensions)
	words := Words(text)
	for i, w := range words {
		e.add(v, w, 1)
		if i > 0 {
			e.add(v, words[i-1]+" "+w, 0.5)
		}
	}
	utils.NormalizeL2(v)
	return v, nil
}

// add folds feature f into v with a hash-derived sign to keep collisions unbiased.
func (e *HashEmbedder) add(v []float32, f string, weight float32) {
	h := HashString(f)
	idx := int(h % uint32(e.dimensions))
	if h&(1<<31) != 0 {
		weight = -weight
	}
	v[idx] += weight
}

// EmbedBatch calls Embed for each text.
func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, texts, e.Embed)
}

// Dimensions returns the embedding dimension.
func (e *HashEmbedder) Dimensions() int { return e.dimensions }

// Name identifies the embedder in status output.
func (e *HashEmbedder) Name() string { return "hash" }

// Close is a no-op.
func (e *HashEmbedder) Close() error { return nil }
