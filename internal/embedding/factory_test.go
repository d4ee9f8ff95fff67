package embedding

import (
	"context"
	"testing"

	"github.com/hyperjump/coachrag/internal/config"
)

func TestNewEmbedder(t *testing.T) {
	cfg := &config.EmbeddingConfig{Provider: "hash", Dimensions: 16, CacheSize: 4}
	e, err := NewEmbedder(context.Background(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if _, ok := e.(*CachedEmbedder); !ok {
		t.Errorf("expected cached embedder, got %T", e)
	}
	if e.Dimensions() != 16 || e.Name() != "hash" {
		t.Errorf("dims=%d name=%s", e.Dimensions(), e.Name())
	}

	cfg = &config.EmbeddingConfig{Provider: "word2vec", Dimensions: 16}
	if _, err := NewEmbedder(context.Background(), cfg, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}
