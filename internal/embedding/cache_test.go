package embedding

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestEmbeddingCache_GetSet(t *testing.T) {
	c := NewEmbeddingCache(2)
	if v, ok := c.Get("a"); ok || v != nil {
		t.Fatal("expected miss")
	}
	c.Set("a", []float32{1, 2, 3})
	v, ok := c.Get("a")
	if !ok || len(v) != 3 || v[0] != 1 {
		t.Errorf("Get: got %v, %v", v, ok)
	}
	c.Set("b", []float32{4, 5})
	c.Get("a")               // a becomes most recent
	c.Set("c", []float32{6}) // evicts b
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to remain")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestEmbeddingCache_Concurrent(t *testing.T) {
	c := NewEmbeddingCache(16)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g+i)%32)
				c.Set(key, []float32{float32(i)})
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 16 {
		t.Errorf("cache grew past capacity: %d", c.Len())
	}
}

type countingEmbedder struct {
	HashEmbedder
	calls int
	texts int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	c.texts++
	return c.HashEmbedder.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls++
	c.texts += len(texts)
	return embedEach(ctx, texts, c.HashEmbedder.Embed)
}

func TestWithCache(t *testing.T) {
	inner := &countingEmbedder{HashEmbedder: *NewHashEmbedder(8)}
	e := WithCache(inner, 10)
	ctx := context.Background()

	if _, err := e.Embed(ctx, "delegate"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Embed(ctx, "delegate"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("expected one inner call, got %d", inner.calls)
	}

	vecs, err := e.EmbedBatch(ctx, []string{"delegate", "coach", "mentor"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 3 || vecs[0] == nil || vecs[2] == nil {
		t.Fatalf("unexpected batch result: %v", vecs)
	}
	if inner.texts != 3 {
		t.Errorf("expected only the 2 uncached texts to be embedded, inner saw %d total", inner.texts)
	}

	if WithCache(inner, 0) != Embedder(inner) {
		t.Error("zero capacity should return the embedder unchanged")
	}
}

// shortEmbedder drops the last vector of every batch.
type shortEmbedder struct{ HashEmbedder }

func (s *shortEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := embedEach(ctx, texts, s.HashEmbedder.Embed)
	if err != nil || len(vecs) == 0 {
		return vecs, err
	}
	return vecs[:len(vecs)-1], nil
}

func TestWithCache_BatchCountMismatch(t *testing.T) {
	e := WithCache(&shortEmbedder{HashEmbedder: *NewHashEmbedder(8)}, 10)
	_, err := e.EmbedBatch(context.Background(), []string{"coach", "mentor"})
	if err == nil || !strings.Contains(err.Error(), "got 1 vectors for 2 inputs") {
		t.Fatalf("err = %v, want count mismatch", err)
	}
	if _, ok := e.(*CachedEmbedder).cache.Get("coach"); ok {
		t.Error("a short batch must not populate the cache")
	}
}
