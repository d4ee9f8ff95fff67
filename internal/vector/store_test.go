package vector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/hyperjump/coachrag/internal/config"
	"github.com/hyperjump/coachrag/internal/embedding"
	"github.com/hyperjump/coachrag/internal/models"
)

// exerciseStore runs the behaviour every backend shares.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if err := s.Heartbeat(ctx); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	docA := models.NewChunks("aaa", []string{
		"apple banana smoothie recipe",
		"leadership skills for new managers",
		"quarterly budget planning",
	}, 2)
	docB := models.NewChunks("bbb", []string{"zebra yak migration"}, 4)
	if err := s.Add(ctx, docA); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(ctx, docB); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if n, err := s.Count(ctx); err != nil || n != 4 {
		t.Fatalf("Count = %d, %v; want 4", n, err)
	}

	got, err := s.Query(ctx, "apple banana smoothie", 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) == 0 || len(got) > 2 {
		t.Fatalf("Query returned %d results, want 1..2", len(got))
	}
	top := got[0]
	if top.ID != "Document_aaa_0" || top.DocumentID != "aaa" || top.ChunkID != 0 || top.Priority != 2 {
		t.Errorf("top = %+v", top)
	}
	if top.Content != "apple banana smoothie recipe" {
		t.Errorf("top content = %q", top.Content)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Distance < got[i-1].Distance {
			t.Errorf("results not ordered by distance: %v then %v", got[i-1].Distance, got[i].Distance)
		}
	}

	if empty, err := s.Query(ctx, "apple", 0); err != nil || len(empty) != 0 {
		t.Errorf("Query k=0 = %v, %v; want empty", empty, err)
	}

	if err := s.DeleteDocument(ctx, "aaa"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("Count after delete = %d, want 1", n)
	}
	if err := s.DeleteDocument(ctx, "aaa"); err != nil {
		t.Errorf("second DeleteDocument: %v", err)
	}
	if err := s.DeleteDocument(ctx, "never-uploaded"); err != nil {
		t.Errorf("DeleteDocument unknown: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(embedding.NewHashEmbedder(64)))
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sub", "chunks.db"), embedding.NewHashEmbedder(64))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.db")
	e := embedding.NewHashEmbedder(32)
	s, err := NewSQLiteStore(path, e)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Add(context.Background(), models.NewChunks("d1", []string{"persisted text"}, 1)); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s, err = NewSQLiteStore(path, e)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.Query(context.Background(), "persisted text", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].DocumentID != "d1" {
		t.Errorf("got %+v", got)
	}
}

func TestBleveStore(t *testing.T) {
	s, err := newBleveMemStore()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestBleveStore_OnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bleve")
	s, err := NewBleveStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Add(context.Background(), models.NewChunks("d1", []string{"mentoring new team leads"}, 3)); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s, err = NewBleveStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if n, _ := s.Count(context.Background()); n != 1 {
		t.Errorf("Count after reopen = %d, want 1", n)
	}
}

func TestNearest_StableOnTies(t *testing.T) {
	cands := []*models.Candidate{
		{ID: "a", Distance: 0.5},
		{ID: "b", Distance: 0.1},
		{ID: "c", Distance: 0.5},
		{ID: "d", Distance: 0.9},
	}
	got := nearest(cands, 3)
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestNewStore_UnknownType(t *testing.T) {
	_, err := NewStore(&config.VectorStoreConfig{Type: "faiss"}, embedding.NewHashEmbedder(8), nil)
	if err == nil {
		t.Fatal("expected error for unknown store type")
	}
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), &config.VectorStoreConfig{Type: "memory"}, embedding.NewHashEmbedder(8), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if s.Type() != "memory" {
		t.Errorf("Type = %s", s.Type())
	}
}

func TestOpen_HeartbeatFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	cfg := &config.VectorStoreConfig{Type: "chroma", Chroma: chromaConfigFor(t, ts.URL)}
	_, err := Open(context.Background(), cfg, embedding.NewHashEmbedder(8), nil)
	if !errors.Is(err, models.ErrStorageUnavailable) {
		t.Fatalf("Open error = %v, want ErrStorageUnavailable", err)
	}
}

func TestOpen_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()

	cfg := &config.VectorStoreConfig{Type: "chroma", Chroma: chromaConfigFor(t, addr)}
	_, err := Open(context.Background(), cfg, embedding.NewHashEmbedder(8), nil)
	if !errors.Is(err, models.ErrStorageUnavailable) {
		t.Fatalf("Open error = %v, want ErrStorageUnavailable", err)
	}
}

func chromaConfigFor(t *testing.T, rawURL string) config.ChromaConfig {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}
	return config.ChromaConfig{
		Scheme:      u.Scheme,
		Host:        u.Hostname(),
		Port:        port,
		Collection:  "documents",
		Tenant:      "default_tenant",
		Database:    "default_database",
		Distance:    "l2",
		TimeoutSecs: 5,
	}
}
