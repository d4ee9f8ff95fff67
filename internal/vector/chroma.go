package vector

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	chromaemb "github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/hyperjump/coachrag/internal/config"
	"github.com/hyperjump/coachrag/internal/embedding"
	"github.com/hyperjump/coachrag/internal/models"
	"go.uber.org/zap"
)

// Metadata keys stored with every chunk.
const (
	metaDocID    = "doc_id"
	metaChunkID  = "chunk_id"
	metaPriority = "priority"
)

// ChromaStore talks to a Chroma server through the chroma-go v2 client.
// Embeddings are computed locally and sent with each record and query.
type ChromaStore struct {
	cfg      *config.ChromaConfig
	client   chroma.Client
	embedder embedding.Embedder
	logger   *zap.Logger

	httpClient *http.Client

	mu         sync.Mutex
	collection chroma.Collection
}

// ChromaOption configures a ChromaStore.
type ChromaOption func(*ChromaStore)

// WithChromaLogger sets the logger.
func WithChromaLogger(l *zap.Logger) ChromaOption {
	return func(s *ChromaStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithChromaHTTPClient replaces the HTTP client used by the chroma-go client.
func WithChromaHTTPClient(c *http.Client) ChromaOption {
	return func(s *ChromaStore) { s.httpClient = c }
}

// NewChromaStore returns a store for cfg. It does not contact the server.
func NewChromaStore(cfg *config.ChromaConfig, embedder embedding.Embedder, opts ...ChromaOption) (*ChromaStore, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s := &ChromaStore{
		cfg:        cfg,
		embedder:   embedder,
		logger:     zap.NewNop(),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	client, err := chroma.NewHTTPClient(
		chroma.WithBaseURL(cfg.BaseURL()),
		chroma.WithDatabaseAndTenant(cfg.Database, cfg.Tenant),
		chroma.WithHTTPClient(s.httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("create chroma client: %w", err)
	}
	s.client = client
	return s, nil
}

// Type returns the store type identifier.
func (s *ChromaStore) Type() string { return string(StoreTypeChroma) }

// Heartbeat calls the server heartbeat endpoint.
func (s *ChromaStore) Heartbeat(ctx context.Context) error {
	if err := s.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("chroma heartbeat: %w", err)
	}
	return nil
}

// Init gets or creates the configured collection.
func (s *ChromaStore) Init(ctx context.Context) error {
	_, err := s.getCollection(ctx)
	return err
}

func (s *ChromaStore) getCollection(ctx context.Context) (chroma.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collection != nil {
		return s.collection, nil
	}
	opts := []chroma.CreateCollectionOption{
		chroma.WithEmbeddingFunctionCreate(embeddingFunction{s.embedder}),
	}
	if s.cfg.Distance != "" {
		opts = append(opts, chroma.WithCollectionMetadataCreate(
			chroma.NewMetadata(chroma.NewStringAttribute("hnsw:space", s.cfg.Distance)),
		))
	}
	coll, err := s.client.GetOrCreateCollection(ctx, s.cfg.Collection, opts...)
	if err != nil {
		return nil, fmt.Errorf("get or create collection %q: %w", s.cfg.Collection, err)
	}
	s.collection = coll
	s.logger.Debug("chroma collection ready",
		zap.String("collection", s.cfg.Collection), zap.String("id", coll.ID()))
	return coll, nil
}

// Add embeds chunks and sends them in one add call.
func (s *ChromaStore) Add(ctx context.Context, chunks []*models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := embedChunks(ctx, s.embedder, chunks); err != nil {
		return err
	}
	coll, err := s.getCollection(ctx)
	if err != nil {
		return err
	}
	ids := make([]chroma.DocumentID, len(chunks))
	texts := make([]string, len(chunks))
	metas := make([]chroma.DocumentMetadata, len(chunks))
	embs := make([]chromaemb.Embedding, len(chunks))
	for i, c := range chunks {
		ids[i] = chroma.DocumentID(c.ID)
		texts[i] = c.Content
		metas[i] = chroma.NewDocumentMetadata(
			chroma.NewStringAttribute(metaDocID, c.DocumentID),
			chroma.NewIntAttribute(metaChunkID, int64(c.ChunkID)),
			chroma.NewIntAttribute(metaPriority, int64(c.Priority)),
		)
		embs[i] = chromaemb.NewEmbeddingFromFloat32(c.Embedding)
	}
	err = coll.Add(ctx,
		chroma.WithIDs(ids...),
		chroma.WithTexts(texts...),
		chroma.WithMetadatas(metas...),
		chroma.WithEmbeddings(embs...),
	)
	if err != nil {
		return fmt.Errorf("chroma add: %w", err)
	}
	return nil
}

// Query embeds text and returns the server's k nearest records.
func (s *ChromaStore) Query(ctx context.Context, text string, k int) ([]*models.Candidate, error) {
	if k <= 0 {
		return []*models.Candidate{}, nil
	}
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	coll, err := s.getCollection(ctx)
	if err != nil {
		return nil, err
	}
	res, err := coll.Query(ctx,
		chroma.WithQueryEmbeddings(chromaemb.NewEmbeddingFromFloat32(vec)),
		chroma.WithNResults(k),
		chroma.WithIncludeQuery(chroma.IncludeDocuments, chroma.IncludeMetadatas, chroma.IncludeDistances),
	)
	if err != nil {
		return nil, fmt.Errorf("chroma query: %w", err)
	}

	out := make([]*models.Candidate, 0)
	idGroups := res.GetIDGroups()
	if len(idGroups) == 0 {
		return out, nil
	}
	docGroups := res.GetDocumentsGroups()
	metaGroups := res.GetMetadatasGroups()
	distGroups := res.GetDistancesGroups()
	for i, id := range idGroups[0] {
		c := &models.Candidate{ID: string(id)}
		if len(docGroups) > 0 && i < len(docGroups[0]) && docGroups[0][i] != nil {
			c.Content = docGroups[0][i].ContentString()
		}
		if len(metaGroups) > 0 && i < len(metaGroups[0]) && metaGroups[0][i] != nil {
			md := metaGroups[0][i]
			c.DocumentID, _ = md.GetString(metaDocID)
			c.ChunkID = chromaMetaInt(md, metaChunkID)
			c.Priority = chromaMetaInt(md, metaPriority)
		}
		if len(distGroups) > 0 && i < len(distGroups[0]) {
			c.Distance = float64(distGroups[0][i])
		}
		out = append(out, c)
	}
	return out, nil
}

// chromaMetaInt reads an integer attribute that the server may hand back as a float.
func chromaMetaInt(md chroma.DocumentMetadata, key string) int {
	if v, ok := md.GetInt(key); ok {
		return int(v)
	}
	if v, ok := md.GetFloat(key); ok {
		return int(v)
	}
	return 0
}

// DeleteDocument deletes every record whose doc_id metadata matches.
func (s *ChromaStore) DeleteDocument(ctx context.Context, docID string) error {
	coll, err := s.getCollection(ctx)
	if err != nil {
		return err
	}
	if err := coll.Delete(ctx, chroma.WithWhereDelete(chroma.EqString(metaDocID, docID))); err != nil {
		return fmt.Errorf("chroma delete %s: %w", docID, err)
	}
	return nil
}

// Count returns the number of records in the collection.
func (s *ChromaStore) Count(ctx context.Context) (int, error) {
	coll, err := s.getCollection(ctx)
	if err != nil {
		return 0, err
	}
	n, err := coll.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("chroma count: %w", err)
	}
	return n, nil
}

// Close closes the chroma-go client.
func (s *ChromaStore) Close() error {
	return s.client.Close()
}

// embeddingFunction lets chroma-go embed with the configured Embedder instead
// of its default ONNX model, which would otherwise be downloaded on first use.
type embeddingFunction struct {
	e embedding.Embedder
}

func (f embeddingFunction) EmbedDocuments(ctx context.Context, texts []string) ([]chromaemb.Embedding, error) {
	vecs, err := f.e.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	out := make([]chromaemb.Embedding, len(vecs))
	for i, v := range vecs {
		out[i] = chromaemb.NewEmbeddingFromFloat32(v)
	}
	return out, nil
}

func (f embeddingFunction) EmbedQuery(ctx context.Context, text string) (chromaemb.Embedding, error) {
	v, err := f.e.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return chromaemb.NewEmbeddingFromFloat32(v), nil
}
