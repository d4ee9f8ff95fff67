package indexer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/coachrag/internal/extract"
	"github.com/hyperjump/coachrag/internal/language"
	"github.com/hyperjump/coachrag/internal/models"
	"github.com/hyperjump/coachrag/internal/vector"
	"go.uber.org/zap"
)

// Upload stages, reported in *models.StageError.
const (
	StageReceived  = "received"
	StageExtracted = "extracted"
	StageChunked   = "chunked"
	StageStored    = "stored"
)

// Indexer runs the upload and delete pipelines against a vector store.
type Indexer struct {
	store      vector.Store
	extractor  *extract.Extractor
	chunker    *Chunker
	detector   language.Detector
	translator language.Translator
	logger     *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (document stored, document deleted, etc.).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) {
		if l != nil {
			idx.logger = l
		}
	}
}

// WithDetector replaces the language detector.
func WithDetector(d language.Detector) IndexerOption {
	return func(idx *Indexer) { idx.detector = d }
}

// WithTranslator replaces the translator applied to extracted text.
func WithTranslator(t language.Translator) IndexerOption {
	return func(idx *Indexer) { idx.translator = t }
}

// NewIndexer creates an indexer with the given dependencies.
// extractor may be nil; when nil, uploads are treated as plain text.
func NewIndexer(store vector.Store, extractor *extract.Extractor, chunker *Chunker, opts ...IndexerOption) *Indexer {
	if chunker == nil {
		chunker = NewChunker(DefaultChunkSize, DefaultChunkOverlap)
	}
	idx := &Indexer{
		store:      store,
		extractor:  extractor,
		chunker:    chunker,
		detector:   language.NewDetector(),
		translator: language.Passthrough{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Upload validates in, extracts its text, chunks it and stores the chunks under
// a fresh doc_id. A failure is returned as *models.StageError naming the stage
// that failed; later stages do not run and nothing already stored is undone.
func (idx *Indexer) Upload(ctx context.Context, in *models.UploadInput) (*models.Document, error) {
	if err := in.Validate(); err != nil {
		return nil, models.AtStage(StageReceived, err)
	}
	mode := ModeFor(in.SingleChunk)
	idx.logger.Debug("upload received",
		zap.String("filename", in.Filename),
		zap.Int("bytes", len(in.Content)),
		zap.Stringer("mode", mode),
		zap.Int("priority", in.Priority))

	text, err := idx.extractText(in.Content, in.Filename)
	if err != nil {
		return nil, models.AtStage(StageExtracted, err)
	}
	lang := idx.detector.Detect(text)
	text, err = idx.translator.Translate(ctx, text, lang, language.Pivot)
	if err != nil {
		return nil, models.AtStage(StageExtracted, fmt.Errorf("translate: %w", err))
	}

	contents, err := idx.chunker.Chunk(text, mode)
	if err != nil {
		return nil, models.AtStage(StageChunked, err)
	}

	doc, err := idx.StoreChunks(ctx, contents, in.Priority)
	if err != nil {
		return nil, models.AtStage(StageStored, err)
	}
	doc.Filename = in.Filename
	doc.Language = lang
	idx.logger.Info("document stored",
		zap.String("doc_id", doc.ID),
		zap.String("filename", doc.Filename),
		zap.Int("chunks", doc.ChunkCount),
		zap.String("language", lang))
	return doc, nil
}

// StoreChunks stores chunks as one new document with the given priority and
// returns it. Chunk i gets chunk_id i.
func (idx *Indexer) StoreChunks(ctx context.Context, chunks []string, priority int) (*models.Document, error) {
	if len(chunks) == 0 {
		return nil, models.NewValidationError("no chunks to store")
	}
	docID := NewDocID()
	records := models.NewChunks(docID, chunks, priority)
	if err := idx.store.Add(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}
	return &models.Document{
		ID:         docID,
		Priority:   priority,
		ChunkCount: len(records),
		CreatedAt:  time.Now(),
	}, nil
}

// Delete removes every chunk of docID. Deleting an unknown document succeeds.
func (idx *Indexer) Delete(ctx context.Context, docID string) error {
	if strings.TrimSpace(docID) == "" {
		return models.NewValidationError("Document ID is required")
	}
	idx.logger.Debug("indexer deleting document", zap.String("doc_id", docID))
	if err := idx.store.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	idx.logger.Debug("indexer document deleted", zap.String("doc_id", docID))
	return nil
}

// NewDocID returns a random UUIDv4 as 32 lowercase hex digits.
func NewDocID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func (idx *Indexer) extractText(content []byte, filename string) (string, error) {
	if idx.extractor != nil {
		return idx.extractor.ExtractBytes(content, filename)
	}
	return string(content), nil
}
