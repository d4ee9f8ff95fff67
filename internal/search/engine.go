// Package search answers coaching queries from stored document chunks.
package search

import (
	"context"
	"time"

	"github.com/hyperjump/coachrag/internal/language"
	"github.com/hyperjump/coachrag/internal/llm"
	"github.com/hyperjump/coachrag/internal/models"
	"github.com/hyperjump/coachrag/internal/prompt"
	"github.com/hyperjump/coachrag/internal/ranking"
	"github.com/hyperjump/coachrag/internal/vector"
	"github.com/hyperjump/coachrag/pkg/utils"
	"go.uber.org/zap"
)

// Query stages, reported in *models.StageError.
const (
	StageReceived         = "received"
	StageLanguageDetected = "language_detected"
	StageRetrieved        = "retrieved"
	StagePromptComposed   = "prompt_composed"
)

// DefaultQuerySize is the number of chunks retrieved per query when none is configured.
const DefaultQuerySize = 5

// referencePreviewLen bounds reference text in debug logs.
const referencePreviewLen = 80

// Completer produces an answer for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) llm.Result
}

// Engine runs the query pipeline: detect language, retrieve, rank, compose and answer.
type Engine struct {
	store      vector.Store
	composer   *prompt.Composer
	llm        Completer
	detector   language.Detector
	translator language.Translator
	querySize  int
	logger     *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDetector replaces the language detector.
func WithDetector(d language.Detector) EngineOption {
	return func(e *Engine) { e.detector = d }
}

// WithTranslator replaces the translator applied to queries before retrieval.
func WithTranslator(t language.Translator) EngineOption {
	return func(e *Engine) { e.translator = t }
}

// NewEngine creates an engine. querySize is the fixed number of chunks
// retrieved per query; callers cannot change it per request.
func NewEngine(store vector.Store, composer *prompt.Composer, completer Completer, querySize int, opts ...EngineOption) *Engine {
	if querySize <= 0 {
		querySize = DefaultQuerySize
	}
	if composer == nil {
		composer = prompt.NewComposer()
	}
	e := &Engine{
		store:      store,
		composer:   composer,
		llm:        completer,
		detector:   language.NewDetector(),
		translator: language.Passthrough{},
		querySize:  querySize,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// QuerySize returns the number of chunks retrieved per query.
func (e *Engine) QuerySize() int { return e.querySize }

// Query answers query. Errors before the model is called are returned as
// *models.StageError; retrieval failures match models.ErrQuery. The model's
// outcome is returned as an llm.Result and is never turned into an error or
// an empty answer here.
func (e *Engine) Query(ctx context.Context, query string) (*models.QueryResult, llm.Result, error) {
	start := time.Now()
	q, err := ProcessQuery(query)
	if err != nil {
		return nil, llm.Result{}, models.AtStage(StageReceived, err)
	}

	lang := e.detector.Detect(q)
	translated, err := e.translator.Translate(ctx, q, lang, language.Pivot)
	if err != nil {
		return nil, llm.Result{}, models.AtStage(StageLanguageDetected, err)
	}

	cands, err := e.store.Query(ctx, translated, e.querySize)
	if err != nil {
		return nil, llm.Result{}, models.AtStage(StageRetrieved, models.QueryError(err))
	}

	ranked := ranking.Rank(cands)
	if ce := e.logger.Check(zap.DebugLevel, "references ranked"); ce != nil {
		refs := make([]string, len(ranked))
		for i, c := range ranked {
			refs[i] = utils.Truncate(c.Content, referencePreviewLen)
		}
		ce.Write(zap.Int("count", len(ranked)), zap.Strings("references", refs))
	}

	text, err := e.composer.Compose(q, ranking.Contents(ranked))
	if err != nil {
		return nil, llm.Result{}, models.AtStage(StagePromptComposed, err)
	}

	result := &models.QueryResult{
		Query:            q,
		DetectedLanguage: lang,
		References:       ranked,
		Prompt:           text,
	}
	answer := e.llm.Complete(ctx, text)
	e.logger.Info("query answered",
		zap.String("language", lang),
		zap.Int("references", len(ranked)),
		zap.Bool("ok", answer.OK()),
		zap.Duration("elapsed", time.Since(start)))
	return result, answer, nil
}
