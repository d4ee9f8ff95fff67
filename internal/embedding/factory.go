package embedding

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hyperjump/coachrag/internal/config"
	"go.uber.org/zap"
)

// NewEmbedder builds the embedder selected by cfg.Provider, wrapped in an LRU cache.
func NewEmbedder(ctx context.Context, cfg *config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var (
		e   Embedder
		err error
	)
	switch cfg.Provider {
	case "", "hash":
		e = NewHashEmbedder(cfg.Dimensions)
	case "openai":
		e = NewOpenAIEmbedder(cfg.OpenAI.BaseURL, os.Getenv(cfg.OpenAI.APIKeyEnv), cfg.OpenAI.Model,
			cfg.Dimensions, time.Duration(cfg.OpenAI.TimeoutSecs)*time.Second, WithOpenAILogger(logger))
	case "gemini":
		e, err = NewGeminiEmbedder(ctx, os.Getenv(cfg.Gemini.APIKeyEnv), cfg.Gemini.Model, cfg.Dimensions)
	case "onnx":
		e, err = NewONNXEmbedder(cfg.ONNX.ModelPath, cfg.Dimensions, cfg.ONNX.MaxTokens)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("embedder ready", zap.String("embedder", e.Name()), zap.Int("dimensions", e.Dimensions()))
	return WithCache(e, cfg.CacheSize), nil
}
