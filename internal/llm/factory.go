package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hyperjump/coachrag/internal/config"
	"go.uber.org/zap"
)

// New builds the client for the provider selected by cfg.Provider.
func New(ctx context.Context, cfg *config.LLMConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	var (
		gen Generator
		err error
	)
	switch cfg.Provider {
	case "", "bedrock":
		gen, err = NewBedrockGenerator(ctx, cfg.Region, cfg.Model, cfg.MaxTokens, cfg.Temperature)
	case "anthropic":
		key, keyErr := apiKey(cfg)
		if keyErr != nil {
			return nil, keyErr
		}
		gen = NewAnthropicGenerator(key, cfg.Model, cfg.MaxTokens, cfg.Temperature, timeout)
	case "gemini":
		key, keyErr := apiKey(cfg)
		if keyErr != nil {
			return nil, keyErr
		}
		gen, err = NewGeminiGenerator(ctx, key, cfg.Model, cfg.MaxTokens, cfg.Temperature)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s (supported: bedrock, anthropic, gemini)", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("llm ready", zap.String("provider", gen.Name()))
	return NewClient(gen,
		WithMaxPromptChars(cfg.MaxPromptChars),
		WithTimeout(timeout),
		WithLogger(logger),
	), nil
}

func apiKey(cfg *config.LLMConfig) (string, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s provider requires an API key in $%s", cfg.Provider, cfg.APIKeyEnv)
	}
	return key, nil
}
