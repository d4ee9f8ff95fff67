package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hyperjump/coachrag/internal/models"
)

type messageCreator interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicGenerator calls the Claude Messages API.
type AnthropicGenerator struct {
	api         messageCreator
	model       string
	maxTokens   int
	temperature float64
}

// NewAnthropicGenerator returns a generator authenticated with apiKey.
func NewAnthropicGenerator(apiKey, model string, maxTokens int, temperature float64, timeout time.Duration) *AnthropicGenerator {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	client := anthropic.NewClient(opts...)
	return newAnthropicGenerator(&client.Messages, model, maxTokens, temperature)
}

func newAnthropicGenerator(api messageCreator, model string, maxTokens int, temperature float64) *AnthropicGenerator {
	return &AnthropicGenerator{api: api, model: model, maxTokens: maxTokens, temperature: temperature}
}

// Name returns the provider name.
func (a *AnthropicGenerator) Name() string { return "anthropic:" + a.model }

// Generate sends prompt as a single user message and joins the text blocks of the reply.
func (a *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if a.temperature > 0 {
		params.Temperature = anthropic.Float(a.temperature)
	}
	resp, err := a.api.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) &&
			(apiErr.StatusCode == http.StatusRequestEntityTooLarge || mentionsInputSize(apiErr.Error())) {
			return "", fmt.Errorf("%w: %s", models.ErrLLMInputTooLarge, apiErr.Error())
		}
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}
	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", errors.New("no response generated from Claude API")
	}
	return out.String(), nil
}

// Close is a no-op.
func (a *AnthropicGenerator) Close() error { return nil }
