package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/coachrag/internal/models"
	"google.golang.org/genai"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator calls the Gemini generateContent API.
type GeminiGenerator struct {
	api         contentGenerator
	model       string
	maxTokens   int
	temperature float64
}

// NewGeminiGenerator returns a generator authenticated with apiKey.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, maxTokens int, temperature float64) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return newGeminiGenerator(client.Models, model, maxTokens, temperature), nil
}

func newGeminiGenerator(api contentGenerator, model string, maxTokens int, temperature float64) *GeminiGenerator {
	return &GeminiGenerator{api: api, model: model, maxTokens: maxTokens, temperature: temperature}
}

// Name returns the provider name.
func (g *GeminiGenerator) Name() string { return "gemini:" + g.model }

// Generate sends prompt as one user turn and returns the first candidate with text.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(g.temperature)),
		MaxOutputTokens: int32(g.maxTokens),
	}
	resp, err := g.api.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, cfg)
	if err != nil {
		if mentionsInputSize(err.Error()) {
			return "", fmt.Errorf("%w: %s", models.ErrLLMInputTooLarge, err.Error())
		}
		return "", fmt.Errorf("Gemini generation failed: %w", err)
	}
	var out strings.Builder
	if resp != nil {
		for _, cand := range resp.Candidates {
			if cand == nil || cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part != nil && part.Text != "" {
					out.WriteString(part.Text)
				}
			}
			if out.Len() > 0 {
				break
			}
		}
	}
	if out.Len() == 0 {
		return "", errors.New("no response generated from Gemini")
	}
	return out.String(), nil
}

// Close is a no-op; the Gemini client holds no resources.
func (g *GeminiGenerator) Close() error { return nil }
