package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint.
type OpenAIEmbedder struct {
	client     openai.Client
	model      string
	dimensions int
	logger     *zap.Logger
	reqOpts    []option.RequestOption
}

// OpenAIOption configures an OpenAIEmbedder.
type OpenAIOption func(*OpenAIEmbedder)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(e *OpenAIEmbedder) { e.reqOpts = append(e.reqOpts, option.WithHTTPClient(c)) }
}

// WithRetries sets how many times a 408, 409, 429 or 5xx response is retried.
// The server's Retry-After headers are honoured; otherwise backoff is exponential from 0.5s.
func WithRetries(n int) OpenAIOption {
	if n < 0 {
		n = 0
	}
	return func(e *OpenAIEmbedder) { e.reqOpts = append(e.reqOpts, option.WithMaxRetries(n)) }
}

// WithOpenAILogger sets the logger.
func WithOpenAILogger(l *zap.Logger) OpenAIOption {
	return func(e *OpenAIEmbedder) { e.logger = l }
}

// NewOpenAIEmbedder returns an embedder for baseURL. apiKey may be empty for local servers.
func NewOpenAIEmbedder(baseURL, apiKey, model string, dimensions int, timeout time.Duration, opts ...OpenAIOption) *OpenAIEmbedder {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	e := &OpenAIEmbedder{
		model:      model,
		dimensions: dimensions,
		logger:     zap.NewNop(),
		reqOpts: []option.RequestOption{
			option.WithBaseURL(baseURL),
			option.WithRequestTimeout(timeout),
			option.WithMaxRetries(3),
		},
	}
	if apiKey != "" {
		e.reqOpts = append(e.reqOpts, option.WithAPIKey(apiKey))
	}
	for _, opt := range opts {
		opt(e)
	}
	e.client = openai.NewClient(e.reqOpts...)
	return e
}

// Embed returns the embedding of a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one request. Results are ordered like texts.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	params := openai.EmbeddingNewParams{
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:          openai.EmbeddingModel(e.model),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		params.Dimensions = openai.Int(int64(e.dimensions))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			e.logger.Debug("embeddings request rejected", zap.Int("status", apiErr.StatusCode), zap.Error(err))
		}
		return nil, fmt.Errorf("embeddings request: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) || len(d.Embedding) == 0 {
			return nil, errors.New("embeddings: malformed response")
		}
		v := make([]float32, len(d.Embedding))
		for i, x := range d.Embedding {
			v[i] = float32(x)
		}
		vecs[d.Index] = v
	}
	return vecs, nil
}

// Dimensions returns the configured embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int { return e.dimensions }

// Name identifies the embedder in status output.
func (e *OpenAIEmbedder) Name() string { return "openai:" + e.model }

// Close is a no-op; the client holds no resources of its own.
func (e *OpenAIEmbedder) Close() error { return nil }
