// Package llm sends composed prompts to a text-generation model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hyperjump/coachrag/internal/models"
	"go.uber.org/zap"
)

// Generator is a model provider. Generate returns the model's answer to prompt.
// Errors that mean the prompt is too large wrap models.ErrLLMInputTooLarge.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
	Close() error
}

// Result is the outcome of one generation: either an answer or a failure.
type Result struct {
	text string
	err  error
}

// Answered returns a successful Result carrying text.
func Answered(text string) Result { return Result{text: text} }

// Failed returns a failed Result carrying err.
func Failed(err error) Result {
	if err == nil {
		err = models.ErrLLMInternal
	}
	return Result{err: err}
}

// OK reports whether the model answered.
func (r Result) OK() bool { return r.err == nil }

// Text returns the answer, or "" for a failed Result.
func (r Result) Text() string { return r.text }

// Err returns the failure, or nil for an answered Result.
func (r Result) Err() error { return r.err }

// Client applies prompt limits and timeouts around a Generator and reports
// outcomes as Results.
type Client struct {
	gen            Generator
	maxPromptChars int
	timeout        time.Duration
	logger         *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMaxPromptChars rejects prompts longer than n characters without calling
// the provider. Zero disables the check.
func WithMaxPromptChars(n int) ClientOption {
	return func(c *Client) { c.maxPromptChars = n }
}

// WithTimeout bounds each provider call.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient wraps gen.
func NewClient(gen Generator, opts ...ClientOption) *Client {
	c := &Client{gen: gen, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the provider name.
func (c *Client) Name() string { return c.gen.Name() }

// Complete sends prompt to the provider. A failed Result's error matches
// models.ErrLLMInputTooLarge or models.ErrLLMInternal.
func (c *Client) Complete(ctx context.Context, prompt string) Result {
	if c.maxPromptChars > 0 {
		if n := utf8.RuneCountInString(prompt); n > c.maxPromptChars {
			return Failed(fmt.Errorf("%w: %d characters, limit %d", models.ErrLLMInputTooLarge, n, c.maxPromptChars))
		}
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	start := time.Now()
	text, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		c.logger.Warn("llm generation failed",
			zap.String("provider", c.gen.Name()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		if errors.Is(err, models.ErrLLMInputTooLarge) {
			return Failed(err)
		}
		return Failed(fmt.Errorf("%w: %w", models.ErrLLMInternal, err))
	}
	c.logger.Debug("llm generation done",
		zap.String("provider", c.gen.Name()),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("answer_chars", utf8.RuneCountInString(text)))
	return Answered(text)
}

// Close closes the provider.
func (c *Client) Close() error { return c.gen.Close() }

// mentionsInputSize reports whether a provider error message is about the
// prompt exceeding the model's context.
func mentionsInputSize(msg string) bool {
	msg = strings.ToLower(msg)
	for _, s := range []string{"too long", "too many tokens", "token limit", "context length", "exceeds the maximum", "input is too large"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
