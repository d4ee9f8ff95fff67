// Package prompt builds the instruction prompt sent to the LLM.
package prompt

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"text/template"

	"go.uber.org/zap"
)

// NoReferencesPlaceholder stands in for the reference list when retrieval found nothing.
const NoReferencesPlaceholder = "No relevant vectors found in the database."

// DefaultTemplate is the built-in coach instruction. It receives .Query and
// .References, the latter being the newline-joined reference texts.
const DefaultTemplate = `
You are an AI coach helping mid-career professionals transition into management roles in MSMEs and mid-sized companies adapting to AI-driven changes. Focus on building foundational and advanced management skills, applying concepts to real-world scenarios, and aligning strategies with organizational goals.

Core Objectives:
1. Build foundational management skills.
2. Develop advanced leadership and strategic competencies.
3. Ensure real-world application with practical examples.

Response Guidelines:
- Start with a brief introduction to the topic.
- Explain clearly with examples to enhance understanding.
- Apply concepts using real-world cases or course references.
- Engage the user with a question, scenario, or exercise.
- Summarize key takeaways and suggest next steps.

Requirements:
- Ask clarifying questions for vague queries.
- Use concise, jargon-free language.
- Reference vectors (if provided) to improve response relevance.
- Avoid hallucination; stick to user-provided context.
- For off-topic queries: "This is outside my expertise. I recommend exploring [relevant resource]."

User Query: '{{.Query}}'
Reference Vectors: [{{.References}}]

Goal: Deliver actionable insights, foster critical thinking, and align responses with organizational goals.
`

// Data is the value a template is executed with.
type Data struct {
	Query      string
	References string
}

// Composer renders prompts from the current template. The template can be
// replaced while Compose is running.
type Composer struct {
	tmpl   atomic.Pointer[template.Template]
	logger *zap.Logger
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ComposerOption {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewComposer returns a Composer using DefaultTemplate.
func NewComposer(opts ...ComposerOption) *Composer {
	c := &Composer{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	c.tmpl.Store(template.Must(template.New("coach").Parse(DefaultTemplate)))
	return c
}

// Compose renders the prompt for query with references in order. An empty
// reference list renders NoReferencesPlaceholder. Nothing is truncated.
func (c *Composer) Compose(query string, references []string) (string, error) {
	refs := NoReferencesPlaceholder
	if len(references) > 0 {
		refs = strings.Join(references, "\n")
	}
	var buf bytes.Buffer
	if err := c.tmpl.Load().Execute(&buf, Data{Query: query, References: refs}); err != nil {
		return "", fmt.Errorf("compose prompt: %w", err)
	}
	return buf.String(), nil
}

// Parse replaces the template with text. On error the current template is kept.
func (c *Composer) Parse(name, text string) error {
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}
	// Reject templates that reference fields Data does not have.
	if err := t.Execute(&bytes.Buffer{}, Data{Query: "q", References: NoReferencesPlaceholder}); err != nil {
		return fmt.Errorf("template %s: %w", name, err)
	}
	c.tmpl.Store(t)
	return nil
}

// LoadFile reads and installs the template at path. On error the current template is kept.
func (c *Composer) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	if err := c.Parse(path, string(data)); err != nil {
		return err
	}
	c.logger.Info("prompt template loaded", zap.String("path", path))
	return nil
}

// Reload is LoadFile for watchers: a failure is logged and the current template stays.
func (c *Composer) Reload(path string) {
	if err := c.LoadFile(path); err != nil {
		c.logger.Warn("prompt template reload failed, keeping previous template",
			zap.String("path", path), zap.Error(err))
	}
}
