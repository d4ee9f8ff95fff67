package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/coachrag/internal/config"
	"github.com/hyperjump/coachrag/internal/models"
)

type fakeGenerator struct {
	answer string
	err    error
	calls  int
	prompt string
	wait   time.Duration
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	if f.wait > 0 {
		select {
		case <-time.After(f.wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.answer, f.err
}

func (f *fakeGenerator) Name() string { return "fake" }
func (f *fakeGenerator) Close() error { return nil }

func TestResult(t *testing.T) {
	ok := Answered("hello")
	if !ok.OK() || ok.Text() != "hello" || ok.Err() != nil {
		t.Errorf("Answered = %+v", ok)
	}
	empty := Answered("")
	if !empty.OK() {
		t.Error("an empty answer is still an answer")
	}
	bad := Failed(errors.New("x"))
	if bad.OK() || bad.Text() != "" || bad.Err() == nil {
		t.Errorf("Failed = %+v", bad)
	}
	if !errors.Is(Failed(nil).Err(), models.ErrLLMInternal) {
		t.Error("Failed(nil) should carry ErrLLMInternal")
	}
}

func TestClient_Answered(t *testing.T) {
	gen := &fakeGenerator{answer: "Delegate more."}
	r := NewClient(gen).Complete(context.Background(), "prompt text")
	if !r.OK() || r.Text() != "Delegate more." {
		t.Fatalf("result = %+v", r)
	}
	if gen.prompt != "prompt text" {
		t.Errorf("prompt = %q", gen.prompt)
	}
}

func TestClient_ProviderFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("throttled")}
	r := NewClient(gen).Complete(context.Background(), "p")
	if r.OK() {
		t.Fatal("expected failure")
	}
	if !errors.Is(r.Err(), models.ErrLLMInternal) || !strings.Contains(r.Err().Error(), "throttled") {
		t.Errorf("err = %v", r.Err())
	}
}

func TestClient_ProviderInputTooLarge(t *testing.T) {
	gen := &fakeGenerator{err: models.ErrLLMInputTooLarge}
	r := NewClient(gen).Complete(context.Background(), "p")
	if !errors.Is(r.Err(), models.ErrLLMInputTooLarge) {
		t.Errorf("err = %v", r.Err())
	}
	if errors.Is(r.Err(), models.ErrLLMInternal) {
		t.Error("input-too-large must not be reported as internal")
	}
}

func TestClient_MaxPromptChars(t *testing.T) {
	gen := &fakeGenerator{answer: "a"}
	c := NewClient(gen, WithMaxPromptChars(5))
	if r := c.Complete(context.Background(), "ééééé"); !r.OK() {
		t.Errorf("5 characters should pass: %v", r.Err())
	}
	r := c.Complete(context.Background(), "123456")
	if !errors.Is(r.Err(), models.ErrLLMInputTooLarge) {
		t.Errorf("err = %v", r.Err())
	}
	if gen.calls != 1 {
		t.Errorf("provider called %d times, want 1", gen.calls)
	}
}

func TestClient_Timeout(t *testing.T) {
	gen := &fakeGenerator{answer: "late", wait: time.Second}
	r := NewClient(gen, WithTimeout(20*time.Millisecond)).Complete(context.Background(), "p")
	if r.OK() || !errors.Is(r.Err(), context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", r.Err())
	}
}

func TestMentionsInputSize(t *testing.T) {
	for _, msg := range []string{
		"Input is too long for requested model.",
		"prompt is too long: 250000 tokens > 200000 maximum",
		"The input token count exceeds the maximum number of tokens allowed",
	} {
		if !mentionsInputSize(msg) {
			t.Errorf("mentionsInputSize(%q) = false", msg)
		}
	}
	if mentionsInputSize("rate limit exceeded") {
		t.Error("rate limit is not an input-size error")
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), &config.LLMConfig{Provider: "ollama", Model: "m"}, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_MissingAPIKey(t *testing.T) {
	t.Setenv("COACHRAG_TEST_KEY", "")
	cfg := &config.LLMConfig{Provider: "anthropic", Model: "claude-3-5-haiku-latest", APIKeyEnv: "COACHRAG_TEST_KEY"}
	_, err := New(context.Background(), cfg, nil)
	if err == nil || !strings.Contains(err.Error(), "COACHRAG_TEST_KEY") {
		t.Fatalf("err = %v", err)
	}
}

func TestNew_Anthropic(t *testing.T) {
	t.Setenv("COACHRAG_TEST_KEY", "sk-test")
	cfg := &config.LLMConfig{Provider: "anthropic", Model: "claude-3-5-haiku-latest", APIKeyEnv: "COACHRAG_TEST_KEY", MaxTokens: 64, TimeoutSecs: 5}
	c, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Name() != "anthropic:claude-3-5-haiku-latest" {
		t.Errorf("Name = %s", c.Name())
	}
}
