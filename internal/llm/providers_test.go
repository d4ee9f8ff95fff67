package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/hyperjump/coachrag/internal/models"
	"google.golang.org/genai"
)

type fakeBedrock struct {
	in   *bedrockruntime.InvokeModelInput
	body string
	err  error
}

func (f *fakeBedrock) InvokeModel(_ context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func TestBedrockGenerator(t *testing.T) {
	api := &fakeBedrock{body: `{"generation":"Start with one-on-ones.","prompt_token_count":12,"generation_token_count":5,"stop_reason":"stop"}`}
	g := newBedrockGenerator(api, "meta.llama3-8b-instruct-v1:0", 256, 0.5)
	got, err := g.Generate(context.Background(), "How do I manage?")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Start with one-on-ones." {
		t.Errorf("got %q", got)
	}
	if aws.ToString(api.in.ModelId) != "meta.llama3-8b-instruct-v1:0" || aws.ToString(api.in.ContentType) != "application/json" {
		t.Errorf("input = %+v", api.in)
	}
	var req map[string]interface{}
	if err := json.Unmarshal(api.in.Body, &req); err != nil {
		t.Fatal(err)
	}
	if req["prompt"] != "How do I manage?" || req["max_gen_len"] != float64(256) {
		t.Errorf("request body = %v", req)
	}
}

func TestBedrockGenerator_NoGeneration(t *testing.T) {
	g := newBedrockGenerator(&fakeBedrock{body: `{"stop_reason":"length"}`}, "m", 0, 0)
	got, err := g.Generate(context.Background(), "p")
	if err != nil || got != NoTextGenerated {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestBedrockGenerator_Errors(t *testing.T) {
	tooLong := &types.ValidationException{Message: aws.String("Input is too long for requested model.")}
	g := newBedrockGenerator(&fakeBedrock{err: tooLong}, "m", 0, 0)
	if _, err := g.Generate(context.Background(), "p"); !errors.Is(err, models.ErrLLMInputTooLarge) {
		t.Errorf("err = %v, want ErrLLMInputTooLarge", err)
	}

	g = newBedrockGenerator(&fakeBedrock{err: errors.New("access denied")}, "m", 0, 0)
	if _, err := g.Generate(context.Background(), "p"); err == nil || errors.Is(err, models.ErrLLMInputTooLarge) {
		t.Errorf("err = %v", err)
	}

	g = newBedrockGenerator(&fakeBedrock{body: `not json`}, "m", 0, 0)
	if _, err := g.Generate(context.Background(), "p"); err == nil {
		t.Error("expected decode error")
	}
}

type fakeMessages struct {
	params anthropic.MessageNewParams
	resp   *anthropic.Message
	err    error
}

func (f *fakeMessages) New(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	f.params = params
	return f.resp, f.err
}

func TestAnthropicGenerator(t *testing.T) {
	var msg anthropic.Message
	if err := json.Unmarshal([]byte(`{
		"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest",
		"content":[{"type":"text","text":"Hello "},{"type":"text","text":"manager."}],
		"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}
	}`), &msg); err != nil {
		t.Fatal(err)
	}
	api := &fakeMessages{resp: &msg}
	g := newAnthropicGenerator(api, "claude-3-5-haiku-latest", 128, 0.3)
	got, err := g.Generate(context.Background(), "hi")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello manager." {
		t.Errorf("got %q", got)
	}
	if string(api.params.Model) != "claude-3-5-haiku-latest" || api.params.MaxTokens != 128 || len(api.params.Messages) != 1 {
		t.Errorf("params = %+v", api.params)
	}
}

func TestAnthropicGenerator_Errors(t *testing.T) {
	g := newAnthropicGenerator(&fakeMessages{err: errors.New("overloaded")}, "m", 1, 0)
	if _, err := g.Generate(context.Background(), "p"); err == nil {
		t.Error("expected error")
	}
	var empty anthropic.Message
	g = newAnthropicGenerator(&fakeMessages{resp: &empty}, "m", 1, 0)
	if _, err := g.Generate(context.Background(), "p"); err == nil {
		t.Error("expected error for empty content")
	}
}

type fakeGenAI struct {
	model  string
	config *genai.GenerateContentConfig
	resp   *genai.GenerateContentResponse
	err    error
}

func (f *fakeGenAI) GenerateContent(_ context.Context, model string, _ []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	return f.resp, f.err
}

func TestGeminiGenerator(t *testing.T) {
	api := &fakeGenAI{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{}}},
			{Content: genai.NewContentFromText("Coach answer", genai.RoleModel)},
		},
	}}
	g := newGeminiGenerator(api, "gemini-2.0-flash", 100, 0.5)
	got, err := g.Generate(context.Background(), "p")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Coach answer" {
		t.Errorf("got %q", got)
	}
	if api.model != "gemini-2.0-flash" || api.config.MaxOutputTokens != 100 {
		t.Errorf("model = %s config = %+v", api.model, api.config)
	}
}

func TestGeminiGenerator_Errors(t *testing.T) {
	g := newGeminiGenerator(&fakeGenAI{err: errors.New("The input token count exceeds the maximum number of tokens allowed")}, "m", 1, 0)
	if _, err := g.Generate(context.Background(), "p"); !errors.Is(err, models.ErrLLMInputTooLarge) {
		t.Errorf("err = %v", err)
	}
	g = newGeminiGenerator(&fakeGenAI{resp: &genai.GenerateContentResponse{}}, "m", 1, 0)
	if _, err := g.Generate(context.Background(), "p"); err == nil {
		t.Error("expected error for empty response")
	}
}
