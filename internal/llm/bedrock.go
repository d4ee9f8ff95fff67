package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/hyperjump/coachrag/internal/models"
)

// NoTextGenerated is the answer used when Bedrock returns no generation field.
const NoTextGenerated = "No text generated."

type bedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockGenerator invokes a Llama-family model on AWS Bedrock.
type BedrockGenerator struct {
	api         bedrockInvoker
	model       string
	maxTokens   int
	temperature float64
}

type bedrockRequest struct {
	Prompt      string  `json:"prompt"`
	MaxGenLen   int     `json:"max_gen_len,omitempty"`
	Temperature float64 `json:"temperature"`
}

type bedrockResponse struct {
	Generation *string `json:"generation"`
	StopReason string  `json:"stop_reason"`
}

// NewBedrockGenerator loads AWS credentials from the default chain for region.
func NewBedrockGenerator(ctx context.Context, region, model string, maxTokens int, temperature float64) (*BedrockGenerator, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return newBedrockGenerator(bedrockruntime.NewFromConfig(cfg), model, maxTokens, temperature), nil
}

func newBedrockGenerator(api bedrockInvoker, model string, maxTokens int, temperature float64) *BedrockGenerator {
	return &BedrockGenerator{api: api, model: model, maxTokens: maxTokens, temperature: temperature}
}

// Name returns the provider name.
func (b *BedrockGenerator) Name() string { return "bedrock:" + b.model }

// Generate sends prompt as a Llama text-completion request.
func (b *BedrockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(bedrockRequest{Prompt: prompt, MaxGenLen: b.maxTokens, Temperature: b.temperature})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	out, err := b.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		var ve *types.ValidationException
		if errors.As(err, &ve) && mentionsInputSize(ve.ErrorMessage()) {
			return "", fmt.Errorf("%w: %s", models.ErrLLMInputTooLarge, ve.ErrorMessage())
		}
		return "", fmt.Errorf("bedrock invoke %s: %w", b.model, err)
	}
	var resp bedrockResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("decode bedrock response: %w", err)
	}
	if resp.Generation == nil {
		return NoTextGenerated, nil
	}
	return *resp.Generation, nil
}

// Close is a no-op.
func (b *BedrockGenerator) Close() error { return nil }
