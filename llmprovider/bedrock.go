package llmprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const bedrockDefaultModel = "anthropic.claude-3-sonnet-20240229-v1:0"

// bedrockAPI is the subset of *bedrockruntime.Client this package depends
// on, so tests can substitute a fake.
type bedrockAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockProvider queries an Anthropic model hosted on AWS Bedrock.
type BedrockProvider struct {
	client  bedrockAPI
	modelID string

	mu      sync.RWMutex
	healthy bool
}

// NewBedrockProvider constructs a BedrockProvider for modelID using
// client. An empty modelID defaults to Claude 3 Sonnet.
func NewBedrockProvider(client *bedrockruntime.Client, modelID string) *BedrockProvider {
	if modelID == "" {
		modelID = bedrockDefaultModel
	}
	return &BedrockProvider{client: client, modelID: modelID, healthy: true}
}

type bedrockInvokeBody struct {
	AnthropicVersion string              `json:"anthropic_version"`
	MaxTokens        int                 `json:"max_tokens"`
	Messages         []bedrockMessage    `json:"messages"`
}

type bedrockMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type bedrockInvokeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (p *BedrockProvider) Query(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(bedrockInvokeBody{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        4096,
		Messages:         []bedrockMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("llmprovider: bedrock marshal request: %w", err)
	}

	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &p.modelID,
		Body:        body,
		ContentType: strPtr("application/json"),
	})
	if err != nil {
		p.setHealthy(false)
		return "", fmt.Errorf("llmprovider: bedrock invoke: %w", err)
	}
	p.setHealthy(true)

	var parsed bedrockInvokeResponse
	if err := json.Unmarshal(out.Body, &parsed); err != nil {
		return "", fmt.Errorf("llmprovider: bedrock decode response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("llmprovider: bedrock returned no content")
	}
	return parsed.Content[0].Text, nil
}

func (p *BedrockProvider) Name() string { return "bedrock:" + p.modelID }

func (p *BedrockProvider) IsHealthy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.healthy
}

func (p *BedrockProvider) setHealthy(v bool) {
	p.mu.Lock()
	p.healthy = v
	p.mu.Unlock()
}

func strPtr(s string) *string { return &s }
