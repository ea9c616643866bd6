package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenRouterEndpoint = "https://openrouter.ai/api/v1"

// OpenRouterProvider talks to OpenRouter through its OpenAI-compatible chat
// completions API.
type OpenRouterProvider struct {
	pool     keyPool
	endpoint string
	model    string
}

func NewOpenRouterProvider(apiKeys []string, endpoint, model string) *OpenRouterProvider {
	if endpoint == "" {
		endpoint = defaultOpenRouterEndpoint
	}
	if model == "" {
		model = "deepseek/deepseek-chat"
	}
	return &OpenRouterProvider{
		pool:     keyPool{keys: apiKeys},
		endpoint: endpoint,
		model:    model,
	}
}

func (p *OpenRouterProvider) Name() string { return "openrouter" }

func (p *OpenRouterProvider) Generate(ctx context.Context, prompt string) (string, error) {
	apiKey, err := p.pool.pick()
	if err != nil {
		return "", fmt.Errorf("openrouter: %w", err)
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = p.endpoint
	client := openai.NewClientWithConfig(cfg)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0.1,
		MaxTokens:   4000,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openrouter: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openrouter: empty response")
	}

	return resp.Choices[0].Message.Content, nil
}
