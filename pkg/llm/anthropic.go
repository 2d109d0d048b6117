package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"listingopt/pkg/retry"
)

const anthropicMaxTokens = 2048

var DefaultAnthropicModels = []string{"claude-haiku-4-5", "claude-sonnet-4-5"}

type AnthropicClient struct {
	client *anthropic.Client
}

func NewAnthropicClient(apiKey, baseURL string) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicClient{client: &client}
}

func (c *AnthropicClient) Name() string {
	return "anthropic"
}

func (c *AnthropicClient) Complete(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: anthropicMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		wrapped := fmt.Errorf("%w: anthropic API error: %w", ErrUpstream, err)
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && !retryableStatus(apiErr.StatusCode) {
			return "", retry.Permanent(wrapped)
		}
		return "", wrapped
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		sb.WriteString(block.Text)
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("%w: no response from anthropic", ErrUpstream)
	}

	return sb.String(), nil
}
