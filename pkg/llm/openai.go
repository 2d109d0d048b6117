package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"listingopt/pkg/retry"
)

const geminiOpenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

var (
	DefaultOpenAIModels = []string{string(openai.ChatModelGPT4oMini), string(openai.ChatModelGPT4_1Mini)}
	DefaultGeminiModels = []string{"gemini-2.5-flash", "gemini-2.0-flash"}
)

// OpenAIClient talks to any OpenAI-compatible chat completions API.
type OpenAIClient struct {
	client *openai.Client
	name   string
}

// NewOpenAIClient builds a client for api.openai.com, or for baseURL when set.
func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	return newOpenAICompatible("openai", apiKey, baseURL)
}

// NewGeminiClient uses Gemini through its OpenAI-compatible endpoint.
func NewGeminiClient(apiKey, baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = geminiOpenAIBaseURL
	}
	return newOpenAICompatible("gemini", apiKey, baseURL)
}

func newOpenAICompatible(name, apiKey, baseURL string) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)
	return &OpenAIClient{
		client: &client,
		name:   name,
	}
}

func (c *OpenAIClient) Name() string {
	return c.name
}

func (c *OpenAIClient) Complete(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		wrapped := fmt.Errorf("%w: %s API error: %w", ErrUpstream, c.name, err)
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && !retryableStatus(apiErr.StatusCode) {
			return "", retry.Permanent(wrapped)
		}
		return "", wrapped
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: no response from %s", ErrUpstream, c.name)
	}

	return resp.Choices[0].Message.Content, nil
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= http.StatusInternalServerError
}
