package llm

import (
	"context"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// AnthropicClient speaks the Anthropic Messages API. It implements the same
// ChatCompletion shape as OpenAIClient so the gateway can swap providers
// without touching the prompt-level operations.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// AnthropicConfig holds configuration for creating an Anthropic chat client.
type AnthropicConfig struct {
	APIKey    string
	Model     string // e.g. "claude-sonnet-4-5-20250929"
	MaxTokens int
}

// NewAnthropicClient creates a new Anthropic Messages API client.
func NewAnthropicClient(cfg AnthropicConfig, logger *zap.Logger) *AnthropicClient {
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}
	return &AnthropicClient{
		client:    anthropic.NewClient(cfg.APIKey),
		model:     cfg.Model,
		maxTokens: maxTokens,
		logger:    logger.Named("llm.anthropic"),
	}
}

// ChatCompletion sends a single system+user exchange and returns the raw
// response text, matching OpenAIClient.ChatCompletion's signature.
// Anthropic has no temperature-free mode; temperature is passed through as-is.
func (c *AnthropicClient) ChatCompletion(ctx context.Context, systemMessage, prompt string, temperature float64) (string, error) {
	c.logger.Debug("chat completion request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)))

	temp32 := float32(temperature)
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		System:      systemMessage,
		MaxTokens:   c.maxTokens,
		Temperature: &temp32,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		c.logger.Warn("chat completion failed", zap.Error(err))
		return "", ClassifyError(err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text, nil
		}
	}
	return "", NewError(ErrorTypeUnknown, "no text content in response", false, nil)
}

// Model returns the configured model name.
func (c *AnthropicClient) Model() string {
	return c.model
}
