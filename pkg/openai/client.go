package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sashabaranov/go-openai"
)

// Client wraps one chat-completion model behind types.ChatCompleter.
type Client struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewClient(baseUrl, apiKey, proxyAddr, model string, maxTokens int) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}

	// 总是配置自定义 HTTP Client，便于挂代理；超时由调用方的 context 控制
	transport := &http.Transport{}
	if proxyAddr != "" {
		if parsed, err := url.Parse(proxyAddr); err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	}
	cfg.HTTPClient = &http.Client{
		Transport: transport,
	}

	return &Client{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: 0.7,
	}
}

// Model returns the model name this client talks to.
func (c *Client) Model() string {
	return c.model
}

// ChatCompletion sends one system+user exchange and returns the raw text.
func (c *Client) ChatCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed (model=%s): %w", c.model, err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
