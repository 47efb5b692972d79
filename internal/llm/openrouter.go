package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/revrost/go-openrouter"
)

type openRouterProvider struct {
	cli   *openrouter.Client
	model string
}

func newOpenRouter(apiKey, model string, o options) *openRouterProvider {
	transport := func(c *openrouter.ClientConfig) {
		c.HTTPClient = o.httpClient
		if o.baseURL != "" {
			c.BaseURL = o.baseURL
		}
	}
	cli := openrouter.NewClient(apiKey, openrouter.WithXTitle(o.appName), transport)
	return &openRouterProvider{cli: cli, model: model}
}

func (p *openRouterProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := p.cli.CreateChatCompletion(ctx, openrouter.ChatCompletionRequest{
		Model:     p.model,
		Messages:  []openrouter.ChatCompletionMessage{openrouter.UserMessage(prompt)},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openrouter: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openrouter: no choices")
	}
	return resp.Choices[0].Message.Content.Text, nil
}
