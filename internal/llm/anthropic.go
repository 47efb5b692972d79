package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicProvider struct {
	cli   anthropic.Client
	model string
}

func newAnthropic(apiKey, model string, o options) *anthropicProvider {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(o.httpClient),
		option.WithMaxRetries(0),
	}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.baseURL+"/"))
	}
	return &anthropicProvider{cli: anthropic.NewClient(reqOpts...), model: model}
}

func (p *anthropicProvider) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	msg, err := p.cli.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &StatusError{Provider: Anthropic, StatusCode: apiErr.StatusCode, Body: strings.TrimSpace(apiErr.RawJSON())}
		}
		return "", fmt.Errorf("anthropic: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", errors.New("anthropic: no text content")
}
