// Package llm hides the text-generation backends behind a single interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Provider names accepted by New.
const (
	OpenAI     = "openai"
	Anthropic  = "anthropic"
	OpenRouter = "openrouter"
)

// DefaultModels is the model used per provider when none is configured.
var DefaultModels = map[string]string{
	OpenAI:     "gpt-4o",
	Anthropic:  "claude-3-5-sonnet-20241022",
	OpenRouter: "anthropic/claude-3.5-sonnet",
}

// ErrUnknownProvider is returned by New for an unsupported provider name.
var ErrUnknownProvider = errors.New("unknown llm provider")

// Provider completes a prompt with generated text.
type Provider interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// StatusError is a non-2xx reply from a backend.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s api status=%d body=%s", e.Provider, e.StatusCode, e.Body)
}

type options struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	appName    string
}

// Option tweaks how a provider reaches its backend.
type Option func(*options)

// WithBaseURL points the provider at a different endpoint.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout bounds a single completion request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithAppName sets the application name reported to backends that accept one.
func WithAppName(name string) Option {
	return func(o *options) { o.appName = name }
}

// New returns the provider registered under name. An empty API key yields a
// nil provider and no error, meaning generated text is disabled.
func New(name, apiKey, model string, opts ...Option) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := DefaultModels[name]; !ok {
		return nil, fmt.Errorf("%w: %q (want openai, anthropic or openrouter)", ErrUnknownProvider, name)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, nil
	}
	if model == "" {
		model = DefaultModels[name]
	}

	o := options{timeout: 60 * time.Second, appName: "sprint-inspect"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}

	switch name {
	case OpenAI:
		return newOpenAI(apiKey, model, o), nil
	case Anthropic:
		return newAnthropic(apiKey, model, o), nil
	default:
		return newOpenRouter(apiKey, model, o), nil
	}
}

// ModelFor returns model, or the provider default when model is empty.
func ModelFor(name, model string) string {
	if model != "" {
		return model
	}
	return DefaultModels[strings.ToLower(name)]
}
