package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		key      string
		wantNil  bool
		wantErr  bool
	}{
		{"OpenAI", "openai", "sk-1", false, false},
		{"Anthropic mixed case", "Anthropic", "sk-2", false, false},
		{"OpenRouter", "openrouter", "sk-3", false, false},
		{"No key disables generation", "openrouter", "", true, false},
		{"Unknown provider", "cohere", "sk-4", true, true},
		{"Unknown provider without key", "cohere", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.provider, tt.key, "")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownProvider)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantNil, p == nil)
		})
	}
}

func TestModelFor(t *testing.T) {
	assert.Equal(t, "gpt-4o", ModelFor("openai", ""))
	assert.Equal(t, "claude-3-5-sonnet-20241022", ModelFor("ANTHROPIC", ""))
	assert.Equal(t, "anthropic/claude-3.5-sonnet", ModelFor("openrouter", ""))
	assert.Equal(t, "custom", ModelFor("openai", "custom"))
}

func TestAnthropicComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("X-Api-Key"))
		assert.NotEmpty(t, r.Header.Get("Anthropic-Version"))

		var body struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content []struct {
					Type string `json:"type"`
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-3-5-sonnet-20241022", body.Model)
		assert.Equal(t, 1024, body.MaxTokens)
		if assert.Len(t, body.Messages, 1) && assert.Len(t, body.Messages[0].Content, 1) {
			assert.Equal(t, "user", body.Messages[0].Role)
			assert.Equal(t, "hello", body.Messages[0].Content[0].Text)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-sonnet-20241022",
			"content":[{"type":"text","text":"[]"}],"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":1}}`)
	}))
	defer srv.Close()

	p, err := New(Anthropic, "sk-ant", "", WithBaseURL(srv.URL))
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), "hello", 1024)

	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestAnthropicStatusError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = fmt.Fprint(w, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`)
	}))
	defer srv.Close()

	p, err := New(Anthropic, "sk-ant", "", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "hello", 10)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Contains(t, statusErr.Error(), "anthropic api status=429")
	assert.Contains(t, statusErr.Body, "rate_limit_error")
	assert.Equal(t, 1, calls, "no retries")
}

func TestAnthropicNoTextContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"id":"msg_2","type":"message","role":"assistant","model":"m","content":[],
			"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`)
	}))
	defer srv.Close()

	p, err := New(Anthropic, "sk-ant", "m", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "hello", 10)

	assert.EqualError(t, err, "anthropic: no text content")
}

func TestOpenAIComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-oai", r.Header.Get("Authorization"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"generated"}}]}`)
	}))
	defer srv.Close()

	p, err := New(OpenAI, "sk-oai", "", WithBaseURL(srv.URL))
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), "hello", 256)

	require.NoError(t, err)
	assert.Equal(t, "generated", out)
}

func TestOpenRouterComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-or", r.Header.Get("Authorization"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "anthropic/claude-3.5-sonnet", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"id":"gen-1","model":"anthropic/claude-3.5-sonnet",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"routed"}}]}`)
	}))
	defer srv.Close()

	p, err := New(OpenRouter, "sk-or", "", WithBaseURL(srv.URL))
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), "hello", 256)

	require.NoError(t, err)
	assert.Equal(t, "routed", out)
}
