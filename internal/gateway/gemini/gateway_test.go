package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evidos/internal/config"
	"evidos/internal/gateway"
	"evidos/internal/gateway/gemini"
	"evidos/internal/port"
)

func providerConfig() *config.AIProviderConfig {
	return &config.AIProviderConfig{Provider: "gemini", APIKey: "test-key"}
}

func TestComplete_Success(t *testing.T) {
	var gotKey string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hello"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	g := gemini.NewGatewayWithEndpoint(providerConfig(), srv.URL)
	out, err := g.Complete(context.Background(), port.CompletionRequest{Prompt: "say hello", MaxTokens: 32})

	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, "test-key", gotKey)
	assert.Contains(t, gotBody, "contents")
	assert.Contains(t, gotBody, "generationConfig")
}

func TestComplete_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := gemini.NewGatewayWithEndpoint(providerConfig(), srv.URL)
	_, err := g.Complete(context.Background(), port.CompletionRequest{Prompt: "x"})

	var rlErr *gateway.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "gemini", rlErr.Provider)
	assert.Equal(t, float64(60), rlErr.RetryAfter.Seconds())
}

func TestComplete_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	g := gemini.NewGatewayWithEndpoint(providerConfig(), srv.URL)
	_, err := g.Complete(context.Background(), port.CompletionRequest{Prompt: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}
