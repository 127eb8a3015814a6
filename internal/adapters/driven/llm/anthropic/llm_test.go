package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
	"github.com/custodia-labs/resume-warehouse/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewLLMService(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)
}

func TestGenerate_DefaultsAndHeaders(t *testing.T) {
	var got messagesRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"a\":"},{"type":"text","text":"1}"}]}`))
	})

	out, err := svc.Generate(context.Background(), "parse", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
	assert.Empty(t, got.System)
	assert.Equal(t, DefaultModel, got.Model)
}

func TestChat_SystemPromptAndJSON(t *testing.T) {
	var got messagesRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{}"}]}`))
	})

	_, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "You parse resumes."},
		{Role: driven.RoleUser, Content: "Jane Doe"},
	}, driven.ChatOptions{JSON: true, MaxTokens: 100})
	require.NoError(t, err)

	require.Len(t, got.Messages, 1)
	assert.Equal(t, driven.RoleUser, got.Messages[0].Role)
	assert.Contains(t, got.System, "You parse resumes.")
	assert.Contains(t, got.System, jsonInstruction)
	assert.Equal(t, 100, got.MaxTokens)
}

func TestGenerate_RateLimited(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow"}}`))
	})

	_, err := svc.Generate(context.Background(), "x", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestGenerate_ErrorBody(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad model"}}`))
	})

	_, err := svc.Generate(context.Background(), "x", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad model")
}

func TestGenerate_EmptyContent(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	})

	_, err := svc.Generate(context.Background(), "x", driven.GenerateOptions{})
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	assert.NoError(t, svc.Ping(context.Background()))

	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	down, err := NewLLMService(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)
	assert.ErrorIs(t, down.Ping(context.Background()), domain.ErrLLMUnavailable)
}
