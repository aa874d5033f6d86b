package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-contentgen-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatReportsTokenUsage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:           req.Model,
			Message:         ollamaMessage{Role: "assistant", Content: "Five hooks"},
			Done:            true,
			PromptEvalCount: 42,
			EvalCount:       17,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL+"/", "llama3")
	out, err := p.Generate(context.Background(), "write hooks")
	require.NoError(t, err)
	assert.Equal(t, "Five hooks", out.Text)
	assert.Equal(t, 42, out.PromptTokens)
	assert.Equal(t, 17, out.CompletionTokens)
	assert.Equal(t, 59, out.TotalTokens())
}

func TestChatModelOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "qwen2.5", req.Model)
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{Message: ollamaMessage{Content: "ok"}})
	}))
	defer srv.Close()

	out, err := NewOllamaProvider(srv.URL, "llama3").Generate(context.Background(), "x", llm.WithModel("qwen2.5"))
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5", out.Model)
}

func TestChatUpstreamErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewOllamaProvider(srv.URL, "llama3").Generate(context.Background(), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 503")
	})

	t.Run("empty content", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(ollamaChatResponse{Message: ollamaMessage{Content: "  "}})
		}))
		defer srv.Close()

		_, err := NewOllamaProvider(srv.URL, "llama3").Generate(context.Background(), "x")
		assert.ErrorIs(t, err, llm.ErrEmptyCompletion)
	})

	t.Run("context deadline", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := NewOllamaProvider(srv.URL, "llama3").Generate(ctx, "x")
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}
