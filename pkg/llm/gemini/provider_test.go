package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-contentgen-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.SystemInstruction)
		assert.Equal(t, "be brief", req.SystemInstruction.Parts[0].Text)
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "user", req.Contents[0].Role)

		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "Title "}, {"text": "ideas"}]}}],
			"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 8}
		}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider("secret", "gemini-2.0-flash")
	p.BaseURL = srv.URL
	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "titles please"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Title ideas", out.Text)
	assert.Equal(t, 12, out.PromptTokens)
	assert.Equal(t, 8, out.CompletionTokens)
}

func TestGeminiNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider("k", "m")
	p.BaseURL = srv.URL
	_, err := p.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, llm.ErrEmptyCompletion)
}
