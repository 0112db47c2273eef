// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-engine/pkg/types"
)

func TestClaudeGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req claudeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-test", req.Model)
		assert.Equal(t, 4096, req.MaxTokens)
		assert.Equal(t, "Write about wind.", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"Wind "},{"type":"tool_use"},{"type":"text","text":"power."}]}`))
	}))
	defer ts.Close()

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	c := &Claude{APIKey: "test-key", Model: "claude-test", Client: ts.Client()}
	got, err := c.Generate(context.Background(), "Write about wind.")
	require.NoError(t, err)
	assert.Equal(t, "Wind power.", got)
	assert.Equal(t, "claude:claude-test", c.Name())
}

func TestClaudeErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
	}))
	defer ts.Close()

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	c := &Claude{APIKey: "k", Model: "m", Client: ts.Client()}
	_, err := Call(context.Background(), c, 0, "hi")
	assert.ErrorIs(t, err, ErrNoContent)
	assert.Contains(t, err.Error(), "401")
}

func TestOllamaGenerateJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "json", req.Format)
		assert.Equal(t, "llama3", req.Model)
		w.Write([]byte(`{"response":"{\"ok\":true}"}`))
	}))
	defer ts.Close()

	o := &Ollama{BaseURL: ts.URL + "/", Model: "llama3", Client: ts.Client()}
	got, err := o.GenerateJSON(context.Background(), "respond")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, got)
}

func TestHuggingFaceGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gpt2", r.URL.Path)
		assert.Equal(t, "Bearer hf-key", r.Header.Get("Authorization"))
		var req hfRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 1024, req.Parameters.MaxNewTokens)
		assert.False(t, req.Parameters.ReturnFullText)
		w.Write([]byte(`[{"generated_text":"Improved draft."}]`))
	}))
	defer ts.Close()

	old := huggingFaceURL
	huggingFaceURL = ts.URL + "/models/"
	defer func() { huggingFaceURL = old }()

	h := &HuggingFace{APIKey: "hf-key", Model: "gpt2", MaxTokens: 4096, Client: ts.Client()}
	got, err := h.Generate(context.Background(), "improve")
	require.NoError(t, err)
	assert.Equal(t, "Improved draft.", got)
}

func TestGeminiResponseText(t *testing.T) {
	assert.Empty(t, responseText(nil))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("Solar "), genai.Text("rises.")}}},
		},
	}
	assert.Equal(t, "Solar rises.", responseText(resp))
}

func TestNewSelectsProvider(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		cfg  types.AIConfig
		want string
	}{
		{types.AIConfig{Provider: types.ProviderClaude, Model: "c", APIKey: "k"}, "claude:c"},
		{types.AIConfig{Provider: types.ProviderOllama, Model: "llama3"}, "ollama:llama3"},
		{types.AIConfig{Provider: types.ProviderHuggingFace, Model: "gpt2", APIKey: "k"}, "huggingface:gpt2"},
	}
	for _, tt := range tests {
		m, closeFn, err := New(ctx, tt.cfg)
		require.NoError(t, err)
		assert.Equal(t, tt.want, m.Name())
		assert.NoError(t, closeFn())
	}

	_, closeFn, err := New(ctx, types.AIConfig{Provider: "palm"})
	assert.Error(t, err)
	assert.NotNil(t, closeFn)
}
