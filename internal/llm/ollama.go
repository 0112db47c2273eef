// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/content-engine/internal/httputil"
)

// DefaultOllamaURL is the local Ollama server.
const DefaultOllamaURL = "http://localhost:11434"

// Ollama calls a local Ollama server's /api/generate endpoint.
type Ollama struct {
	BaseURL string
	Model   string
	Client  *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// Name implements Model.
func (o *Ollama) Name() string { return "ollama:" + o.Model }

// Generate returns the full, non-streamed completion.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	return o.generate(ctx, prompt, "")
}

// GenerateJSON asks Ollama to constrain output to JSON.
func (o *Ollama) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return o.generate(ctx, prompt, "json")
}

func (o *Ollama) generate(ctx context.Context, prompt, format string) (string, error) {
	base := strings.TrimRight(o.BaseURL, "/")
	if base == "" {
		base = DefaultOllamaURL
	}
	body, err := json.Marshal(ollamaRequest{Model: o.Model, Prompt: prompt, Format: format})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, o.Client, req, 0)
	if err != nil {
		return "", fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ollama returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var oResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return "", fmt.Errorf("decoding ollama response: %w", err)
	}
	return oResp.Response, nil
}
