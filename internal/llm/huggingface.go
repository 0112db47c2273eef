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

// huggingFaceURL is the hosted inference API root. Package-level var for test substitution.
var huggingFaceURL = "https://api-inference.huggingface.co/models/"

// HuggingFace calls the HuggingFace inference API for text-generation models.
type HuggingFace struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Client    *http.Client
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int  `json:"max_new_tokens,omitempty"`
	ReturnFullText bool `json:"return_full_text"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

// Name implements Model.
func (h *HuggingFace) Name() string { return "huggingface:" + h.Model }

// Generate returns the first generated sequence.
func (h *HuggingFace) Generate(ctx context.Context, prompt string) (string, error) {
	url := h.BaseURL
	if url == "" {
		url = huggingFaceURL + h.Model
	}
	maxTokens := h.MaxTokens
	if maxTokens > 1024 {
		maxTokens = 1024
	}
	body, err := json.Marshal(hfRequest{
		Inputs:     prompt,
		Parameters: hfParameters{MaxNewTokens: maxTokens},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.APIKey)

	resp, err := httputil.DoWithRetry(ctx, h.Client, req, 0)
	if err != nil {
		return "", fmt.Errorf("calling HuggingFace: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("HuggingFace returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var gens []hfGeneration
	if err := json.NewDecoder(resp.Body).Decode(&gens); err != nil {
		return "", fmt.Errorf("decoding HuggingFace response: %w", err)
	}
	if len(gens) == 0 {
		return "", nil
	}
	return gens[0].GeneratedText, nil
}
