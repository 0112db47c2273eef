// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini calls Google's Gemini models through the generative-ai-go client.
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// NewGemini opens a Gemini client. Extra options are appended after the API key.
func NewGemini(ctx context.Context, apiKey, model string, maxTokens int, opts ...option.ClientOption) (*Gemini, error) {
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Gemini{client: client, model: model, maxTokens: int32(maxTokens)}, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error { return g.client.Close() }

// Name implements Model.
func (g *Gemini) Name() string { return "gemini:" + g.model }

// Generate implements Model.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, prompt, "")
}

// GenerateJSON sets the response MIME type so Gemini emits bare JSON.
func (g *Gemini) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, prompt, "application/json")
}

func (g *Gemini) generate(ctx context.Context, prompt, mime string) (string, error) {
	m := g.client.GenerativeModel(g.model)
	if g.maxTokens > 0 {
		m.SetMaxOutputTokens(g.maxTokens)
	}
	m.ResponseMIMEType = mime

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("calling Gemini: %w", err)
	}
	return responseText(resp), nil
}

// responseText concatenates the text parts of the first candidate that has any.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return ""
}
