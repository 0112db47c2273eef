// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/content-engine/pkg/types"
)

// New builds the adapter selected by cfg.Provider.
// The returned close function releases provider resources and is never nil.
func New(ctx context.Context, cfg types.AIConfig) (Model, func() error, error) {
	noop := func() error { return nil }
	client := &http.Client{}
	if cfg.Timeout > 0 {
		// Stays above the per-call timeout so Call reports the deadline.
		client.Timeout = cfg.Timeout + 10*time.Second
	}

	switch cfg.Provider {
	case types.ProviderGemini:
		g, err := NewGemini(ctx, cfg.APIKey, cfg.Model, cfg.MaxTokens)
		if err != nil {
			return nil, noop, err
		}
		return g, g.Close, nil
	case types.ProviderClaude:
		return &Claude{APIKey: cfg.APIKey, Model: cfg.Model, MaxTokens: cfg.MaxTokens, Client: client}, noop, nil
	case types.ProviderOllama:
		return &Ollama{BaseURL: cfg.BaseURL, Model: cfg.Model, Client: client}, noop, nil
	case types.ProviderHuggingFace:
		return &HuggingFace{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL, MaxTokens: cfg.MaxTokens, Client: client}, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}
