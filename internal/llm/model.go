// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm adapts hosted and local language models to one small contract.
// Stages call models through Call and Structured so every request gets a
// timeout and a uniform failure signal.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptyPrompt is returned before any network call when the prompt is blank.
	ErrEmptyPrompt = errors.New("empty prompt")

	// ErrNoContent marks a call that produced nothing usable: a backend
	// error, a timeout or an empty body. Stages degrade on it.
	ErrNoContent = errors.New("model returned no content")
)

// Model generates text for a prompt.
type Model interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// JSONModel is implemented by providers with a native JSON response mode.
type JSONModel interface {
	Model
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Call runs one generation with a per-call timeout. A zero timeout leaves ctx unchanged.
// Every failure other than ErrEmptyPrompt wraps ErrNoContent.
func Call(ctx context.Context, m Model, timeout time.Duration, prompt string) (string, error) {
	return call(ctx, m, timeout, prompt, m.Generate)
}

func call(ctx context.Context, m Model, timeout time.Duration, prompt string, gen func(context.Context, string) (string, error)) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	text, err := gen(ctx, prompt)
	if err != nil {
		return "", noContent(m.Name(), err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%s: %w", m.Name(), ErrNoContent)
	}
	return text, nil
}

// noContent wraps err so that both ErrNoContent and the cause stay matchable.
func noContent(name string, err error) error {
	if errors.Is(err, ErrNoContent) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", name, ErrNoContent, err)
}
