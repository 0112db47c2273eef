// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llmtest provides scripted models for stage tests.
package llmtest

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrUnscripted is returned for prompts no rule matches.
var ErrUnscripted = errors.New("llmtest: no scripted response")

// Rule answers prompts that contain Match.
type Rule struct {
	Match    string
	Response string
	Err      error
}

// Model answers prompts with the first matching rule, falling back to Default.
// It is safe for concurrent use.
type Model struct {
	Rules   []Rule
	Default *Rule

	mu      sync.Mutex
	prompts []string
}

// Name implements llm.Model.
func (m *Model) Name() string { return "scripted" }

// Generate implements llm.Model.
func (m *Model) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	for _, r := range m.Rules {
		if strings.Contains(prompt, r.Match) {
			return r.Response, r.Err
		}
	}
	if m.Default != nil {
		return m.Default.Response, m.Default.Err
	}
	return "", ErrUnscripted
}

// Prompts returns every prompt received so far.
func (m *Model) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Calls counts prompts containing substr.
func (m *Model) Calls(substr string) int {
	n := 0
	for _, p := range m.Prompts() {
		if strings.Contains(p, substr) {
			n++
		}
	}
	return n
}

// Failing returns a model whose every call fails with err.
func Failing(err error) *Model {
	return &Model{Default: &Rule{Err: err}}
}
