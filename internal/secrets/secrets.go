// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads provider credentials from a directory of plain-text files.
// Each file holds one secret: the filename is the key and the trimmed file
// contents are the value.
//
// Recognized keys: gemini-api-key, anthropic-api-key, huggingface-api-key,
// news-api-key, fact-check-api-key, telegram-bot-token, blogger-access-token.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Key names understood by the CLI.
const (
	GeminiAPIKey       = "gemini-api-key"
	AnthropicAPIKey    = "anthropic-api-key"
	HuggingFaceAPIKey  = "huggingface-api-key"
	NewsAPIKey         = "news-api-key"
	FactCheckAPIKey    = "fact-check-api-key"
	TelegramBotToken   = "telegram-bot-token"
	BloggerAccessToken = "blogger-access-token"
)

// Set is the loaded secret directory, keyed by filename.
type Set map[string]string

// Warnings receives messages about unreadable secret files.
var Warnings io.Writer = os.Stderr

// Load reads every regular, non-hidden file in dir.
// A missing directory is not an error and yields an empty Set.
func Load(dir string) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	set := make(Set)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(Warnings, "warning: skipping secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			set[name] = value
		}
	}
	return set, nil
}

// Resolve picks a credential in precedence order: an explicit configured
// value, then the secret file named key, then the environment variable env.
// It returns "" when none is set.
func (s Set) Resolve(configured, key, env string) string {
	if v := strings.TrimSpace(configured); v != "" {
		return v
	}
	if v := s[key]; v != "" {
		return v
	}
	if env == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(env))
}
