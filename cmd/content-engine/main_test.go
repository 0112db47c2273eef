// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-engine/internal/archive"
	"github.com/pdiddy/content-engine/internal/secrets"
	"github.com/pdiddy/content-engine/pkg/types"
)

func TestLoadEngineConfig(t *testing.T) {
	t.Setenv("CONTENT_ENGINE_RESEARCH_MAX_RESULTS", "4")
	t.Setenv("NEWS_API_KEY", "news-from-env")

	v := viper.New()
	require.NoError(t, configureViper(v))
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
model:
  provider: claude
  model: claude-3-5-sonnet
trend:
  geo: GB
telegram:
  redis_addr: localhost:6379
`)))

	cfg, err := loadEngineConfig(v, secrets.Set{secrets.AnthropicAPIKey: "sk-file"})
	require.NoError(t, err)

	assert.Equal(t, types.ProviderClaude, cfg.Model.Provider)
	assert.Equal(t, "claude-3-5-sonnet", cfg.Model.Model)
	assert.Equal(t, "sk-file", cfg.Model.APIKey)
	assert.Equal(t, 90*time.Second, cfg.Model.Timeout, "default kept")
	assert.Equal(t, "GB", cfg.Trend.Geo)
	assert.Equal(t, 30*time.Second, cfg.Trend.Timeout, "embedded HTTP defaults kept")
	assert.Equal(t, 4, cfg.Research.MaxResults, "env override")
	assert.Equal(t, "news-from-env", cfg.Research.NewsAPIKey)
	assert.Equal(t, "!generate", cfg.Telegram.Command)
	assert.Equal(t, "localhost:6379", cfg.Telegram.RedisAddr)
	assert.True(t, cfg.Preferences.IncludeVisuals)
	assert.NoError(t, cfg.Validate())
}

func TestResolveSecretsKeepsConfiguredValues(t *testing.T) {
	cfg := types.DefaultEngineConfig()
	cfg.Model.APIKey = "configured"
	cfg.Improver = types.AIConfig{Provider: types.ProviderOllama, Model: "llama3"}

	resolveSecrets(&cfg, secrets.Set{secrets.GeminiAPIKey: "from-file", secrets.TelegramBotToken: "bot"})
	assert.Equal(t, "configured", cfg.Model.APIKey)
	assert.Empty(t, cfg.Improver.APIKey, "ollama needs no key")
	assert.Equal(t, "bot", cfg.Telegram.BotToken)
}

func sampleEnvelope() *types.ContentEnvelope {
	return &types.ContentEnvelope{
		Title:   "Solar Power Guide",
		Content: "# Solar Power\n\nPanels convert sunlight.\n",
		Visuals: []types.Visual{},
		Sources: []types.Source{{Title: "IEA", URL: "https://iea.org"}},
		Stats:   types.Stats{WordCount: 1200, ReadingTime: 6, CredibilityScore: 8.5, EngagementScore: 9},
	}
}

func TestWriteEnvelopeText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeEnvelope(&buf, sampleEnvelope(), "text"))
	assert.Equal(t, "Solar Power Guide\n\n# Solar Power\n\nPanels convert sunlight.\n"+
		"\nSources:\n  [1] IEA (https://iea.org)\n"+
		"\nWords: 1200 | Reading time: 6 min | Credibility: 8.5 | Engagement: 9.0 | Visuals: 0\n", buf.String())

	assert.Error(t, writeEnvelope(&buf, sampleEnvelope(), "xml"))
}

func TestEnvelopeFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, format := range []string{"json", "yaml"} {
		var buf bytes.Buffer
		require.NoError(t, writeEnvelope(&buf, sampleEnvelope(), format))
		path := filepath.Join(dir, "envelope."+format)
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

		env, err := readEnvelope(path)
		require.NoError(t, err, format)
		assert.Equal(t, sampleEnvelope().Title, env.Title, format)
		assert.Equal(t, sampleEnvelope().Stats, env.Stats, format)
	}

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"title":"x"}`), 0o644))
	_, err := readEnvelope(empty)
	assert.ErrorContains(t, err, "no content")
}

func TestPreferencesFromFlags(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("style", "", "")
	cmd.Flags().String("tone", "", "")
	cmd.Flags().String("audience", "", "")
	cmd.Flags().Bool("visuals", true, "")
	cmd.Flags().String("fact-check", "", "")
	require.NoError(t, cmd.Flags().Parse([]string{"--tone", "storytelling", "--visuals=false", "--fact-check", "thorough"}))

	got := preferencesFromFlags(cmd, types.DefaultPreferences())
	assert.Equal(t, "engaging", got.Style, "unset flags keep config")
	assert.Equal(t, "storytelling", got.Tone)
	assert.Equal(t, "general", got.TargetAudience)
	assert.False(t, got.IncludeVisuals)
	assert.Equal(t, types.FactCheckThorough, got.FactCheckLevel)
}

func TestFormatEntries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatEntries(&buf, nil, false))
	assert.Equal(t, "No results found.\n", buf.String())

	buf.Reset()
	entries := []archive.Entry{{
		ID:        "req-1",
		Title:     "A very long title that certainly exceeds forty characters",
		WordCount: 900,
		CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Snippet:   "[solar] panels",
	}}
	require.NoError(t, formatEntries(&buf, entries, false))
	out := buf.String()
	assert.Contains(t, out, "A very long title that certainly exce...")
	assert.Contains(t, out, "2026-03-01 09:30")
	assert.Contains(t, out, "    [solar] panels\n")
	assert.True(t, strings.HasSuffix(out, "\n1 results\n"))
}
