// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Set
	}{
		{
			name: "trims values",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, GeminiAPIKey, "  g-123  \n")
				writeFile(t, dir, TelegramBotToken, "42:abc")
				return dir
			},
			want: Set{GeminiAPIKey: "g-123", TelegramBotToken: "42:abc"},
		},
		{
			name: "missing directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope")
			},
			want: Set{},
		},
		{
			name: "skips blanks, dotfiles and directories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, NewsAPIKey, "n-1")
				writeFile(t, dir, FactCheckAPIKey, " \n\t")
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden", "x")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
				return dir
			},
			want: Set{NewsAPIKey: "n-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	var warn bytes.Buffer
	old := Warnings
	Warnings = &warn
	t.Cleanup(func() { Warnings = old })

	dir := t.TempDir()
	writeFile(t, dir, AnthropicAPIKey, "sk-ant")
	bad := filepath.Join(dir, BloggerAccessToken)
	require.NoError(t, os.WriteFile(bad, []byte("tok"), 0o000))
	t.Cleanup(func() { os.Chmod(bad, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Set{AnthropicAPIKey: "sk-ant"}, got)
	assert.Contains(t, warn.String(), BloggerAccessToken)
}

func TestResolve(t *testing.T) {
	set := Set{GeminiAPIKey: "from-file"}
	t.Setenv("TEST_GEMINI_KEY", "from-env")
	t.Setenv("TEST_NEWS_KEY", "news-env")

	assert.Equal(t, "explicit", set.Resolve(" explicit ", GeminiAPIKey, "TEST_GEMINI_KEY"))
	assert.Equal(t, "from-file", set.Resolve("", GeminiAPIKey, "TEST_GEMINI_KEY"))
	assert.Equal(t, "news-env", set.Resolve("", NewsAPIKey, "TEST_NEWS_KEY"))
	assert.Equal(t, "", set.Resolve("", HuggingFaceAPIKey, ""))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
