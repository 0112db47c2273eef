package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "content-engine/0.1"). Reddit rejects requests without one.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// Provider identifies a hosted or local model backend.
type Provider string

const (
	ProviderGemini      Provider = "gemini"
	ProviderClaude      Provider = "claude"
	ProviderOllama      Provider = "ollama"
	ProviderHuggingFace Provider = "huggingface"
)

// AIConfig holds settings for one model adapter.
type AIConfig struct {
	// Provider selects the backend: gemini, claude, ollama or huggingface.
	Provider Provider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (e.g. "gemini-1.5-flash", "llama3").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key. Ollama needs none.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint (Ollama host, HF inference URL).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// MaxTokens bounds the response length (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// Timeout bounds a single generation call (default 90s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Enabled reports whether a provider is configured.
func (c AIConfig) Enabled() bool { return c.Provider != "" }

// TrendConfig holds settings for the trend collector.
type TrendConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Geo is the Google Trends region for the daily feed (default "US").
	Geo string `json:"geo" yaml:"geo" mapstructure:"geo"`

	// RedditLimit is the number of hot posts sampled (default 10).
	RedditLimit int `json:"reddit_limit" yaml:"reddit_limit" mapstructure:"reddit_limit"`
}

// ResearchConfig holds settings for the research and search stage.
type ResearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxResults caps the merged search results (default 8).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// MaxAttempts bounds quality-gate retries (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`

	// EnableDuckDuckGo turns on the DuckDuckGo HTML backend.
	EnableDuckDuckGo bool `json:"enable_duckduckgo" yaml:"enable_duckduckgo" mapstructure:"enable_duckduckgo"`

	// NewsAPIKey enables the NewsAPI backend when set.
	NewsAPIKey string `json:"news_api_key,omitempty" yaml:"news_api_key,omitempty" mapstructure:"news_api_key"`

	// EnableOpenAlex adds scholarly works from OpenAlex to the results.
	EnableOpenAlex bool `json:"enable_openalex" yaml:"enable_openalex" mapstructure:"enable_openalex"`

	// OpenAlexEmail is sent as mailto for the OpenAlex polite pool.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty" mapstructure:"openalex_email"`
}

// VerifyConfig holds settings for the verification stage.
type VerifyConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// FactCheckAPIKey enables the Google Fact Check Tools backend when set.
	FactCheckAPIKey string `json:"fact_check_api_key,omitempty" yaml:"fact_check_api_key,omitempty" mapstructure:"fact_check_api_key"`

	// ClaimReviewURL enables a generic JSON fact-check backend queried as
	// GET <url>?query=<claim>.
	ClaimReviewURL string `json:"claim_review_url,omitempty" yaml:"claim_review_url,omitempty" mapstructure:"claim_review_url"`

	// LanguageCode restricts fact-check lookups (default "en").
	LanguageCode string `json:"language_code" yaml:"language_code" mapstructure:"language_code"`
}

// ScoringMode selects the credibility/engagement scorer.
type ScoringMode string

const (
	ScoringFixed  ScoringMode = "fixed"
	ScoringSignal ScoringMode = "signal"
)

// TelegramConfig holds settings for the chat-bot front end.
type TelegramConfig struct {
	BotToken string `json:"bot_token,omitempty" yaml:"bot_token,omitempty" mapstructure:"bot_token"`

	// Command is the token that triggers generation (default "!generate").
	Command string `json:"command" yaml:"command" mapstructure:"command"`

	// PollTimeout is the long-poll wait passed to getUpdates (default 30s).
	PollTimeout time.Duration `json:"poll_timeout" yaml:"poll_timeout" mapstructure:"poll_timeout"`

	// MaxBodyRunes truncates the article body in replies (default 3000).
	MaxBodyRunes int `json:"max_body_runes" yaml:"max_body_runes" mapstructure:"max_body_runes"`

	// RedisAddr stores update offsets and counters; empty keeps them in memory.
	RedisAddr     string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty" mapstructure:"redis_password"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db" mapstructure:"redis_db"`
}

// BloggerConfig holds settings for the blog publisher.
type BloggerConfig struct {
	BlogID string `json:"blog_id,omitempty" yaml:"blog_id,omitempty" mapstructure:"blog_id"`

	// AccessToken is an OAuth2 bearer token with the blogger scope.
	AccessToken string `json:"access_token,omitempty" yaml:"access_token,omitempty" mapstructure:"access_token"`

	// Draft publishes posts as drafts instead of live posts.
	Draft bool `json:"draft" yaml:"draft" mapstructure:"draft"`
}

// ArchiveConfig holds settings for the local envelope archive.
type ArchiveConfig struct {
	// Path is the SQLite database file (default "archive/content.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// QueueConfig holds settings for the SQS generation worker.
type QueueConfig struct {
	InputQueueURL  string `json:"input_queue_url,omitempty" yaml:"input_queue_url,omitempty" mapstructure:"input_queue_url"`
	OutputQueueURL string `json:"output_queue_url,omitempty" yaml:"output_queue_url,omitempty" mapstructure:"output_queue_url"`

	// WaitSeconds is the SQS long-poll wait (default 20).
	WaitSeconds int32 `json:"wait_seconds" yaml:"wait_seconds" mapstructure:"wait_seconds"`

	// MaxMessages is the receive batch size (default 1).
	MaxMessages int32 `json:"max_messages" yaml:"max_messages" mapstructure:"max_messages"`
}

// LogConfig selects logger level and output format.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// EngineConfig groups all stage configurations.
type EngineConfig struct {
	// Model is the primary generation backend used by every stage.
	Model AIConfig `json:"model" yaml:"model" mapstructure:"model"`

	// Improver is the optional local model that rewrites the primary draft.
	Improver AIConfig `json:"improver" yaml:"improver" mapstructure:"improver"`

	Trend       TrendConfig    `json:"trend" yaml:"trend" mapstructure:"trend"`
	Research    ResearchConfig `json:"research" yaml:"research" mapstructure:"research"`
	Verify      VerifyConfig   `json:"verify" yaml:"verify" mapstructure:"verify"`
	Scoring     ScoringMode    `json:"scoring" yaml:"scoring" mapstructure:"scoring"`
	Preferences Preferences    `json:"preferences" yaml:"preferences" mapstructure:"preferences"`
	Telegram    TelegramConfig `json:"telegram" yaml:"telegram" mapstructure:"telegram"`
	Blogger     BloggerConfig  `json:"blogger" yaml:"blogger" mapstructure:"blogger"`
	Archive     ArchiveConfig  `json:"archive" yaml:"archive" mapstructure:"archive"`
	Queue       QueueConfig    `json:"queue" yaml:"queue" mapstructure:"queue"`
	Log         LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}

const defaultUserAgent = "content-engine/0.1"

// DefaultEngineConfig returns the configuration used when no file or flag overrides a value.
func DefaultEngineConfig() EngineConfig {
	http := HTTPConfig{Timeout: 30 * time.Second, UserAgent: defaultUserAgent}
	return EngineConfig{
		Model: AIConfig{
			Provider:  ProviderGemini,
			Model:     "gemini-1.5-flash",
			MaxTokens: 4096,
			Timeout:   90 * time.Second,
		},
		Trend:       TrendConfig{HTTPConfig: http, Geo: "US", RedditLimit: 10},
		Research:    ResearchConfig{HTTPConfig: http, MaxResults: 8, MaxAttempts: 3, EnableDuckDuckGo: true},
		Verify:      VerifyConfig{HTTPConfig: http, LanguageCode: "en"},
		Scoring:     ScoringFixed,
		Preferences: DefaultPreferences(),
		Telegram: TelegramConfig{
			Command:      "!generate",
			PollTimeout:  30 * time.Second,
			MaxBodyRunes: 3000,
		},
		Archive: ArchiveConfig{Path: "archive/content.db"},
		Queue:   QueueConfig{WaitSeconds: 20, MaxMessages: 1},
		Log:     LogConfig{Level: "info", Format: "console"},
	}
}

// Validate performs presence checks on the settings every run needs.
// It does not validate the shape of optional integrations.
func (c EngineConfig) Validate() error {
	if err := c.Model.validate("model"); err != nil {
		return err
	}
	if c.Improver.Enabled() {
		if err := c.Improver.validate("improver"); err != nil {
			return err
		}
	}
	if !c.Preferences.FactCheckLevel.Valid() {
		return fmt.Errorf("preferences.fact_check_level: unknown level %q", c.Preferences.FactCheckLevel)
	}
	switch c.Scoring {
	case ScoringFixed, ScoringSignal, "":
	default:
		return fmt.Errorf("scoring: unknown mode %q", c.Scoring)
	}
	return nil
}

func (c AIConfig) validate(section string) error {
	switch c.Provider {
	case ProviderGemini, ProviderClaude, ProviderHuggingFace:
		if c.APIKey == "" {
			return fmt.Errorf("%s.api_key is required for provider %s", section, c.Provider)
		}
	case ProviderOllama:
	case "":
		return fmt.Errorf("%s.provider is required", section)
	default:
		return fmt.Errorf("%s.provider: unknown provider %q", section, c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("%s.model is required", section)
	}
	return nil
}
