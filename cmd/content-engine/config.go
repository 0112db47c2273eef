// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/content-engine/internal/secrets"
	"github.com/pdiddy/content-engine/pkg/types"
)

const envPrefix = "CONTENT_ENGINE"

// configureViper enables CONTENT_ENGINE_* overrides and registers every
// default so nested keys resolve from the environment.
func configureViper(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	data, err := yaml.Marshal(types.DefaultEngineConfig())
	if err != nil {
		return fmt.Errorf("encoding defaults: %w", err)
	}
	var defaults map[string]any
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return fmt.Errorf("decoding defaults: %w", err)
	}
	setDefaults(v, "", defaults)
	return nil
}

func setDefaults(v *viper.Viper, prefix string, m map[string]any) {
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// loadEngineConfig decodes v over the defaults and fills credentials from s
// and the provider environment variables.
func loadEngineConfig(v *viper.Viper, s secrets.Set) (types.EngineConfig, error) {
	cfg := types.DefaultEngineConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return types.EngineConfig{}, fmt.Errorf("decoding config: %w", err)
	}
	resolveSecrets(&cfg, s)
	return cfg, nil
}

func resolveSecrets(cfg *types.EngineConfig, s secrets.Set) {
	for _, ai := range []*types.AIConfig{&cfg.Model, &cfg.Improver} {
		if key, env := providerSecret(ai.Provider); key != "" {
			ai.APIKey = s.Resolve(ai.APIKey, key, env)
		}
	}
	cfg.Research.NewsAPIKey = s.Resolve(cfg.Research.NewsAPIKey, secrets.NewsAPIKey, "NEWS_API_KEY")
	cfg.Verify.FactCheckAPIKey = s.Resolve(cfg.Verify.FactCheckAPIKey, secrets.FactCheckAPIKey, "FACT_CHECK_API_KEY")
	cfg.Telegram.BotToken = s.Resolve(cfg.Telegram.BotToken, secrets.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	cfg.Blogger.AccessToken = s.Resolve(cfg.Blogger.AccessToken, secrets.BloggerAccessToken, "BLOGGER_ACCESS_TOKEN")
}

func providerSecret(p types.Provider) (key, env string) {
	switch p {
	case types.ProviderGemini:
		return secrets.GeminiAPIKey, "GEMINI_API_KEY"
	case types.ProviderClaude:
		return secrets.AnthropicAPIKey, "ANTHROPIC_API_KEY"
	case types.ProviderHuggingFace:
		return secrets.HuggingFaceAPIKey, "HUGGINGFACE_API_KEY"
	}
	return "", ""
}

// engineConfig loads and validates the configuration for commands that run
// the pipeline.
func engineConfig() (types.EngineConfig, error) {
	cfg, err := loadEngineConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
