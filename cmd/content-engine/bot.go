// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/content-engine/internal/orchestrator"
	"github.com/pdiddy/content-engine/internal/telegram"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram chat bot",
	Long: `Bot long-polls the Telegram Bot API and answers "!generate <topic>"
(or "/generate <topic>") with the generated article. Update offsets and the
generated-article counter are kept in Redis when telegram.redis_addr is set.`,
	RunE: runBot,
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := engineConfig()
	if err != nil {
		return err
	}
	if cfg.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token missing: set telegram.bot_token, .secrets/telegram-bot-token or TELEGRAM_BOT_TOKEN")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, closeEngine, err := orchestrator.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeEngine()

	var store telegram.Store = &telegram.MemoryStore{}
	if addr := cfg.Telegram.RedisAddr; addr != "" {
		rs := telegram.NewRedisStore(addr, cfg.Telegram.RedisPassword, cfg.Telegram.RedisDB, "")
		defer rs.Close()
		if err := rs.Ping(ctx); err != nil {
			return err
		}
		store = rs
	}

	b := &telegram.Bot{
		Token:        cfg.Telegram.BotToken,
		Generator:    engine,
		Store:        store,
		Preferences:  cfg.Preferences,
		Command:      cfg.Telegram.Command,
		PollTimeout:  cfg.Telegram.PollTimeout,
		MaxBodyRunes: cfg.Telegram.MaxBodyRunes,
		Log:          logger.With().Str("component", "telegram").Logger(),
	}
	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func init() {
	rootCmd.AddCommand(botCmd)
}
