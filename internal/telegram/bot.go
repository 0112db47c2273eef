// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package telegram is a chat front end for the content engine. It long-polls
// the Bot API for messages of the form "<command> <topic>", runs the pipeline
// and replies with the title, a truncated body and a stats line.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/content-engine/internal/httputil"
	"github.com/pdiddy/content-engine/pkg/types"
)

// apiBase is the Bot API root. Declared as a var so tests can substitute an
// httptest server.
var apiBase = "https://api.telegram.org"

// ErrorReply is sent when generation fails. Details stay in the log.
const ErrorReply = "Sorry, there was an error generating content."

const (
	defaultCommand   = "!generate"
	defaultMaxRunes  = 3000
	defaultPollWait  = 30 * time.Second
	errorBackoff     = 5 * time.Second
	slashCommandForm = "/generate"
)

// Generator runs the content pipeline.
type Generator interface {
	Generate(ctx context.Context, req types.ContentRequest) (*types.ContentEnvelope, error)
}

// Bot answers generate commands.
type Bot struct {
	Token       string
	Client      *http.Client
	Generator   Generator
	Store       Store
	Preferences types.Preferences

	// Command triggers generation; "/generate" is always accepted too.
	Command      string
	PollTimeout  time.Duration
	MaxBodyRunes int
	Log          zerolog.Logger
}

// Update is one getUpdates entry.
type Update struct {
	ID      int64    `json:"update_id"`
	Message *Message `json:"message,omitempty"`
}

// Message is the subset of a Bot API message the bot reads.
type Message struct {
	ID   int64  `json:"message_id"`
	Text string `json:"text"`
	Chat struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// Run polls until ctx is cancelled. Transient API errors are logged and
// retried after a pause; the stored offset advances past every handled update.
func (b *Bot) Run(ctx context.Context) error {
	b.Log.Info().Str("command", b.command()).Msg("telegram bot polling")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		offset, err := b.Store.Offset(ctx)
		if err != nil {
			return fmt.Errorf("loading offset: %w", err)
		}

		updates, err := b.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.Log.Warn().Err(err).Msg("getUpdates failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(errorBackoff):
			}
			continue
		}

		for _, u := range updates {
			if u.Message != nil {
				b.handle(ctx, *u.Message)
			}
			if err := b.Store.SetOffset(ctx, u.ID+1); err != nil {
				return fmt.Errorf("saving offset: %w", err)
			}
		}
	}
}

func (b *Bot) handle(ctx context.Context, msg Message) {
	reply, ok := b.Reply(ctx, msg.Text)
	if !ok {
		return
	}
	if err := b.sendMessage(ctx, msg.Chat.ID, msg.ID, reply); err != nil {
		b.Log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("sendMessage failed")
	}
}

// Reply returns the bot's answer to text, or false when text is not a
// generate command.
func (b *Bot) Reply(ctx context.Context, text string) (string, bool) {
	topic, ok := ParseCommand(text, b.command())
	if !ok {
		return "", false
	}
	if topic == "" {
		return "Please provide a topic after " + b.command(), true
	}

	req, err := types.NewContentRequest(topic, b.Preferences)
	if err != nil {
		b.Log.Warn().Err(err).Str("topic", topic).Msg("rejected request")
		return ErrorReply, true
	}
	env, err := b.Generator.Generate(ctx, req)
	if err != nil {
		b.Log.Error().Err(err).Str("topic", topic).Msg("generation failed")
		return ErrorReply, true
	}
	if n, err := b.Store.IncrGenerated(ctx); err != nil {
		b.Log.Warn().Err(err).Msg("generated counter not updated")
	} else {
		b.Log.Info().Int64("generated", n).Str("topic", topic).Msg("article delivered")
	}
	return FormatReply(env, b.maxRunes()), true
}

// ParseCommand reports whether text starts with command (or "/generate",
// optionally addressed as "/generate@BotName") and returns the rest as the topic.
func ParseCommand(text, command string) (string, bool) {
	text = strings.TrimSpace(text)
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", false
	}
	head := fields[0]
	if at := strings.IndexByte(head, '@'); at > 0 && strings.HasPrefix(head, "/") {
		head = head[:at]
	}
	if head != command && head != slashCommandForm {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(text, fields[0])), true
}

// FormatReply renders the envelope as title, body cut to maxRunes runes
// (with "..." when cut) and a stats line.
func FormatReply(env *types.ContentEnvelope, maxRunes int) string {
	body := []rune(strings.TrimSpace(env.Content))
	text := string(body)
	if maxRunes > 0 && len(body) > maxRunes {
		text = string(body[:maxRunes]) + "..."
	}
	return fmt.Sprintf("%s\n\n%s\n\nStats: Words: %d | Reading time: %d min",
		env.Title, text, env.Stats.WordCount, env.Stats.ReadingTime)
}

func (b *Bot) getUpdates(ctx context.Context, offset int64) ([]Update, error) {
	wait := b.PollTimeout
	if wait <= 0 {
		wait = defaultPollWait
	}
	q := url.Values{}
	q.Set("offset", strconv.FormatInt(offset, 10))
	q.Set("timeout", strconv.Itoa(int(wait.Seconds())))
	q.Set("allowed_updates", `["message"]`)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint("getUpdates")+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var updates []Update
	if err := b.do(ctx, req, &updates); err != nil {
		return nil, fmt.Errorf("getUpdates: %w", err)
	}
	return updates, nil
}

func (b *Bot) sendMessage(ctx context.Context, chatID, replyTo int64, text string) error {
	body, err := json.Marshal(map[string]any{
		"chat_id":             chatID,
		"text":                text,
		"reply_to_message_id": replyTo,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if err := b.do(ctx, req, nil); err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}
	return nil
}

func (b *Bot) do(ctx context.Context, req *http.Request, result any) error {
	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("HTTP %d: decoding response: %w", resp.StatusCode, err)
	}
	if !out.OK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, out.Description)
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(out.Result, result)
}

func (b *Bot) endpoint(method string) string {
	return apiBase + "/bot" + b.Token + "/" + method
}

func (b *Bot) command() string {
	if b.Command != "" {
		return b.Command
	}
	return defaultCommand
}

func (b *Bot) maxRunes() int {
	if b.MaxBodyRunes > 0 {
		return b.MaxBodyRunes
	}
	return defaultMaxRunes
}
