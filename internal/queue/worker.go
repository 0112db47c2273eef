// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package queue runs the content engine as a queue worker: it receives
// generation jobs, runs the pipeline and publishes each envelope.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/content-engine/pkg/types"
)

// Job is the body of an input message.
type Job struct {
	Topic       string             `json:"topic"`
	Preferences *types.Preferences `json:"preferences,omitempty"`
}

// Status values of a Result.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Result is the body of an output message.
type Result struct {
	MessageID string                 `json:"message_id"`
	Topic     string                 `json:"topic"`
	Status    string                 `json:"status"`
	Error     string                 `json:"error,omitempty"`
	Envelope  *types.ContentEnvelope `json:"envelope,omitempty"`
}

// Generator runs the content pipeline.
type Generator interface {
	Generate(ctx context.Context, req types.ContentRequest) (*types.ContentEnvelope, error)
}

// Archiver stores finished envelopes.
type Archiver interface {
	Save(ctx context.Context, env *types.ContentEnvelope) (string, error)
}

// ReceiveBackoff is the pause after a failed receive. Tests shorten it.
var ReceiveBackoff = 5 * time.Second

// Worker processes jobs from InputURL. Results go to OutputURL when set.
type Worker struct {
	Queue       Queue
	InputURL    string
	OutputURL   string
	Generator   Generator
	Archive     Archiver
	Preferences types.Preferences
	Log         zerolog.Logger
}

// Run processes batches until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.Log.Info().Str("queue", w.InputURL).Msg("worker started")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := w.ProcessBatch(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.Log.Warn().Err(err).Msg("receive failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(ReceiveBackoff):
			}
		}
	}
}

// ProcessBatch receives one batch and handles each message. It returns the
// number of messages deleted. Only a receive failure is returned as an error;
// per-message failures are logged and the message is left for redelivery.
func (w *Worker) ProcessBatch(ctx context.Context) (int, error) {
	msgs, err := w.Queue.Receive(ctx, w.InputURL)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, m := range msgs {
		if err := w.handle(ctx, m); err != nil {
			w.Log.Error().Err(err).Str("message_id", m.ID).Msg("message not acknowledged")
			continue
		}
		if err := w.Queue.Delete(ctx, w.InputURL, m.ReceiptHandle); err != nil {
			w.Log.Error().Err(err).Str("message_id", m.ID).Msg("delete failed")
			continue
		}
		done++
	}
	return done, nil
}

// handle returns nil when the message may be deleted. Malformed jobs and
// failed generations are answered with a failed Result and deleted; a failed
// publish keeps the message.
func (w *Worker) handle(ctx context.Context, m Message) error {
	res := Result{MessageID: m.ID}

	var job Job
	if err := json.Unmarshal([]byte(m.Body), &job); err != nil {
		res.Status, res.Error = StatusFailed, fmt.Sprintf("decoding job: %v", err)
		return w.publish(ctx, res)
	}
	res.Topic = job.Topic

	prefs := w.Preferences
	if job.Preferences != nil {
		prefs = *job.Preferences
	}
	req, err := types.NewContentRequest(job.Topic, prefs)
	if err != nil {
		res.Status, res.Error = StatusFailed, err.Error()
		return w.publish(ctx, res)
	}

	env, err := w.Generator.Generate(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.Log.Error().Err(err).Str("topic", job.Topic).Msg("generation failed")
		res.Status, res.Error = StatusFailed, err.Error()
		return w.publish(ctx, res)
	}

	if w.Archive != nil {
		if id, err := w.Archive.Save(ctx, env); err != nil {
			w.Log.Warn().Err(err).Msg("archive save failed")
		} else {
			w.Log.Debug().Str("archive_id", id).Msg("envelope archived")
		}
	}

	res.Status, res.Envelope = StatusOK, env
	if err := w.publish(ctx, res); err != nil {
		return err
	}
	w.Log.Info().Str("topic", job.Topic).Int("words", env.Stats.WordCount).Msg("job done")
	return nil
}

func (w *Worker) publish(ctx context.Context, res Result) error {
	if w.OutputURL == "" {
		if res.Status == StatusFailed {
			w.Log.Warn().Str("error", res.Error).Str("message_id", res.MessageID).Msg("no output queue, dropping failed job")
		}
		return nil
	}
	return w.Queue.Send(ctx, w.OutputURL, res)
}
