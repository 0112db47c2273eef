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

	"github.com/pdiddy/content-engine/internal/archive"
	"github.com/pdiddy/content-engine/internal/orchestrator"
	"github.com/pdiddy/content-engine/internal/queue"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Process generation jobs from an SQS queue",
	Long: `Worker receives {"topic": ..., "preferences": {...}} jobs from
queue.input_queue_url, runs the pipeline and sends a result message with the
envelope to queue.output_queue_url. AWS credentials and region come from the
standard AWS environment and shared config.`,
	RunE: runWorker,
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := engineConfig()
	if err != nil {
		return err
	}
	if cfg.Queue.InputQueueURL == "" {
		return fmt.Errorf("queue.input_queue_url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, closeEngine, err := orchestrator.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeEngine()

	q, err := queue.NewSQS(ctx, cfg.Queue.WaitSeconds, cfg.Queue.MaxMessages)
	if err != nil {
		return err
	}

	w := &queue.Worker{
		Queue:       q,
		InputURL:    cfg.Queue.InputQueueURL,
		OutputURL:   cfg.Queue.OutputQueueURL,
		Generator:   engine,
		Preferences: cfg.Preferences,
		Log:         logger.With().Str("component", "worker").Logger(),
	}
	if ok, _ := cmd.Flags().GetBool("archive"); ok {
		store, err := archive.NewStore(cfg.Archive)
		if err != nil {
			return err
		}
		defer store.Close()
		w.Archive = store
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func init() {
	workerCmd.Flags().Bool("archive", false, "save every generated envelope to the local archive")

	rootCmd.AddCommand(workerCmd)
}
