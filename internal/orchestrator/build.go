// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/pdiddy/content-engine/internal/draft"
	"github.com/pdiddy/content-engine/internal/engage"
	"github.com/pdiddy/content-engine/internal/llm"
	"github.com/pdiddy/content-engine/internal/research"
	"github.com/pdiddy/content-engine/internal/seo"
	"github.com/pdiddy/content-engine/internal/trend"
	"github.com/pdiddy/content-engine/internal/verify"
	"github.com/pdiddy/content-engine/internal/visual"
	"github.com/pdiddy/content-engine/pkg/types"
)

// New wires every stage from cfg. The returned close function releases the
// model clients and is never nil.
func New(ctx context.Context, cfg types.EngineConfig, log zerolog.Logger) (*Engine, func() error, error) {
	noop := func() error { return nil }
	var closers []func() error
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}

	model, closeModel, err := llm.New(ctx, cfg.Model)
	if err != nil {
		return nil, noop, fmt.Errorf("model: %w", err)
	}
	closers = append(closers, closeModel)

	var improver llm.Model
	if cfg.Improver.Enabled() {
		m, closeImprover, err := llm.New(ctx, cfg.Improver)
		if err != nil {
			return nil, noop, errors.Join(fmt.Errorf("improver: %w", err), closeAll())
		}
		closers = append(closers, closeImprover)
		improver = m
	}

	checkers, err := factCheckers(ctx, cfg.Verify)
	if err != nil {
		return nil, noop, errors.Join(err, closeAll())
	}

	timeout := cfg.Model.Timeout
	trendClient := &http.Client{Timeout: cfg.Trend.Timeout}
	e := &Engine{
		Trend: &trend.Collector{
			Google: &trend.GoogleTrends{Client: trendClient, Config: cfg.Trend},
			Reddit: &trend.Reddit{Client: trendClient, Config: cfg.Trend},
			Log:    log.With().Str("stage", "trend").Logger(),
		},
		Research: &research.Gatherer{
			Model:       model,
			Timeout:     timeout,
			Backends:    research.NewBackends(cfg.Research),
			MaxResults:  cfg.Research.MaxResults,
			MaxAttempts: cfg.Research.MaxAttempts,
			Log:         log.With().Str("stage", "research").Logger(),
		},
		SEO: &seo.Advisor{Model: model, Timeout: timeout, Log: log.With().Str("stage", "seo").Logger()},
		Writer: &draft.Writer{
			Model:    model,
			Improver: improver,
			Timeout:  timeout,
			Log:      log.With().Str("stage", "draft").Logger(),
		},
		Verifier: &verify.Verifier{
			Model:    model,
			Timeout:  timeout,
			Checkers: checkers,
			Log:      log.With().Str("stage", "verify").Logger(),
		},
		Enhancer: &engage.Enhancer{
			Model:     model,
			Timeout:   timeout,
			Sentiment: &engage.NaiveBayes{},
			Log:       log.With().Str("stage", "engage").Logger(),
		},
		Visuals: &visual.Generator{Model: model, Timeout: timeout, Log: log.With().Str("stage", "visual").Logger()},
		Scorer:  NewScorer(cfg.Scoring),
		Log:     log,
	}
	return e, closeAll, nil
}

func factCheckers(ctx context.Context, cfg types.VerifyConfig) ([]verify.FactChecker, error) {
	var checkers []verify.FactChecker
	if cfg.FactCheckAPIKey != "" {
		g, err := verify.NewGoogleFactCheck(ctx, cfg.FactCheckAPIKey, cfg.LanguageCode)
		if err != nil {
			return nil, fmt.Errorf("fact check client: %w", err)
		}
		checkers = append(checkers, g)
	}
	if cfg.ClaimReviewURL != "" {
		checkers = append(checkers, &verify.HTTPChecker{
			URL:       cfg.ClaimReviewURL,
			UserAgent: cfg.UserAgent,
			Client:    &http.Client{Timeout: cfg.Timeout},
		})
	}
	return checkers, nil
}
