// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrator runs one content request through the pipeline
// TREND → RESEARCH → VERIFY → ENHANCE → VISUALIZE → COMPILE → STATS → DONE
// and assembles the content envelope.
//
// Stages run strictly in sequence. A stage whose collaborators fail returns a
// degraded result and the pipeline continues; only a research quality-gate
// failure, a failed primary generation or context cancellation stop it.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/content-engine/internal/draft"
	"github.com/pdiddy/content-engine/internal/engage"
	"github.com/pdiddy/content-engine/internal/research"
	"github.com/pdiddy/content-engine/internal/seo"
	"github.com/pdiddy/content-engine/internal/trend"
	"github.com/pdiddy/content-engine/internal/verify"
	"github.com/pdiddy/content-engine/internal/visual"
	"github.com/pdiddy/content-engine/pkg/types"
)

// State is a pipeline state.
type State string

const (
	StateTrend     State = "TREND"
	StateResearch  State = "RESEARCH"
	StateVerify    State = "VERIFY"
	StateEnhance   State = "ENHANCE"
	StateVisualize State = "VISUALIZE"
	StateCompile   State = "COMPILE"
	StateStats     State = "STATS"
	StateDone      State = "DONE"
)

// Transition reports that a state finished.
type Transition struct {
	State   State
	Status  types.StageStatus
	Reason  string
	Elapsed time.Duration
}

// Observer receives every transition of a request, in order.
type Observer interface {
	Transition(t Transition)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Transition)

// Transition implements Observer.
func (f ObserverFunc) Transition(t Transition) { f(t) }

// ProgressWriter prints one line per transition to w.
func ProgressWriter(w io.Writer) Observer {
	return ObserverFunc(func(t Transition) {
		if t.Reason != "" {
			fmt.Fprintf(w, "%-10s %-8s %s (%s)\n", t.State, t.Status, t.Reason, t.Elapsed.Round(time.Millisecond))
			return
		}
		fmt.Fprintf(w, "%-10s %-8s (%s)\n", t.State, t.Status, t.Elapsed.Round(time.Millisecond))
	})
}

// The stage contracts the engine depends on. The concrete stages in the
// sibling packages satisfy them.
type (
	TrendAnalyzer interface {
		Analyze(ctx context.Context, topic string) trend.TrendReport
	}
	ResearchGatherer interface {
		GatherWithRetry(ctx context.Context, topic string) (research.Research, error)
	}
	SEOAdvisor interface {
		Advise(ctx context.Context, topic, research string) (seo.Plan, error)
	}
	Drafter interface {
		Draft(ctx context.Context, topic string, r research.Research, plan seo.Plan, prefs types.Preferences) (draft.Article, error)
	}
	ContentVerifier interface {
		Verify(ctx context.Context, text string, level types.FactCheckLevel, base types.Metadata) types.StageResult[verify.Verified]
	}
	ContentEnhancer interface {
		Enhance(ctx context.Context, text string, style engage.Style, base types.Metadata) types.StageResult[engage.Enhanced]
	}
	VisualGenerator interface {
		Generate(ctx context.Context, text string, base types.Metadata) types.StageResult[visual.Visuals]
	}
)

// Engine holds the stages for one pipeline. Research and Writer are
// required; a nil Trend, SEO, Verifier, Enhancer or Visuals stage is skipped.
// An Engine keeps no per-request state and is safe for concurrent use if its
// stages are.
type Engine struct {
	Trend    TrendAnalyzer
	Research ResearchGatherer
	SEO      SEOAdvisor
	Writer   Drafter
	Verifier ContentVerifier
	Enhancer ContentEnhancer
	Visuals  VisualGenerator

	// Scorer fills credibility and engagement; nil means DefaultScorer.
	Scorer   Scorer
	Observer Observer
	Log      zerolog.Logger
}

// run tracks one request as it moves through the states.
type run struct {
	e      *Engine
	start  time.Time
	stages map[string]string
}

func (r *run) finish(state State, status types.StageStatus, reason string) {
	if r.e.Observer != nil {
		r.e.Observer.Transition(Transition{State: state, Status: status, Reason: reason, Elapsed: time.Since(r.start)})
	}
	r.start = time.Now()
}

func (r *run) record(kind types.StageKind, status types.StageStatus) {
	r.stages[string(kind)] = string(status)
}

// fail reports state as failed and wraps err with the state name.
func (r *run) fail(state State, err error) error {
	r.finish(state, types.StatusFailed, err.Error())
	r.e.Log.Error().Err(err).Str("state", string(state)).Msg("content generation stopped")
	return fmt.Errorf("%s: %w", state, err)
}

// Generate runs the pipeline for req. It returns an error wrapping
// research.ErrQualityGate, draft.ErrGenerationFailed or the context error
// when the request cannot complete.
func (e *Engine) Generate(ctx context.Context, req types.ContentRequest) (*types.ContentEnvelope, error) {
	if e.Research == nil || e.Writer == nil {
		return nil, fmt.Errorf("orchestrator: research and writer stages are required")
	}
	topic := req.Topic()
	prefs := req.Preferences()
	base := req.Metadata()
	r := &run{e: e, start: time.Now(), stages: map[string]string{}}
	log := e.Log.With().Str("request_id", req.ID()).Str("topic", topic).Logger()
	log.Info().Msg("content generation started")

	// TREND
	trendRes := e.trend(ctx, topic, base)
	r.record(types.StageTrend, trendRes.Status)
	r.finish(StateTrend, trendRes.Status, trendRes.Reason)
	if err := ctx.Err(); err != nil {
		return nil, r.fail(StateTrend, err)
	}

	// RESEARCH: gather with the quality gate, plan SEO, write the draft.
	found, err := e.Research.GatherWithRetry(ctx, topic)
	if err != nil {
		r.record(types.StageResearch, types.StatusFailed)
		return nil, r.fail(StateResearch, err)
	}
	r.record(types.StageResearch, types.StatusSuccess)

	seoRes := e.seo(ctx, topic, found, base)
	r.record(types.StageSEO, seoRes.Status)

	article, err := e.Writer.Draft(ctx, topic, found, seoRes.Content, prefs)
	if err != nil {
		r.record(types.StageArticle, types.StatusFailed)
		return nil, r.fail(StateResearch, err)
	}
	r.record(types.StageArticle, types.StatusSuccess)
	researchStatus, researchReason := types.StatusSuccess, ""
	if !seoRes.OK() {
		researchStatus, researchReason = types.StatusDegraded, "seo: "+seoRes.Reason
	}
	r.finish(StateResearch, researchStatus, researchReason)

	// VERIFY
	if err := ctx.Err(); err != nil {
		return nil, r.fail(StateVerify, err)
	}
	verRes := e.verify(ctx, article.Body, prefs.FactCheckLevel, base)
	r.record(types.StageVerified, verRes.Status)
	r.finish(StateVerify, verRes.Status, verRes.Reason)

	// ENHANCE
	if err := ctx.Err(); err != nil {
		return nil, r.fail(StateEnhance, err)
	}
	enhRes := e.enhance(ctx, verRes.Content.Content, engage.StyleFor(prefs), base)
	r.record(types.StageEnhanced, enhRes.Status)
	r.finish(StateEnhance, enhRes.Status, enhRes.Reason)

	// VISUALIZE
	if err := ctx.Err(); err != nil {
		return nil, r.fail(StateVisualize, err)
	}
	visRes := e.visualize(ctx, enhRes.Content.Content, prefs.IncludeVisuals, base)
	r.record(types.StageVisuals, visRes.Status)
	r.finish(StateVisualize, visRes.Status, visRes.Reason)

	// COMPILE
	if err := ctx.Err(); err != nil {
		return nil, r.fail(StateCompile, err)
	}
	meta := types.Merge(base, types.Metadata{
		"virality_score":   trendRes.Content.ViralityScore,
		"trend_summary":    trendRes.Content.Summary,
		"stages":           r.stages,
		"claims_found":     len(verRes.Content.Verification.Claims),
		"claims_checked":   verRes.Content.Verification.Checked(),
		"bias":             verRes.Content.Verification.BiasAnalysis.Label,
		"readability":      enhRes.Content.Analysis.ReadabilityScore,
		"primary_keyword":  seoRes.Content.PrimaryKeyword,
		"meta_description": seoRes.Content.MetaDescription,
		"keywords":         keywords(seoRes.Content),
		"improved":         article.Improved,
	})
	env := Compile(article.Title, enhRes.Content, visRes.Content, article.Sources, meta)
	r.finish(StateCompile, types.StatusSuccess, "")

	// STATS
	scorer := e.Scorer
	if scorer == nil {
		scorer = DefaultScorer
	}
	env.Stats = Stats(env, scorer)
	env.Metadata["word_count"] = env.Stats.WordCount
	r.finish(StateStats, types.StatusSuccess, "")

	r.finish(StateDone, types.StatusSuccess, "")
	log.Info().Int("word_count", env.Stats.WordCount).Int("visuals", len(env.Visuals)).Msg("content generation finished")
	return &env, nil
}

func (e *Engine) trend(ctx context.Context, topic string, base types.Metadata) types.StageResult[trend.TrendReport] {
	if e.Trend == nil {
		return types.Skipped[trend.TrendReport](types.StageTrend, "no trend sources configured", base)
	}
	report := e.Trend.Analyze(ctx, topic)
	add := types.Metadata{"virality_score": report.ViralityScore, "trend_summary": report.Summary}
	if len(report.Failed) > 0 {
		return types.Degraded(types.StageTrend, report, fmt.Sprintf("sources failed: %v", report.Failed), base, add)
	}
	return types.Succeeded(types.StageTrend, report, base, add)
}

func (e *Engine) seo(ctx context.Context, topic string, found research.Research, base types.Metadata) types.StageResult[seo.Plan] {
	if e.SEO == nil {
		return types.StageResult[seo.Plan]{
			Stage:    types.StageSEO,
			Status:   types.StatusSkipped,
			Reason:   "no SEO advisor configured",
			Content:  seo.DefaultPlan(topic),
			Metadata: types.Merge(base, nil),
		}
	}
	plan, err := e.SEO.Advise(ctx, topic, found.Combined())
	add := types.Metadata{"primary_keyword": plan.PrimaryKeyword}
	if err != nil {
		return types.Degraded(types.StageSEO, plan, err.Error(), base, add)
	}
	return types.Succeeded(types.StageSEO, plan, base, add)
}

func (e *Engine) verify(ctx context.Context, text string, level types.FactCheckLevel, base types.Metadata) types.StageResult[verify.Verified] {
	if e.Verifier == nil {
		res := types.Skipped[verify.Verified](types.StageVerified, "no verifier configured", base)
		res.Content.Content = text
		return res
	}
	return e.Verifier.Verify(ctx, text, level, base)
}

func (e *Engine) enhance(ctx context.Context, text string, style engage.Style, base types.Metadata) types.StageResult[engage.Enhanced] {
	if e.Enhancer == nil {
		res := types.Skipped[engage.Enhanced](types.StageEnhanced, "no enhancer configured", base)
		res.Content.Content = text
		return res
	}
	return e.Enhancer.Enhance(ctx, text, style, base)
}

func (e *Engine) visualize(ctx context.Context, text string, enabled bool, base types.Metadata) types.StageResult[visual.Visuals] {
	switch {
	case !enabled:
		return types.Skipped[visual.Visuals](types.StageVisuals, "visuals disabled by preferences", base)
	case e.Visuals == nil:
		return types.Skipped[visual.Visuals](types.StageVisuals, "no visual generator configured", base)
	}
	return e.Visuals.Generate(ctx, text, base)
}

func keywords(p seo.Plan) []string {
	out := make([]string, 0, 1+len(p.SecondaryKeywords))
	if p.PrimaryKeyword != "" {
		out = append(out, p.PrimaryKeyword)
	}
	return append(out, p.SecondaryKeywords...)
}
