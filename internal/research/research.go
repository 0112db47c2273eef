// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research gathers background material for an article: a factual
// briefing and a survey of perspectives from the model, plus web and news
// search results. A quality gate rejects briefings without factual grounding.
package research

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/content-engine/internal/llm"
	"github.com/pdiddy/content-engine/pkg/types"
)

// ErrQualityGate is returned when gathered research lacks factual grounding.
var ErrQualityGate = errors.New("research failed quality gate")

// MinResearchChars is the shortest combined briefing the gate accepts.
const MinResearchChars = 100

// factualIndicators are phrases that mark a briefing as grounded in evidence.
var factualIndicators = []string{
	"research shows",
	"studies indicate",
	"according to",
	"evidence suggests",
	"data indicates",
}

var infoPromptTmpl = template.Must(template.New("info").Parse(`Provide comprehensive information about: {{.Topic}}

Include:
- Key concepts and definitions
- Important facts and statistics, attributed to their source ("according to ...")
- Recent developments
- Different viewpoints

Format the response with bullet points and clear sections.`))

var perspectivesPromptTmpl = template.Must(template.New("perspectives").Parse(`Analyze different perspectives on: {{.Topic}}

Consider:
- Various stakeholder viewpoints
- Pros and cons
- Potential controversies
- Expert opinions and what the evidence suggests`))

// Research is the output of one gathering pass.
type Research struct {
	Info         string         `json:"info" yaml:"info"`
	Perspectives string         `json:"perspectives" yaml:"perspectives"`
	Results      []types.Source `json:"results" yaml:"results"`
}

// Briefing joins the model-written sections.
func (r Research) Briefing() string {
	return strings.TrimSpace(r.Info + "\n\n" + r.Perspectives)
}

// Combined is the briefing followed by the search results, one per line.
func (r Research) Combined() string {
	var sb strings.Builder
	sb.WriteString(r.Briefing())
	if len(r.Results) > 0 {
		sb.WriteString("\n\nSearch Results:\n")
		for i, s := range r.Results {
			fmt.Fprintf(&sb, "[%d] %s: %s\n", i+1, s.Title, s.URL)
		}
	}
	return sb.String()
}

// CheckQuality applies the gate: at least MinResearchChars characters and one
// factual indicator phrase, case-insensitive.
func CheckQuality(text string) error {
	text = strings.TrimSpace(text)
	if len(text) < MinResearchChars {
		return fmt.Errorf("%w: %d characters, need %d", ErrQualityGate, len(text), MinResearchChars)
	}
	lower := strings.ToLower(text)
	for _, phrase := range factualIndicators {
		if strings.Contains(lower, phrase) {
			return nil
		}
	}
	return fmt.Errorf("%w: no factual indicator phrase", ErrQualityGate)
}

// Gatherer runs the two research prompts and the search fan-out.
type Gatherer struct {
	Model       llm.Model
	Timeout     time.Duration
	Backends    []Backend
	MaxResults  int
	MaxAttempts int
	Log         zerolog.Logger
}

// Gather runs the info prompt, the perspectives prompt and the search backends
// concurrently, then applies the quality gate to the briefing. A failed prompt
// contributes an empty section; failed search backends are logged.
func (g *Gatherer) Gather(ctx context.Context, topic string) (Research, error) {
	var r Research
	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		r.Info = g.prompt(egctx, infoPromptTmpl, topic)
		return nil
	})
	eg.Go(func() error {
		r.Perspectives = g.prompt(egctx, perspectivesPromptTmpl, topic)
		return nil
	})
	eg.Go(func() error {
		r.Results = Search(egctx, topic, g.Backends, g.MaxResults, g.Log)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return Research{}, err
	}
	if err := ctx.Err(); err != nil {
		return Research{}, err
	}

	if err := CheckQuality(r.Briefing()); err != nil {
		return r, err
	}
	return r, nil
}

// GatherWithRetry calls Gather until the briefing passes the gate, at most
// MaxAttempts times (default 3). Errors other than ErrQualityGate stop at once.
func (g *Gatherer) GatherWithRetry(ctx context.Context, topic string) (Research, error) {
	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		r, err := g.Gather(ctx, topic)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, ErrQualityGate) {
			return Research{}, err
		}
		lastErr = err
		g.Log.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", attempts).Msg("research rejected")
	}
	return Research{}, fmt.Errorf("research for %q after %d attempts: %w", topic, attempts, lastErr)
}

func (g *Gatherer) prompt(ctx context.Context, tmpl *template.Template, topic string) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Topic string }{topic}); err != nil {
		g.Log.Error().Err(err).Str("template", tmpl.Name()).Msg("rendering prompt")
		return ""
	}
	text, err := llm.Call(ctx, g.Model, g.Timeout, buf.String())
	if err != nil {
		g.Log.Warn().Err(err).Str("prompt", tmpl.Name()).Msg("research prompt failed")
		return ""
	}
	return text
}
