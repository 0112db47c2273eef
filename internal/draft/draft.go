// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package draft writes the primary long-form article from research and an SEO
// plan, optionally polishes it with a second model, and resolves which search
// results the article actually cites.
package draft

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/content-engine/internal/llm"
	"github.com/pdiddy/content-engine/internal/research"
	"github.com/pdiddy/content-engine/internal/seo"
	"github.com/pdiddy/content-engine/internal/textstat"
	"github.com/pdiddy/content-engine/pkg/types"
)

// ErrGenerationFailed is returned when the primary model produces no article.
// It ends the request.
var ErrGenerationFailed = errors.New("article generation failed")

const maxBriefChars = 6000

var promptFuncs = template.FuncMap{
	"join": strings.Join,
	"inc":  func(i int) int { return i + 1 },
}

var articlePromptTmpl = template.Must(template.New("article").Funcs(promptFuncs).Parse(`Write a comprehensive article about: {{.Topic}}

Title: {{.Plan.MetaTitle}}
Primary keyword: {{.Plan.PrimaryKeyword}}
{{- if .Plan.SecondaryKeywords}}
Secondary keywords: {{join .Plan.SecondaryKeywords ", "}}
{{- end}}
Style: {{.Prefs.Style}}. Tone: {{.Prefs.Tone}}. Audience: {{.Prefs.TargetAudience}}.

Structure:
1. Introduction: overview, importance, key points to be covered
2. Main Discussion: key concepts, supporting evidence, examples and applications
3. Analysis: different perspectives, current developments, future implications
4. Conclusion: summary of main points and final insights
{{- if .Plan.Headings}}

Use these section headings where they fit:
{{- range .Plan.Headings}}
## {{.}}
{{- end}}
{{- end}}

Requirements:
- Write in Markdown, starting with a single "# " title line
- Use clear headings and bullet points
- Include specific examples
- Focus on clarity and accuracy
{{- if .Sources}}
- Cite sources inline by number, e.g. [1] or [2; 3], using only the numbers below
{{- end}}

Research:
{{.Brief}}
{{- if .Sources}}

Sources:
{{- range $i, $s := .Sources}}
[{{inc $i}}] {{$s.Title}} ({{$s.URL}})
{{- end}}
{{- end}}`))

var improvePromptTmpl = template.Must(template.New("improve").Parse(`Improve the following article. Fix grammar, tighten wording and smooth
transitions. Keep the Markdown headings, the facts and every [n] citation.
Return only the improved article.

{{.}}`))

// Article is the primary draft.
type Article struct {
	Title   string         `json:"title" yaml:"title"`
	Body    string         `json:"body" yaml:"body"`
	Sources []types.Source `json:"sources" yaml:"sources"`

	// Improved reports whether the improver's rewrite replaced the draft.
	Improved bool `json:"improved" yaml:"improved"`
}

// Writer drafts articles with Model and, when Improver is set, polishes them.
type Writer struct {
	Model    llm.Model
	Improver llm.Model
	Timeout  time.Duration
	Log      zerolog.Logger
}

// Draft writes the article. A failed or empty primary generation returns an
// error wrapping ErrGenerationFailed. A failed improvement keeps the draft.
func (w *Writer) Draft(ctx context.Context, topic string, r research.Research, plan seo.Plan, prefs types.Preferences) (Article, error) {
	prompt, err := renderArticlePrompt(topic, r, plan, prefs)
	if err != nil {
		return Article{}, fmt.Errorf("rendering article prompt: %w", err)
	}

	body, err := llm.Call(ctx, w.Model, w.Timeout, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Article{}, ctxErr
		}
		return Article{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	body = llm.StripFences(body)

	a := Article{Body: body}
	if w.Improver != nil {
		if improved, ok := w.improve(ctx, body); ok {
			a.Body = improved
			a.Improved = true
		}
	}

	a.Title = ChooseTitle(plan.MetaTitle, a.Body, topic)
	a.Sources = CitedSources(a.Body, r.Results)
	return a, nil
}

// improve returns the improver's rewrite when it keeps at least half the
// draft's words. Local models often return a truncated continuation.
func (w *Writer) improve(ctx context.Context, body string) (string, bool) {
	var buf bytes.Buffer
	if err := improvePromptTmpl.Execute(&buf, body); err != nil {
		return "", false
	}
	out, err := llm.Call(ctx, w.Improver, w.Timeout, buf.String())
	if err != nil {
		w.Log.Warn().Err(err).Str("model", w.Improver.Name()).Msg("improvement failed, keeping draft")
		return "", false
	}
	out = llm.StripFences(out)
	if textstat.WordCount(out)*2 < textstat.WordCount(body) {
		w.Log.Warn().Str("model", w.Improver.Name()).Msg("improvement too short, keeping draft")
		return "", false
	}
	return out, true
}

var headingPattern = regexp.MustCompile(`(?m)^#\s+(.+?)\s*#*\s*$`)

// ChooseTitle prefers the SEO title, then the body's first "# " heading, then the topic.
func ChooseTitle(seoTitle, body, topic string) string {
	if t := strings.TrimSpace(seoTitle); t != "" {
		return t
	}
	if m := headingPattern.FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(topic)
}

func renderArticlePrompt(topic string, r research.Research, plan seo.Plan, prefs types.Preferences) (string, error) {
	var buf bytes.Buffer
	err := articlePromptTmpl.Execute(&buf, struct {
		Topic   string
		Plan    seo.Plan
		Prefs   types.Preferences
		Brief   string
		Sources []types.Source
	}{topic, plan, prefs, clip(r.Briefing(), maxBriefChars), r.Results})
	return buf.String(), err
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := strings.LastIndexAny(s[:max], "\n ")
	if cut <= 0 {
		cut = max
	}
	return s[:cut]
}
