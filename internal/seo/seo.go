// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package seo plans search-engine optimization for an article and measures
// how well a finished text follows the plan.
package seo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/pdiddy/content-engine/internal/llm"
)

// Length limits search engines display without truncation.
const (
	MaxTitleLen       = 60
	MaxDescriptionLen = 160

	maxSecondary  = 5
	maxLongTail   = 3
	maxHeadings   = 8
	maxBriefChars = 4000
)

// Plan is the SEO guidance handed to the draft writer.
type Plan struct {
	PrimaryKeyword    string   `json:"primary_keyword" yaml:"primary_keyword"`
	SecondaryKeywords []string `json:"secondary_keywords" yaml:"secondary_keywords"`
	LongTailKeywords  []string `json:"long_tail_keywords" yaml:"long_tail_keywords"`
	MetaTitle         string   `json:"meta_title" yaml:"meta_title"`
	MetaDescription   string   `json:"meta_description" yaml:"meta_description"`
	Headings          []string `json:"headings" yaml:"headings"`
}

// Validate implements llm.Validator.
func (p Plan) Validate() error {
	if strings.TrimSpace(p.PrimaryKeyword) == "" {
		return errors.New("primary_keyword is empty")
	}
	if strings.TrimSpace(p.MetaTitle) == "" {
		return errors.New("meta_title is empty")
	}
	return nil
}

const planSchema = `{
  "primary_keyword": "string, the main search phrase",
  "secondary_keywords": ["3-5 related terms"],
  "long_tail_keywords": ["2-3 specific phrases"],
  "meta_title": "string, at most 60 characters, contains the primary keyword",
  "meta_description": "string, 150-160 characters",
  "headings": ["recommended H2 headings in order"]
}`

var planPromptTmpl = template.Must(template.New("seo").Parse(`Analyze this topic and research for SEO optimization.

Topic: {{.Topic}}

Research:
{{.Research}}

Provide a primary keyword, 3-5 secondary keywords, 2-3 long-tail keywords,
an SEO title of 50-60 characters, a meta description of 150-160 characters
and a recommended heading structure.`))

// Advisor asks the model for an SEO plan.
type Advisor struct {
	Model   llm.Model
	Timeout time.Duration
	Log     zerolog.Logger
}

// Advise returns the model's plan, normalized to the length limits. When the
// model fails or answers outside the schema, Advise returns DefaultPlan(topic)
// together with the error so the caller can mark the stage degraded.
func (a *Advisor) Advise(ctx context.Context, topic, research string) (Plan, error) {
	fallback := DefaultPlan(topic)

	var buf bytes.Buffer
	if err := planPromptTmpl.Execute(&buf, struct{ Topic, Research string }{topic, clip(research, maxBriefChars)}); err != nil {
		return fallback, fmt.Errorf("rendering SEO prompt: %w", err)
	}

	plan := fallback
	if err := llm.Structured(ctx, a.Model, a.Timeout, buf.String(), planSchema, &plan); err != nil {
		a.Log.Warn().Err(err).Str("topic", topic).Msg("SEO plan degraded to default")
		return fallback, err
	}
	return normalize(plan, topic), nil
}

// DefaultPlan derives a usable plan from the topic alone.
func DefaultPlan(topic string) Plan {
	topic = strings.TrimSpace(topic)
	lower := strings.ToLower(topic)
	titled := titleCase(topic)
	return normalize(Plan{
		PrimaryKeyword:    lower,
		SecondaryKeywords: keywordTerms(lower),
		LongTailKeywords:  []string{"what is " + lower, lower + " explained"},
		MetaTitle:         titled + ": A Complete Guide",
		MetaDescription:   "Learn about " + lower + ": key facts, recent developments and expert perspectives, explained clearly with sources.",
		Headings: []string{
			"Introduction",
			"What Is " + titled,
			"Key Facts and Recent Developments",
			"Different Perspectives",
			"Conclusion",
		},
	}, topic)
}

func normalize(p Plan, topic string) Plan {
	p.PrimaryKeyword = strings.TrimSpace(p.PrimaryKeyword)
	if p.PrimaryKeyword == "" {
		p.PrimaryKeyword = strings.ToLower(strings.TrimSpace(topic))
	}
	p.SecondaryKeywords = cleanList(p.SecondaryKeywords, maxSecondary)
	p.LongTailKeywords = cleanList(p.LongTailKeywords, maxLongTail)
	p.Headings = cleanList(p.Headings, maxHeadings)
	p.MetaTitle = Truncate(strings.TrimSpace(p.MetaTitle), MaxTitleLen)
	p.MetaDescription = Truncate(strings.TrimSpace(p.MetaDescription), MaxDescriptionLen)
	return p
}

// Truncate shortens s to at most max runes, cutting at a word boundary when
// one falls in the second half.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)[:max]
	cut := len(runes)
	for i := len(runes) - 1; i > max/2; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}
	return strings.TrimRightFunc(string(runes[:cut]), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}

func cleanList(in []string, max int) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
		if len(out) == max {
			break
		}
	}
	return out
}

func keywordTerms(topic string) []string {
	var terms []string
	for _, f := range strings.Fields(topic) {
		if utf8.RuneCountInString(f) > 3 {
			terms = append(terms, f)
		}
	}
	return terms
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
