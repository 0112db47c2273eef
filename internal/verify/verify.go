// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify extracts checkable claims from an article, looks each one up
// in fact-checking backends and labels the article's bias. Verification is
// advisory: failures degrade the stage but never stop the pipeline.
package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/content-engine/internal/llm"
	"github.com/pdiddy/content-engine/pkg/types"
)

// Entity labels that make a named entity a checkable claim.
var claimLabels = map[string]bool{
	"ORG":    true,
	"GPE":    true,
	"LOC":    true,
	"PERSON": true,
	"EVENT":  true,
}

const maxTextChars = 12000

// Review is one fact-check verdict returned by a backend.
type Review struct {
	Claim     string `json:"claim,omitempty" yaml:"claim,omitempty"`
	Claimant  string `json:"claimant,omitempty" yaml:"claimant,omitempty"`
	Publisher string `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	Rating    string `json:"rating,omitempty" yaml:"rating,omitempty"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Response is one backend's answer for one claim. An empty Reviews slice
// means the backend was reached and knows nothing about the claim.
type Response struct {
	Reviews []Review `json:"reviews" yaml:"reviews"`
}

// FactChecker looks up a claim in one fact-checking service.
type FactChecker interface {
	Name() string
	Check(ctx context.Context, claim string) (Response, error)
}

// Bias is the model's political-leaning label for the article.
type Bias struct {
	Label      string  `json:"label" yaml:"label"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Validate implements llm.Validator.
func (b Bias) Validate() error {
	if strings.TrimSpace(b.Label) == "" {
		return errors.New("label is empty")
	}
	if b.Confidence < 0 || b.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0,1]", b.Confidence)
	}
	return nil
}

// Verification is the outcome of checking one article.
type Verification struct {
	Claims []string `json:"claims" yaml:"claims"`

	// FactCheckResults maps claim → backend → response. A claim appears only
	// if at least one backend answered.
	FactCheckResults map[string]map[string]Response `json:"fact_check_results" yaml:"fact_check_results"`

	// Unchecked lists claims no backend answered, in claim order.
	Unchecked []string `json:"unchecked" yaml:"unchecked"`

	BiasAnalysis Bias                 `json:"bias_analysis" yaml:"bias_analysis"`
	Level        types.FactCheckLevel `json:"level" yaml:"level"`
}

// Checked counts claims with at least one backend answer.
func (v Verification) Checked() int { return len(v.FactCheckResults) }

// Verified pairs the unchanged article text with its verification.
type Verified struct {
	Content      string       `json:"content" yaml:"content"`
	Verification Verification `json:"verification" yaml:"verification"`
}

type entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

type entityList struct {
	Entities []entity `json:"entities"`
}

// Validate implements llm.Validator.
func (l entityList) Validate() error {
	if l.Entities == nil {
		return errors.New("entities missing")
	}
	return nil
}

const entitySchema = `{"entities": [{"text": "exact text as it appears in the article", "label": "ORG | GPE | LOC | PERSON | EVENT"}]}`

const biasSchema = `{"label": "left | center-left | neutral | center-right | right", "confidence": "number between 0 and 1"}`

var entityPromptTmpl = template.Must(template.New("entities").Parse(`List the named entities in the article below: organizations (ORG),
countries, cities and states (GPE), other locations (LOC), people (PERSON)
and named events (EVENT). Copy each entity exactly as written.

Article:
{{.}}`))

var biasPromptTmpl = template.Must(template.New("bias").Parse(`Assess the political bias of the article below. Use "neutral" when the
article does not favor a side.

Article:
{{.}}`))

// Verifier runs claim extraction, fact-check lookups and bias detection.
type Verifier struct {
	Model    llm.Model
	Timeout  time.Duration
	Checkers []FactChecker
	Log      zerolog.Logger
}

// Verify checks text at the given level. The content passes through
// unchanged. Entity extraction failure, or every lookup failing, yields a
// degraded result; no error propagates.
func (v *Verifier) Verify(ctx context.Context, text string, level types.FactCheckLevel, base types.Metadata) types.StageResult[Verified] {
	out := Verified{
		Content: text,
		Verification: Verification{
			Claims:           []string{},
			FactCheckResults: map[string]map[string]Response{},
			Unchecked:        []string{},
			BiasAnalysis:     Bias{Label: "neutral"},
			Level:            level,
		},
	}

	claims, err := v.extractClaims(ctx, text, level.ClaimLimit())
	if err != nil {
		v.Log.Warn().Err(err).Msg("claim extraction failed")
		return types.Degraded(types.StageVerified, out, "claim extraction failed: "+err.Error(), base, metadataFor(out.Verification))
	}
	out.Verification.Claims = claims

	failed := v.checkClaims(ctx, &out.Verification)
	out.Verification.BiasAnalysis = v.detectBias(ctx, text)

	add := metadataFor(out.Verification)
	if len(claims) > 0 && len(v.Checkers) > 0 && failed == len(claims)*len(v.Checkers) {
		return types.Degraded(types.StageVerified, out, "no fact-check backend answered", base, add)
	}
	return types.Succeeded(types.StageVerified, out, base, add)
}

// extractClaims asks the model for named entities and keeps those with a
// claim label whose text occurs verbatim in the article, deduplicated and
// ordered by first occurrence. limit 0 means unlimited.
func (v *Verifier) extractClaims(ctx context.Context, text string, limit int) ([]string, error) {
	var buf bytes.Buffer
	if err := entityPromptTmpl.Execute(&buf, clip(text)); err != nil {
		return nil, err
	}
	var list entityList
	if err := llm.Structured(ctx, v.Model, v.Timeout, buf.String(), entitySchema, &list); err != nil {
		return nil, err
	}
	return filterClaims(text, list.Entities, limit), nil
}

func filterClaims(text string, entities []entity, limit int) []string {
	type located struct {
		text string
		pos  int
	}
	seen := make(map[string]bool)
	var found []located
	for _, e := range entities {
		t := strings.TrimSpace(e.Text)
		if t == "" || seen[t] || !claimLabels[strings.ToUpper(strings.TrimSpace(e.Label))] {
			continue
		}
		pos := strings.Index(text, t)
		if pos < 0 {
			continue
		}
		seen[t] = true
		found = append(found, located{t, pos})
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	claims := make([]string, 0, len(found))
	for _, f := range found {
		claims = append(claims, f.text)
	}
	if limit > 0 && len(claims) > limit {
		claims = claims[:limit]
	}
	return claims
}

// checkClaims queries every backend for every claim and returns the number of
// failed lookups.
func (v *Verifier) checkClaims(ctx context.Context, ver *Verification) int {
	failed := 0
	for _, claim := range ver.Claims {
		answers := map[string]Response{}
		for _, fc := range v.Checkers {
			if ctx.Err() != nil {
				failed++
				continue
			}
			resp, err := fc.Check(ctx, claim)
			if err != nil {
				failed++
				v.Log.Warn().Err(err).Str("backend", fc.Name()).Str("claim", claim).Msg("fact-check lookup failed")
				continue
			}
			if resp.Reviews == nil {
				resp.Reviews = []Review{}
			}
			answers[fc.Name()] = resp
		}
		if len(answers) == 0 {
			ver.Unchecked = append(ver.Unchecked, claim)
			continue
		}
		ver.FactCheckResults[claim] = answers
	}
	return failed
}

func (v *Verifier) detectBias(ctx context.Context, text string) Bias {
	def := Bias{Label: "neutral"}
	var buf bytes.Buffer
	if err := biasPromptTmpl.Execute(&buf, clip(text)); err != nil {
		return def
	}
	b := def
	if err := llm.Structured(ctx, v.Model, v.Timeout, buf.String(), biasSchema, &b); err != nil {
		v.Log.Warn().Err(err).Msg("bias detection failed, assuming neutral")
		return def
	}
	b.Label = strings.ToLower(strings.TrimSpace(b.Label))
	return b
}

func metadataFor(v Verification) types.Metadata {
	return types.Metadata{
		"claims_found":       len(v.Claims),
		"claims_checked":     v.Checked(),
		"claims_unchecked":   len(v.Unchecked),
		"bias":               v.BiasAnalysis.Label,
		"verification_level": string(v.Level),
	}
}

func clip(text string) string {
	if len(text) <= maxTextChars {
		return text
	}
	cut := strings.LastIndexAny(text[:maxTextChars], "\n ")
	if cut <= 0 {
		cut = maxTextChars
	}
	return text[:cut]
}
