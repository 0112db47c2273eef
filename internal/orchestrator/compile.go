// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrator

import (
	"maps"
	"math"
	"reflect"

	"github.com/pdiddy/content-engine/internal/engage"
	"github.com/pdiddy/content-engine/internal/textstat"
	"github.com/pdiddy/content-engine/internal/visual"
	"github.com/pdiddy/content-engine/pkg/types"
)

// WordsPerMinute is the reading speed behind Stats.ReadingTime.
const WordsPerMinute = 200

// Compile merges the enhanced article, its visuals and its sources into an
// envelope. It is pure and leaves its inputs unmodified, so equal inputs
// encode to identical JSON. Stats are left zero for Stats to fill.
func Compile(title string, enhanced engage.Enhanced, visuals visual.Visuals, sources []types.Source, meta types.Metadata) types.ContentEnvelope {
	elements := make(map[string]any)
	maps.Copy(elements, enhanced.Interactive.Elements())
	for k, v := range visuals.Interactive {
		elements[k] = v
	}

	all := visuals.All()
	srcs := make([]types.Source, len(sources))
	copy(srcs, sources)

	md := meta.Clone()
	md["generated_visuals"] = len(all)

	return types.ContentEnvelope{
		Title:               title,
		Content:             enhanced.Content,
		Visuals:             all,
		InteractiveElements: elements,
		Sources:             srcs,
		Metadata:            md,
	}
}

// Stats derives the envelope statistics from the compiled body and the
// scorer. Reading time is whole minutes at WordsPerMinute.
func Stats(env types.ContentEnvelope, scorer Scorer) types.Stats {
	words := textstat.WordCount(env.Content)
	credibility, engagement := scorer.Score(SignalsOf(env))
	return types.Stats{
		WordCount:        words,
		ReadingTime:      words / WordsPerMinute,
		CredibilityScore: credibility,
		EngagementScore:  engagement,
	}
}

// Signals are the envelope properties a Scorer may weigh.
type Signals struct {
	WordCount     int
	Readability   float64
	Sources       int
	Visuals       int
	Interactive   int
	ClaimsFound   int
	ClaimsChecked int
}

// SignalsOf reads Signals from a compiled envelope. Interactive counts only
// non-empty elements; claim counts come from the envelope metadata.
func SignalsOf(env types.ContentEnvelope) Signals {
	s := Signals{
		WordCount:     textstat.WordCount(env.Content),
		Readability:   textstat.FleschReadingEase(env.Content),
		Sources:       len(env.Sources),
		Visuals:       len(env.Visuals),
		ClaimsFound:   intValue(env.Metadata["claims_found"]),
		ClaimsChecked: intValue(env.Metadata["claims_checked"]),
	}
	for _, v := range env.InteractiveElements {
		if !isEmpty(v) {
			s.Interactive++
		}
	}
	return s
}

// Scorer rates an article's credibility and engagement on a 0 to 10 scale.
type Scorer interface {
	Score(s Signals) (credibility, engagement float64)
}

// FixedScorer returns constant scores.
type FixedScorer struct {
	Credibility float64
	Engagement  float64
}

// Score implements Scorer.
func (f FixedScorer) Score(Signals) (float64, float64) {
	return f.Credibility, f.Engagement
}

// DefaultScorer is used when an Engine has no Scorer.
var DefaultScorer Scorer = FixedScorer{Credibility: 8.5, Engagement: 9.0}

// SignalScorer derives scores from the article itself.
//
// Credibility weighs fact-check coverage (0.6) and source count (0.4, full
// at five sources); with no claims, coverage counts as one half.
// Engagement weighs readability (0.4, Flesch score over 100), interactive
// elements (0.3, full at four) and visuals (0.3, full at four).
type SignalScorer struct{}

// Score implements Scorer.
func (SignalScorer) Score(s Signals) (float64, float64) {
	coverage := 0.5
	if s.ClaimsFound > 0 {
		coverage = float64(s.ClaimsChecked) / float64(s.ClaimsFound)
	}
	credibility := 10 * (0.6*unit(coverage) + 0.4*ratio(s.Sources, 5))
	engagement := 10 * (0.4*unit(s.Readability/100) + 0.3*ratio(s.Interactive, 4) + 0.3*ratio(s.Visuals, 4))
	return round2(credibility), round2(engagement)
}

// NewScorer returns the scorer for mode. Unknown modes get DefaultScorer.
func NewScorer(mode types.ScoringMode) Scorer {
	if mode == types.ScoringSignal {
		return SignalScorer{}
	}
	return DefaultScorer
}

func ratio(n, full int) float64 {
	return unit(float64(n) / float64(full))
}

func unit(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	}
	return false
}
