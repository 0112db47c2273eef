// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-engine/internal/llm/llmtest"
	"github.com/pdiddy/content-engine/pkg/types"
)

const article = `# Solar Power

Solar panels turn sunlight into electricity for homes and businesses. ` +
	`Prices fell sharply over the last decade. ` +
	`Installers report wonderful demand from happy customers everywhere. ` +
	`Grid operators fear terrible congestion during sunny afternoons. ` +
	`Storage helps. ` +
	`Batteries shift midday output into the evening peak hours.`

const quizJSON = `{"questions":[
	{"question":"What do panels convert?","options":["Wind","Sunlight","Heat","Water"],"correct_answer":1},
	{"question":"What fell?","options":["Prices","Demand","Output","Jobs"],"correct_answer":0},
	{"question":"What shifts output?","options":["Panels","Meters","Batteries","Wires"],"correct_answer":2},
	{"question":"Extra?","options":["a","b","c","d"],"correct_answer":3}
]}`

// keywordPolarizer scores a sentence by the strongest keyword it contains.
type keywordPolarizer map[string]float64

func (k keywordPolarizer) Polarity(s string) float64 {
	best := 0.0
	for word, score := range k {
		if strings.Contains(strings.ToLower(s), word) && abs(score) > abs(best) {
			best = score
		}
	}
	return best
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func polarizer() keywordPolarizer {
	return keywordPolarizer{"wonderful": 0.9, "terrible": -0.8, "fell": -0.4, "electricity": 0.1}
}

func happyModel(rewrite string) *llmtest.Model {
	return &llmtest.Model{Rules: []llmtest.Rule{
		{Match: "Rate the subjectivity", Response: `{"subjectivity":0.3,"emotions":{"Joy":0.7,"fear":1.4}}`},
		{Match: "Rewrite the following article in a", Response: rewrite},
		{Match: "Adjust the following article", Response: rewrite},
		{Match: "Write one short analogy", Response: "Panels are like leaves."},
		{Match: "brief, concrete case study", Response: "A town in Spain cut bills in half."},
		{Match: "quiz questions", Response: quizJSON},
		{Match: "Summarize the following article", Response: "Solar is cheap and growing."},
		{Match: "Write a TL;DR", Response: "Solar keeps getting cheaper."},
	}}
}

func TestEnhanceFullPipeline(t *testing.T) {
	e := &Enhancer{Model: happyModel(article), Sentiment: polarizer(), Log: zerolog.Nop()}
	base := types.Metadata{"topic": "solar"}

	res := e.Enhance(context.Background(), article, Style{Tone: "formal", Complexity: "basic", TargetAudience: "general"}, base)
	require.Equal(t, types.StatusSuccess, res.Status, res.Reason)
	assert.Equal(t, types.StageEnhanced, res.Stage)
	assert.Equal(t, "solar", res.Metadata["topic"])
	assert.Equal(t, "formal", res.Metadata["tone"])

	out := res.Content
	assert.Equal(t, article, out.Content)

	a := out.Analysis
	assert.Equal(t, 0.3, a.Subjectivity)
	assert.Equal(t, map[string]float64{"joy": 0.7, "fear": 1.0}, a.Emotions)
	assert.Equal(t, 6, a.SentenceCount)
	assert.Greater(t, a.WordCount, 40)
	assert.NotZero(t, a.ReadabilityScore)
	assert.InDelta(t, (0.1-0.4+0.9-0.8)/6, a.Sentiment, 0.001)

	in := out.Interactive
	require.Len(t, in.Quiz, 3)
	assert.Equal(t, 1, in.Quiz[0].CorrectAnswer)
	assert.Equal(t, "Solar is cheap and growing.", in.Summary)
	assert.Equal(t, "Solar keeps getting cheaper.", in.TLDR)
	// "Storage helps." is too short to be a key point.
	assert.Equal(t, []string{
		"Solar panels turn sunlight into electricity for homes and businesses.",
		"Prices fell sharply over the last decade.",
		"Installers report wonderful demand from happy customers everywhere.",
		"Grid operators fear terrible congestion during sunny afternoons.",
		"Batteries shift midday output into the evening peak hours.",
	}, in.KeyPoints)

	el := in.Elements()
	assert.Contains(t, el, "quiz")
	assert.Contains(t, el, "tldr")
}

func TestEnhanceStorytellingAppendsSections(t *testing.T) {
	m := happyModel(article)
	e := &Enhancer{Model: m, Sentiment: polarizer(), Log: zerolog.Nop()}

	res := e.Enhance(context.Background(), article, Style{Tone: "storytelling"}, nil)
	require.Equal(t, types.StatusSuccess, res.Status, res.Reason)
	assert.True(t, strings.HasPrefix(res.Content.Content, article))
	assert.Contains(t, res.Content.Content, "## Analogy\n\nPanels are like leaves.")
	assert.Contains(t, res.Content.Content, "## Case Study\n\nA town in Spain cut bills in half.")
	assert.Equal(t, 0, m.Calls("Adjust the following article"), "empty complexity skips the adjustment")
}

func TestEnhanceRejectsTruncatedRewrite(t *testing.T) {
	e := &Enhancer{Model: happyModel("Solar is good."), Sentiment: polarizer(), Log: zerolog.Nop()}

	res := e.Enhance(context.Background(), article, Style{Tone: "formal", Complexity: "basic"}, nil)
	assert.Equal(t, types.StatusDegraded, res.Status)
	assert.Contains(t, res.Reason, "tone")
	assert.Contains(t, res.Reason, "complexity")
	assert.Equal(t, article, res.Content.Content)
}

func TestEnhanceModelDownFallsBack(t *testing.T) {
	e := &Enhancer{Model: llmtest.Failing(errors.New("down")), Sentiment: polarizer(), Log: zerolog.Nop()}

	res := e.Enhance(context.Background(), article, Style{Tone: "storytelling", Complexity: "basic"}, types.Metadata{"topic": "solar"})
	assert.Equal(t, types.StatusDegraded, res.Status)
	assert.Equal(t, article, res.Content.Content)
	assert.Equal(t, "solar", res.Metadata["topic"])

	out := res.Content
	assert.Empty(t, out.Interactive.Quiz)
	assert.NotNil(t, out.Interactive.Quiz)
	assert.Empty(t, out.Interactive.Summary)
	assert.Empty(t, out.Interactive.TLDR)
	assert.Len(t, out.Interactive.KeyPoints, 5)
	assert.Zero(t, out.Analysis.Subjectivity)
	assert.Empty(t, out.Analysis.Emotions)
	assert.Equal(t, 6, out.Analysis.SentenceCount)
	for _, step := range []string{"analysis", "tone", "storytelling", "complexity", "quiz", "summary", "tldr"} {
		assert.Contains(t, res.Reason, step)
	}
}

func TestQuizRejectsBadShape(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"no questions", `{"questions":[]}`},
		{"three options", `{"questions":[{"question":"q","options":["a","b","c"],"correct_answer":0}]}`},
		{"answer out of range", `{"questions":[{"question":"q","options":["a","b","c","d"],"correct_answer":4}]}`},
		{"extra field", `{"questions":[],"hint":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Enhancer{Model: &llmtest.Model{Default: &llmtest.Rule{Response: tt.json}}, Log: zerolog.Nop()}
			quiz, err := e.quiz(context.Background(), article)
			assert.Error(t, err)
			assert.Empty(t, quiz)
		})
	}
}

func TestStyleFor(t *testing.T) {
	assert.Equal(t, Style{Tone: "formal", Complexity: "advanced", TargetAudience: "experts", ContentType: "article"},
		StyleFor(types.Preferences{Tone: "formal", TargetAudience: "experts"}))
	assert.Equal(t, "basic", StyleFor(types.Preferences{TargetAudience: "Beginners"}).Complexity)
	assert.Equal(t, "intermediate", StyleFor(types.Preferences{TargetAudience: "general"}).Complexity)
}

func TestNaiveBayesPolarityInRange(t *testing.T) {
	var nb NaiveBayes
	for _, s := range []string{"I love this wonderful product.", "This is awful and I hate it.", ""} {
		p := nb.Polarity(s)
		assert.GreaterOrEqual(t, p, -1.0)
		assert.LessOrEqual(t, p, 1.0)
	}
	assert.NoError(t, nb.Err())
}
