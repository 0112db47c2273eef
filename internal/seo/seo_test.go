// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package seo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-engine/internal/llm"
	"github.com/pdiddy/content-engine/internal/llm/llmtest"
)

func TestAdviseUsesModelPlan(t *testing.T) {
	longDesc := strings.Repeat("Solar energy is growing fast across the world. ", 6)
	resp := `{"primary_keyword":"solar energy",
		"secondary_keywords":["photovoltaics","grid storage","Photovoltaics","net metering","solar panels","inverters","batteries"],
		"long_tail_keywords":["how do solar panels work"],
		"meta_title":"Solar Energy in 2024: Costs, Capacity and What Comes Next for Homes",
		"meta_description":"` + longDesc + `",
		"headings":["Introduction","How Solar Works","Conclusion"]}`
	model := &llmtest.Model{Default: &llmtest.Rule{Response: resp}}
	a := &Advisor{Model: model, Log: zerolog.Nop()}

	plan, err := a.Advise(context.Background(), "solar energy", "According to the IEA...")
	require.NoError(t, err)

	assert.Equal(t, "solar energy", plan.PrimaryKeyword)
	assert.Equal(t, []string{"photovoltaics", "grid storage", "net metering", "solar panels", "inverters"}, plan.SecondaryKeywords)
	assert.LessOrEqual(t, utf8.RuneCountInString(plan.MetaTitle), MaxTitleLen)
	assert.LessOrEqual(t, utf8.RuneCountInString(plan.MetaDescription), MaxDescriptionLen)
	assert.True(t, strings.HasPrefix(plan.MetaTitle, "Solar Energy in 2024"))
	assert.Contains(t, model.Prompts()[0], "According to the IEA")
}

func TestAdviseFallsBackToDefault(t *testing.T) {
	tests := map[string]*llmtest.Model{
		"prose answer":   {Default: &llmtest.Rule{Response: "Primary keyword: solar"}},
		"missing fields": {Default: &llmtest.Rule{Response: `{"secondary_keywords":["x"]}`}},
		"model down":     llmtest.Failing(llmtest.ErrUnscripted),
	}
	for name, model := range tests {
		t.Run(name, func(t *testing.T) {
			a := &Advisor{Model: model, Log: zerolog.Nop()}
			plan, err := a.Advise(context.Background(), "Solar Energy", "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, llm.ErrInvalidSchema) || errors.Is(err, llm.ErrNoContent))
			assert.Equal(t, DefaultPlan("Solar Energy"), plan)
		})
	}
}

func TestDefaultPlan(t *testing.T) {
	p := DefaultPlan("renewable energy storage")
	assert.NoError(t, p.Validate())
	assert.Equal(t, "renewable energy storage", p.PrimaryKeyword)
	assert.Equal(t, []string{"renewable", "energy", "storage"}, p.SecondaryKeywords)
	assert.Equal(t, "Renewable Energy Storage: A Complete Guide", p.MetaTitle)
	assert.Contains(t, p.Headings, "What Is Renewable Energy Storage")
	assert.LessOrEqual(t, utf8.RuneCountInString(p.MetaDescription), MaxDescriptionLen)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 60))
	assert.Equal(t, "The quick brown", Truncate("The quick brown fox jumps", 18))
	assert.Equal(t, "abcdefghij", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "héllo", Truncate("héllo wörld", 7))
}

func TestAnalyzeMetrics(t *testing.T) {
	content := "# Solar Energy\n\nSolar energy is cheap. Many homes use solar energy now.\n\n## Costs\n\nPrices fell."
	m := AnalyzeMetrics(content, "Solar Energy")

	assert.Equal(t, 15, m.WordCount)
	assert.Equal(t, 2, m.HeaderCount)
	assert.InDelta(t, 3.0/15.0, m.KeywordDensity, 1e-9)
	assert.NotZero(t, m.ReadabilityScore)

	empty := AnalyzeMetrics("", "solar")
	assert.Zero(t, empty.KeywordDensity)
	assert.Zero(t, empty.ReadabilityScore)
}
