// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-engine/internal/llm"
	"github.com/pdiddy/content-engine/internal/llm/llmtest"
	"github.com/pdiddy/content-engine/internal/research"
	"github.com/pdiddy/content-engine/internal/seo"
	"github.com/pdiddy/content-engine/pkg/types"
)

var testResults = []types.Source{
	{Title: "IEA report", URL: "https://iea.org/solar", Origin: "duckduckgo"},
	{Title: "NREL study", URL: "https://nrel.gov/pv", Origin: "duckduckgo"},
	{Title: "Reuters", URL: "https://reuters.com/solar", Origin: "newsapi"},
}

const draftBody = "# Solar Power Today\n\nSolar capacity grew 40% in 2023 [3]. Costs keep falling [1; 3].\n\n## Conclusion\n\nThe outlook is bright."

func testResearch() research.Research {
	return research.Research{Info: "According to the IEA, solar grew.", Results: testResults}
}

func TestDraftBuildsArticle(t *testing.T) {
	model := &llmtest.Model{Default: &llmtest.Rule{Response: draftBody}}
	w := &Writer{Model: model, Log: zerolog.Nop()}
	plan := seo.Plan{PrimaryKeyword: "solar power", MetaTitle: "Solar Power in 2024", Headings: []string{"Why Solar Matters"}}

	a, err := w.Draft(context.Background(), "solar power", testResearch(), plan, types.DefaultPreferences())
	require.NoError(t, err)

	assert.Equal(t, "Solar Power in 2024", a.Title)
	assert.Equal(t, draftBody, a.Body)
	assert.False(t, a.Improved)
	require.Len(t, a.Sources, 2)
	assert.Equal(t, "Reuters", a.Sources[0].Title)
	assert.Equal(t, "IEA report", a.Sources[1].Title)

	prompt := model.Prompts()[0]
	assert.Contains(t, prompt, "## Why Solar Matters")
	assert.Contains(t, prompt, "[2] NREL study (https://nrel.gov/pv)")
	assert.Contains(t, prompt, "Tone: professional")
}

func TestDraftGenerationFailed(t *testing.T) {
	tests := map[string]*llmtest.Model{
		"error": llmtest.Failing(llmtest.ErrUnscripted),
		"empty": {Default: &llmtest.Rule{Response: "   "}},
	}
	for name, model := range tests {
		t.Run(name, func(t *testing.T) {
			w := &Writer{Model: model, Log: zerolog.Nop()}
			_, err := w.Draft(context.Background(), "solar", testResearch(), seo.DefaultPlan("solar"), types.DefaultPreferences())
			assert.ErrorIs(t, err, ErrGenerationFailed)
			assert.ErrorIs(t, err, llm.ErrNoContent)
		})
	}
}

func TestDraftImprover(t *testing.T) {
	improved := strings.Replace(draftBody, "keep falling", "continue to fall", 1)
	tests := []struct {
		name     string
		improver *llmtest.Model
		wantBody string
		wantImp  bool
	}{
		{"accepted", &llmtest.Model{Default: &llmtest.Rule{Response: improved}}, improved, true},
		{"fails", llmtest.Failing(llmtest.ErrUnscripted), draftBody, false},
		{"too short", &llmtest.Model{Default: &llmtest.Rule{Response: "Solar."}}, draftBody, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Writer{
				Model:    &llmtest.Model{Default: &llmtest.Rule{Response: draftBody}},
				Improver: tt.improver,
				Log:      zerolog.Nop(),
			}
			a, err := w.Draft(context.Background(), "solar", testResearch(), seo.Plan{}, types.DefaultPreferences())
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, a.Body)
			assert.Equal(t, tt.wantImp, a.Improved)
			assert.Equal(t, "Solar Power Today", a.Title, "falls back to the first heading")
		})
	}
}

func TestChooseTitle(t *testing.T) {
	assert.Equal(t, "SEO", ChooseTitle(" SEO ", "# Heading", "topic"))
	assert.Equal(t, "Heading", ChooseTitle("", "intro\n# Heading #\nbody", "topic"))
	assert.Equal(t, "topic", ChooseTitle("", "## Only a subheading", " topic "))
}

func TestCitedSources(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"first-cited order", "A [2]. B [1, 2]. C [2].", []string{"NREL study", "IEA report"}},
		{"out of range ignored", "A [9]. B [3].", []string{"Reuters"}},
		{"links are not citations", "See [the report](https://x) and [note].", []string{"IEA report", "NREL study", "Reuters"}},
		{"mixed group rejected", "A [1; see 2].", []string{"IEA report", "NREL study", "Reuters"}},
		{"nothing cited", "No citations.", []string{"IEA report", "NREL study", "Reuters"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var titles []string
			for _, s := range CitedSources(tt.body, testResults) {
				titles = append(titles, s.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}

	assert.Empty(t, CitedSources("[1]", nil))
}
