// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engage analyzes an article's tone and readability, rewrites it for
// the requested style and builds reader-facing extras: a quiz, a summary, key
// points and a TL;DR. Every step is best-effort and falls back to its input.
package engage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/content-engine/internal/llm"
	"github.com/pdiddy/content-engine/internal/textstat"
	"github.com/pdiddy/content-engine/pkg/types"
)

const (
	quizQuestions = 3
	quizOptions   = 4
	maxKeyPoints  = 5
	minPointWords = 5
)

// Style controls the rewrite.
type Style struct {
	// Tone is formal, conversational, professional or storytelling.
	Tone string `json:"tone" yaml:"tone"`

	// Complexity is basic, intermediate or advanced.
	Complexity string `json:"complexity" yaml:"complexity"`

	TargetAudience string `json:"target_audience" yaml:"target_audience"`
	ContentType    string `json:"content_type" yaml:"content_type"`
}

// StyleFor derives the rewrite style from request preferences.
func StyleFor(p types.Preferences) Style {
	complexity := "intermediate"
	switch strings.ToLower(p.TargetAudience) {
	case "beginner", "beginners", "children", "students":
		complexity = "basic"
	case "technical", "expert", "experts", "academic":
		complexity = "advanced"
	}
	return Style{Tone: p.Tone, Complexity: complexity, TargetAudience: p.TargetAudience, ContentType: "article"}
}

// Analysis describes the text before enhancement.
type Analysis struct {
	Sentiment        float64            `json:"sentiment" yaml:"sentiment"`
	Subjectivity     float64            `json:"subjectivity" yaml:"subjectivity"`
	Emotions         map[string]float64 `json:"emotion_analysis" yaml:"emotion_analysis"`
	ReadabilityScore float64            `json:"readability_score" yaml:"readability_score"`
	WordCount        int                `json:"word_count" yaml:"word_count"`
	SentenceCount    int                `json:"sentence_count" yaml:"sentence_count"`
}

// QuizQuestion is a multiple-choice question; CorrectAnswer indexes Options.
type QuizQuestion struct {
	Question      string   `json:"question" yaml:"question"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer int      `json:"correct_answer" yaml:"correct_answer"`
}

// Interactive holds the reader-facing extras.
type Interactive struct {
	Quiz      []QuizQuestion `json:"quiz" yaml:"quiz"`
	Summary   string         `json:"summary" yaml:"summary"`
	KeyPoints []string       `json:"key_points" yaml:"key_points"`
	TLDR      string         `json:"tldr" yaml:"tldr"`
}

// Elements returns the extras keyed the way the envelope exposes them.
func (i Interactive) Elements() map[string]any {
	return map[string]any{
		"quiz":       i.Quiz,
		"summary":    i.Summary,
		"key_points": i.KeyPoints,
		"tldr":       i.TLDR,
	}
}

// Enhanced is the output of the engagement stage.
type Enhanced struct {
	Content     string      `json:"content" yaml:"content"`
	Interactive Interactive `json:"interactive" yaml:"interactive"`
	Analysis    Analysis    `json:"analysis" yaml:"analysis"`
}

// Enhancer runs analysis, rewriting and extras generation.
type Enhancer struct {
	Model     llm.Model
	Timeout   time.Duration
	Sentiment Polarizer
	Log       zerolog.Logger
}

// Enhance never fails. Each step that falls back is named in the result's
// Reason and makes the status degraded.
func (e *Enhancer) Enhance(ctx context.Context, text string, style Style, base types.Metadata) types.StageResult[Enhanced] {
	var failed []string
	note := func(step string, err error) {
		if err != nil {
			failed = append(failed, step)
			e.Log.Warn().Err(err).Str("step", step).Msg("enhancement step fell back")
		}
	}

	analysis, err := e.analyze(ctx, text)
	note("analysis", err)

	content := text
	if style.Tone != "" {
		content, err = e.rewrite(ctx, tonePromptTmpl, content, style)
		note("tone", err)
	}
	if strings.EqualFold(style.Tone, "storytelling") {
		content, err = e.storytelling(ctx, content)
		note("storytelling", err)
	}
	if style.Complexity != "" {
		content, err = e.rewrite(ctx, complexityPromptTmpl, content, style)
		note("complexity", err)
	}

	var inter Interactive
	inter.Quiz, err = e.quiz(ctx, content)
	note("quiz", err)
	inter.Summary, err = e.generate(ctx, summaryPromptTmpl, content)
	note("summary", err)
	inter.KeyPoints = e.keyPoints(content)
	inter.TLDR, err = e.generate(ctx, tldrPromptTmpl, content)
	note("tldr", err)

	out := Enhanced{Content: content, Interactive: inter, Analysis: analysis}
	add := types.Metadata{
		"tone":        style.Tone,
		"complexity":  style.Complexity,
		"sentiment":   analysis.Sentiment,
		"readability": analysis.ReadabilityScore,
	}
	if len(failed) > 0 {
		return types.Degraded(types.StageEnhanced, out, "fell back: "+strings.Join(failed, ", "), base, add)
	}
	return types.Succeeded(types.StageEnhanced, out, base, add)
}

var (
	tonePromptTmpl = template.Must(template.New("tone").Parse(`Rewrite the following article in a {{.Style.Tone}} tone for a {{.Style.TargetAudience}} audience.
Keep the Markdown headings, the facts and every [n] citation. Return only the article.

{{.Text}}`))

	complexityPromptTmpl = template.Must(template.New("complexity").Parse(`Adjust the following article for a {{.Style.TargetAudience}} audience at {{.Style.Complexity}} complexity level.
Keep the Markdown headings, the facts and every [n] citation. Return only the article.

{{.Text}}`))

	analogyPromptTmpl = template.Must(template.New("analogy").Parse(`Write one short analogy, a single paragraph, that explains the main idea of this article:

{{.Text}}`))

	caseStudyPromptTmpl = template.Must(template.New("case_study").Parse(`Write a brief, concrete case study, two or three paragraphs, that illustrates this article:

{{.Text}}`))

	summaryPromptTmpl = template.Must(template.New("summary").Parse(`Summarize the following article in 50 to 150 words. Return only the summary.

{{.Text}}`))

	tldrPromptTmpl = template.Must(template.New("tldr").Parse(`Write a TL;DR of the following article: one sentence, at most 30 words. Return only the sentence.

{{.Text}}`))

	quizPromptTmpl = template.Must(template.New("quiz").Parse(`Write 3 multiple-choice quiz questions that test understanding of this article.
Each question has exactly 4 options and correct_answer is the 0-based index of the right option.

{{.Text}}`))

	analysisPromptTmpl = template.Must(template.New("analysis").Parse(`Rate the subjectivity of this article from 0 (fully objective) to 1 (fully subjective)
and score the emotions it conveys (joy, trust, fear, surprise, sadness, anger), each from 0 to 1.

{{.Text}}`))
)

const quizSchema = `{"questions": [{"question": "string", "options": ["4 strings"], "correct_answer": "integer 0-3"}]}`

const analysisSchema = `{"subjectivity": "number 0-1", "emotions": {"<emotion>": "number 0-1"}}`

type quizResponse struct {
	Questions []QuizQuestion `json:"questions"`
}

// Validate implements llm.Validator.
func (q quizResponse) Validate() error {
	if len(q.Questions) == 0 {
		return errors.New("no questions")
	}
	for i, qq := range q.Questions {
		if strings.TrimSpace(qq.Question) == "" {
			return fmt.Errorf("question %d is empty", i)
		}
		if len(qq.Options) != quizOptions {
			return fmt.Errorf("question %d has %d options, want %d", i, len(qq.Options), quizOptions)
		}
		if qq.CorrectAnswer < 0 || qq.CorrectAnswer >= quizOptions {
			return fmt.Errorf("question %d answer index %d out of range", i, qq.CorrectAnswer)
		}
	}
	return nil
}

type toneResponse struct {
	Subjectivity float64            `json:"subjectivity"`
	Emotions     map[string]float64 `json:"emotions"`
}

// Validate implements llm.Validator.
func (t toneResponse) Validate() error {
	if t.Subjectivity < 0 || t.Subjectivity > 1 {
		return fmt.Errorf("subjectivity %v outside [0,1]", t.Subjectivity)
	}
	return nil
}

func (e *Enhancer) analyze(ctx context.Context, text string) (Analysis, error) {
	a := Analysis{
		Emotions:         map[string]float64{},
		ReadabilityScore: textstat.FleschReadingEase(text),
		WordCount:        textstat.WordCount(text),
	}
	sentences := textstat.Sentences(stripHeadings(text))
	a.SentenceCount = len(sentences)
	if len(sentences) > 0 {
		total := 0.0
		for _, s := range sentences {
			total += e.polarity(s)
		}
		a.Sentiment = round(total / float64(len(sentences)))
	}

	prompt, err := render(analysisPromptTmpl, text, Style{})
	if err != nil {
		return a, err
	}
	var tone toneResponse
	if err := llm.Structured(ctx, e.Model, e.Timeout, prompt, analysisSchema, &tone); err != nil {
		return a, err
	}
	a.Subjectivity = tone.Subjectivity
	for k, v := range tone.Emotions {
		a.Emotions[strings.ToLower(k)] = math.Max(0, math.Min(1, v))
	}
	return a, nil
}

// rewrite returns the model's rewrite of text, or text itself when the call
// fails or the rewrite drops more than half the words.
func (e *Enhancer) rewrite(ctx context.Context, tmpl *template.Template, text string, style Style) (string, error) {
	prompt, err := render(tmpl, text, style)
	if err != nil {
		return text, err
	}
	out, err := llm.Call(ctx, e.Model, e.Timeout, prompt)
	if err != nil {
		return text, err
	}
	out = llm.StripFences(out)
	if textstat.WordCount(out)*2 < textstat.WordCount(text) {
		return text, fmt.Errorf("%s rewrite kept %d of %d words", tmpl.Name(), textstat.WordCount(out), textstat.WordCount(text))
	}
	return out, nil
}

func (e *Enhancer) storytelling(ctx context.Context, text string) (string, error) {
	analogy, aErr := e.generate(ctx, analogyPromptTmpl, text)
	caseStudy, cErr := e.generate(ctx, caseStudyPromptTmpl, text)

	out := text
	if analogy != "" {
		out += "\n\n## Analogy\n\n" + analogy
	}
	if caseStudy != "" {
		out += "\n\n## Case Study\n\n" + caseStudy
	}
	return out, errors.Join(aErr, cErr)
}

func (e *Enhancer) generate(ctx context.Context, tmpl *template.Template, text string) (string, error) {
	prompt, err := render(tmpl, text, Style{})
	if err != nil {
		return "", err
	}
	out, err := llm.Call(ctx, e.Model, e.Timeout, prompt)
	if err != nil {
		return "", err
	}
	return out, nil
}

func (e *Enhancer) quiz(ctx context.Context, text string) ([]QuizQuestion, error) {
	prompt, err := render(quizPromptTmpl, text, Style{})
	if err != nil {
		return []QuizQuestion{}, err
	}
	var resp quizResponse
	if err := llm.Structured(ctx, e.Model, e.Timeout, prompt, quizSchema, &resp); err != nil {
		return []QuizQuestion{}, err
	}
	if len(resp.Questions) > quizQuestions {
		resp.Questions = resp.Questions[:quizQuestions]
	}
	return resp.Questions, nil
}

// keyPoints picks up to five sentences with the strongest sentiment and
// returns them in document order. Headings and sentences under five words
// are not candidates.
func (e *Enhancer) keyPoints(text string) []string {
	type scored struct {
		idx      int
		sentence string
		strength float64
	}
	var cands []scored
	for i, s := range textstat.Sentences(stripHeadings(text)) {
		if textstat.WordCount(s) < minPointWords {
			continue
		}
		cands = append(cands, scored{i, s, math.Abs(e.polarity(s))})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].strength > cands[j].strength })
	if len(cands) > maxKeyPoints {
		cands = cands[:maxKeyPoints]
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].idx < cands[j].idx })

	points := make([]string, 0, len(cands))
	for _, c := range cands {
		points = append(points, c.sentence)
	}
	return points
}

func (e *Enhancer) polarity(s string) float64 {
	if e.Sentiment == nil {
		return 0
	}
	return math.Max(-1, math.Min(1, e.Sentiment.Polarity(s)))
}

var headingLine = regexp.MustCompile(`(?m)^#{1,6}\s.*$`)

func stripHeadings(text string) string {
	return headingLine.ReplaceAllString(text, "")
}

func render(tmpl *template.Template, text string, style Style) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct {
		Text  string
		Style Style
	}{text, style}); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func round(f float64) float64 {
	return math.Round(f*1000) / 1000
}
