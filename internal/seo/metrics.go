// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package seo

import (
	"regexp"
	"strings"

	"github.com/pdiddy/content-engine/internal/textstat"
)

var headerPattern = regexp.MustCompile(`(?m)^#{1,6}\s`)

// Metrics measures a finished text against a keyword.
type Metrics struct {
	WordCount        int     `json:"word_count" yaml:"word_count"`
	KeywordDensity   float64 `json:"keyword_density" yaml:"keyword_density"`
	ReadabilityScore float64 `json:"readability_score" yaml:"readability_score"`
	HeaderCount      int     `json:"header_count" yaml:"header_count"`
}

// AnalyzeMetrics counts words, Markdown headers and whole-phrase keyword
// occurrences (case-insensitive). Density is occurrences over words and is 0
// for an empty text or keyword.
func AnalyzeMetrics(content, keyword string) Metrics {
	m := Metrics{
		WordCount:        textstat.WordCount(content),
		ReadabilityScore: textstat.FleschReadingEase(content),
		HeaderCount:      len(headerPattern.FindAllStringIndex(content, -1)),
	}
	keyword = strings.TrimSpace(keyword)
	if m.WordCount == 0 || keyword == "" {
		return m
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	m.KeywordDensity = float64(len(re.FindAllStringIndex(content, -1))) / float64(m.WordCount)
	return m
}
