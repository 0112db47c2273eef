// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Source is a web or news result the article draws on.
type Source struct {
	// Title is the result headline.
	Title string `json:"title" yaml:"title"`

	// URL links to the original page.
	URL string `json:"url" yaml:"url"`

	// Snippet is the short excerpt returned by the search backend.
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`

	// Origin names the backend that found the result (e.g. "duckduckgo", "newsapi").
	Origin string `json:"origin" yaml:"origin"`
}

// VisualKind classifies a Visual record.
type VisualKind string

const (
	VisualChart        VisualKind = "chart"
	VisualDiagram      VisualKind = "diagram"
	VisualIllustration VisualKind = "illustration"
	VisualInfographic  VisualKind = "infographic"
)

// Visual is one chart, diagram, illustration or infographic attached to the article.
type Visual struct {
	Kind VisualKind `json:"kind" yaml:"kind"`

	// Type is the concrete rendering (bar, line, concept_map, statistics, caption).
	Type string `json:"type" yaml:"type"`

	Title string `json:"title" yaml:"title"`

	// SVG holds the rendered markup; empty for caption-only illustrations.
	SVG string `json:"svg,omitempty" yaml:"svg,omitempty"`

	// Caption describes the visual in one sentence.
	Caption string `json:"caption,omitempty" yaml:"caption,omitempty"`

	// Concept is the idea an illustration depicts.
	Concept string `json:"concept,omitempty" yaml:"concept,omitempty"`
}

// Stats summarizes the compiled article.
type Stats struct {
	WordCount        int     `json:"word_count" yaml:"word_count"`
	ReadingTime      int     `json:"reading_time" yaml:"reading_time"`
	CredibilityScore float64 `json:"credibility_score" yaml:"credibility_score"`
	EngagementScore  float64 `json:"engagement_score" yaml:"engagement_score"`
}

// ContentEnvelope is the orchestrator's final output, handed to delivery adapters.
type ContentEnvelope struct {
	Title               string         `json:"title" yaml:"title"`
	Content             string         `json:"content" yaml:"content"`
	Visuals             []Visual       `json:"visuals" yaml:"visuals"`
	InteractiveElements map[string]any `json:"interactive_elements" yaml:"interactive_elements"`
	Sources             []Source       `json:"sources" yaml:"sources"`
	Stats               Stats          `json:"stats" yaml:"stats"`
	Metadata            Metadata       `json:"metadata" yaml:"metadata"`
}
