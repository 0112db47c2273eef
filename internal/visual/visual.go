// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package visual turns an article into charts, a concept map, illustration
// captions, a statistics card and an HTML data explorer. Each visual type is
// produced independently: one failing type leaves the others intact.
package visual

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/content-engine/internal/llm"
	"github.com/pdiddy/content-engine/pkg/types"
)

const (
	maxConcepts      = 6
	maxIllustrations = 3
	maxStats         = 6
)

// Visuals groups the generated visuals by kind.
type Visuals struct {
	Charts        []types.Visual `json:"charts" yaml:"charts"`
	Diagrams      []types.Visual `json:"diagrams" yaml:"diagrams"`
	Illustrations []types.Visual `json:"illustrations" yaml:"illustrations"`
	Infographics  []types.Visual `json:"infographics" yaml:"infographics"`

	// Interactive holds HTML fragments keyed by element name.
	Interactive map[string]string `json:"interactive" yaml:"interactive"`
}

// All returns every visual ordered charts, diagrams, illustrations, infographics.
func (v Visuals) All() []types.Visual {
	out := make([]types.Visual, 0, len(v.Charts)+len(v.Diagrams)+len(v.Illustrations)+len(v.Infographics))
	out = append(out, v.Charts...)
	out = append(out, v.Diagrams...)
	out = append(out, v.Illustrations...)
	return append(out, v.Infographics...)
}

// Generator builds visuals for an article. Model writes illustration
// captions; without one, illustrations are left empty.
type Generator struct {
	Model   llm.Model
	Timeout time.Duration
	Log     zerolog.Logger
}

// Generate never fails. Each visual type that errors is named in the
// degraded result's Reason and comes back as an empty slice.
func (g *Generator) Generate(ctx context.Context, text string, base types.Metadata) types.StageResult[Visuals] {
	points := ExtractDataPoints(text)
	concepts := ExtractConcepts(text, maxConcepts)
	title := Title(text)
	if title == "" && len(concepts) > 0 {
		title = concepts[0]
	}

	out := Visuals{
		Charts:        []types.Visual{},
		Diagrams:      []types.Visual{},
		Illustrations: []types.Visual{},
		Infographics:  []types.Visual{},
		Interactive:   map[string]string{},
	}
	var failed []string
	warn := func(kind string, err error) bool {
		if err == nil {
			return false
		}
		failed = append(failed, kind)
		g.Log.Warn().Err(err).Str("visual", kind).Msg("visual generation failed")
		return true
	}

	if charts, err := Charts(points); !warn("charts", err) {
		out.Charts = append(out.Charts, charts...)
	}
	if d, ok, err := g.diagram(title, concepts); !warn("diagrams", err) && ok {
		out.Diagrams = append(out.Diagrams, d)
	}
	if ills, err := g.illustrations(ctx, title, concepts); !warn("illustrations", err) {
		out.Illustrations = append(out.Illustrations, ills...)
	}
	if info, ok, err := infographic(points); !warn("infographics", err) && ok {
		out.Infographics = append(out.Infographics, info)
	}
	if len(points) > 0 {
		table, err := DataTableHTML(points)
		if !warn("interactive", err) {
			out.Interactive["data_explorer"] = table
		}
	}

	add := types.Metadata{
		"data_points":       len(points),
		"generated_visuals": len(out.All()),
	}
	if len(failed) > 0 {
		return types.Degraded(types.StageVisuals, out, "failed: "+strings.Join(failed, ", "), base, add)
	}
	return types.Succeeded(types.StageVisuals, out, base, add)
}

func (g *Generator) diagram(title string, concepts []string) (types.Visual, bool, error) {
	if len(concepts) < 2 {
		return types.Visual{}, false, nil
	}
	center := title
	nodes := concepts
	if center == concepts[0] {
		nodes = concepts[1:]
	}
	svg, err := ConceptMapSVG(center, nodes)
	if err != nil {
		return types.Visual{}, false, err
	}
	return types.Visual{
		Kind:  types.VisualDiagram,
		Type:  "concept_map",
		Title: "Concept map: " + center,
		SVG:   svg,
	}, true, nil
}

// illustrations captions up to three concepts. A concept whose caption
// fails is skipped; the type fails only when every caption fails.
func (g *Generator) illustrations(ctx context.Context, title string, concepts []string) ([]types.Visual, error) {
	if g.Model == nil || len(concepts) == 0 {
		return nil, nil
	}
	if len(concepts) > maxIllustrations {
		concepts = concepts[:maxIllustrations]
	}
	var (
		out  []types.Visual
		errs []error
	)
	for _, c := range concepts {
		prompt := fmt.Sprintf("Write a one-sentence caption for an illustration of %q in an article titled %q. Return only the caption.", c, title)
		caption, err := llm.Call(ctx, g.Model, g.Timeout, prompt)
		if err != nil {
			errs = append(errs, fmt.Errorf("caption for %q: %w", c, err))
			continue
		}
		out = append(out, types.Visual{
			Kind:    types.VisualIllustration,
			Type:    "caption",
			Title:   c,
			Concept: c,
			Caption: strings.Trim(caption, "\"' \n"),
		})
	}
	if len(out) == 0 {
		return nil, errors.Join(errs...)
	}
	for _, err := range errs {
		g.Log.Warn().Err(err).Msg("illustration skipped")
	}
	return out, nil
}

func infographic(points []DataPoint) (types.Visual, bool, error) {
	if len(points) == 0 {
		return types.Visual{}, false, nil
	}
	if len(points) > maxStats {
		points = points[:maxStats]
	}
	const title = "Key Statistics"
	svg, err := StatsCardSVG(title, points)
	if err != nil {
		return types.Visual{}, false, err
	}
	return types.Visual{Kind: types.VisualInfographic, Type: "statistics", Title: title, SVG: svg}, true, nil
}
