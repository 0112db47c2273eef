// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package visual

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
)

const (
	mapWidth  = 640
	mapHeight = 480
	mapRadius = 170
)

var conceptMapTmpl = template.Must(template.New("concept_map").Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
<rect width="100%" height="100%" fill="#ffffff"/>
{{- range .Nodes}}
<line x1="{{$.CX}}" y1="{{$.CY}}" x2="{{.X}}" y2="{{.Y}}" stroke="#9aa5b1" stroke-width="2"/>
{{- end}}
<circle cx="{{.CX}}" cy="{{.CY}}" r="70" fill="#1f6feb"/>
<text x="{{.CX}}" y="{{.CY}}" font-family="sans-serif" font-size="14" fill="#ffffff" text-anchor="middle" dominant-baseline="middle">{{.Center}}</text>
{{- range .Nodes}}
<circle cx="{{.X}}" cy="{{.Y}}" r="52" fill="#e6edf3" stroke="#1f6feb"/>
<text x="{{.X}}" y="{{.Y}}" font-family="sans-serif" font-size="12" fill="#1f2328" text-anchor="middle" dominant-baseline="middle">{{.Label}}</text>
{{- end}}
</svg>`))

type mapNode struct {
	X, Y  string
	Label string
}

// ConceptMapSVG draws center in the middle with concepts spaced evenly on a
// circle around it.
func ConceptMapSVG(center string, concepts []string) (string, error) {
	cx, cy := float64(mapWidth)/2, float64(mapHeight)/2
	nodes := make([]mapNode, 0, len(concepts))
	for i, c := range concepts {
		angle := 2*math.Pi*float64(i)/float64(len(concepts)) - math.Pi/2
		nodes = append(nodes, mapNode{
			X:     coord(cx + mapRadius*math.Cos(angle)),
			Y:     coord(cy + mapRadius*math.Sin(angle)),
			Label: clip(c, 24),
		})
	}
	return execute(conceptMapTmpl, struct {
		Width, Height int
		CX, CY        string
		Center        string
		Nodes         []mapNode
	}{mapWidth, mapHeight, coord(cx), coord(cy), clip(center, 28), nodes})
}

var statsCardTmpl = template.Must(template.New("statistics").Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="640" height="{{.Height}}" viewBox="0 0 640 {{.Height}}">
<rect width="100%" height="100%" rx="12" fill="#0d1117"/>
<text x="32" y="48" font-family="sans-serif" font-size="24" font-weight="bold" fill="#ffffff">{{.Title}}</text>
{{- range $i, $row := .Rows}}
<text x="32" y="{{$row.Y}}" font-family="sans-serif" font-size="28" font-weight="bold" fill="#58a6ff">{{$row.Value}}</text>
<text x="240" y="{{$row.Y}}" font-family="sans-serif" font-size="16" fill="#c9d1d9">{{$row.Label}}</text>
{{- end}}
</svg>`))

type statRow struct {
	Y     int
	Value string
	Label string
}

// StatsCardSVG renders points as a key-statistics card, one row each.
func StatsCardSVG(title string, points []DataPoint) (string, error) {
	rows := make([]statRow, 0, len(points))
	for i, p := range points {
		rows = append(rows, statRow{Y: 100 + i*56, Value: p.Display(), Label: clip(p.Label, 40)})
	}
	return execute(statsCardTmpl, struct {
		Title  string
		Height int
		Rows   []statRow
	}{title, 100 + len(points)*56, rows})
}

var dataTableTmpl = template.Must(template.New("data_explorer").Parse(`<table class="data-explorer">
<thead><tr><th>Label</th><th>Value</th><th>Year</th></tr></thead>
<tbody>
{{- range .}}
<tr><td>{{.Label}}</td><td data-value="{{.Value}}">{{.Display}}</td><td>{{if .Year}}{{.Year}}{{end}}</td></tr>
{{- end}}
</tbody>
</table>`))

// DataTableHTML renders points as a sortable-friendly HTML table.
func DataTableHTML(points []DataPoint) (string, error) {
	return execute(dataTableTmpl, points)
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func coord(f float64) string {
	return fmt.Sprintf("%.1f", f)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
