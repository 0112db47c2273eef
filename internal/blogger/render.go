// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package blogger

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/pdiddy/content-engine/pkg/types"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

var appendixTmpl = template.Must(template.New("appendix").Parse(`
{{- range .Visuals}}{{if .SVG}}
<figure class="{{.Kind}}">
{{.Markup}}
{{- if .Caption}}
<figcaption>{{.Caption}}</figcaption>
{{- end}}
</figure>
{{- end}}{{end}}
{{- if .Sources}}
<h2>Sources</h2>
<ol class="sources">
{{- range .Sources}}
<li><a href="{{.URL}}">{{.Title}}</a></li>
{{- end}}
</ol>
{{- end}}
`))

type figure struct {
	types.Visual
	Markup template.HTML
}

// Post is one blog entry. Content is Markdown.
type Post struct {
	Title   string
	Content string
	Labels  []string
	Draft   bool

	Visuals []types.Visual
	Sources []types.Source
}

// PostFrom builds a post from a compiled envelope. Labels come from the
// "keywords" metadata.
func PostFrom(env *types.ContentEnvelope) Post {
	return Post{
		Title:   env.Title,
		Content: env.Content,
		Labels:  Labels(env.Metadata),
		Visuals: env.Visuals,
		Sources: env.Sources,
	}
}

// Render converts the post's Markdown to HTML and appends rendered visuals
// and the source list. A leading "# " title line is dropped since Blogger
// shows the post title separately.
func Render(p Post) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(dropTitle(p.Content)), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}

	figures := make([]figure, 0, len(p.Visuals))
	for _, v := range p.Visuals {
		// SVG comes from our own renderers, never from model output.
		figures = append(figures, figure{Visual: v, Markup: template.HTML(v.SVG)})
	}
	if err := appendixTmpl.Execute(&buf, struct {
		Visuals []figure
		Sources []types.Source
	}{figures, p.Sources}); err != nil {
		return "", fmt.Errorf("rendering appendix: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func dropTitle(md string) string {
	md = strings.TrimLeft(md, "\n")
	if !strings.HasPrefix(md, "# ") {
		return md
	}
	if i := strings.IndexByte(md, '\n'); i >= 0 {
		return md[i+1:]
	}
	return ""
}

// Labels returns the post labels stored under the "keywords" metadata key.
// Envelopes read back from JSON carry them as []any.
func Labels(meta types.Metadata) []string {
	var labels []string
	switch kw := meta["keywords"].(type) {
	case []string:
		labels = append(labels, kw...)
	case []any:
		for _, k := range kw {
			if s, ok := k.(string); ok {
				labels = append(labels, s)
			}
		}
	}
	out := make([]string, 0, len(labels))
	seen := map[string]bool{}
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" || seen[strings.ToLower(l)] {
			continue
		}
		seen[strings.ToLower(l)] = true
		out = append(out, l)
	}
	return out
}
