// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package visual

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/content-engine/internal/textstat"
)

// DataPoint is one numeric fact found in the article text.
type DataPoint struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`

	// Unit is "%", a currency and scale ("USD billion") or a counted noun ("GW", "jobs").
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`

	// Year is set when the sentence names exactly one year; zero otherwise.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`
}

// Display renders the value with its unit, e.g. "4.5%" or "$380 billion".
func (d DataPoint) Display() string {
	v := strconv.FormatFloat(d.Value, 'f', -1, 64)
	switch {
	case d.Unit == "%":
		return v + "%"
	case strings.HasPrefix(d.Unit, "USD"):
		return strings.TrimSpace("$" + v + " " + strings.TrimPrefix(d.Unit, "USD"))
	case d.Unit == "":
		return v
	default:
		return v + " " + d.Unit
	}
}

var (
	quantityPattern = regexp.MustCompile(`(?i)(\$)?\b(\d{1,3}(?:,\d{3})+|\d+(?:\.\d+)?)\s?(%|percent\b|trillion\b|billion\b|million\b|thousand\b|twh\b|gwh\b|mwh\b|kwh\b|gw\b|mw\b|kw\b|tonnes?\b|tons?\b|people\b|users\b|jobs\b|homes\b|households\b|countries\b|companies\b)?`)
	yearPattern     = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	headingPattern  = regexp.MustCompile(`(?m)^#{2,3}\s+(.+?)\s*#*\s*$`)
	titlePattern    = regexp.MustCompile(`(?m)^#\s+(.+?)\s*$`)
	phrasePattern   = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`)
)

var labelStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "of": true, "in": true, "to": true,
	"by": true, "at": true, "for": true, "on": true, "is": true, "are": true, "was": true,
	"were": true, "about": true, "nearly": true, "around": true, "over": true, "than": true,
	"more": true, "less": true, "almost": true, "roughly": true, "some": true, "just": true,
	"reached": true, "rose": true, "fell": true, "grew": true, "hit": true, "generated": true,
	"supplies": true, "supplied": true, "totaled": true, "accounted": true, "accounts": true,
	"makes": true, "made": true, "represents": true, "represented": true, "with": true,
}

// ExtractDataPoints finds percentages, money amounts and counted quantities.
// Bare numbers without a unit are ignored, which keeps years and list
// numbering out of the result.
func ExtractDataPoints(text string) []DataPoint {
	var points []DataPoint
	for _, sentence := range textstat.Sentences(stripMarkup(text)) {
		years := distinctYears(sentence)
		first := true
		for _, m := range quantityPattern.FindAllStringSubmatchIndex(sentence, -1) {
			currency := m[2] >= 0
			unit := ""
			if m[6] >= 0 {
				unit = normalizeUnit(sentence[m[6]:m[7]])
			}
			if !currency && unit == "" {
				continue
			}
			value, err := strconv.ParseFloat(strings.ReplaceAll(sentence[m[4]:m[5]], ",", ""), 64)
			if err != nil {
				continue
			}
			if currency {
				unit = strings.TrimSpace("USD " + unit)
			}
			dp := DataPoint{
				Label: label(sentence[:m[0]], sentence[m[1]:]),
				Value: value,
				Unit:  unit,
			}
			if first && len(years) == 1 {
				dp.Year = years[0]
			}
			first = false
			points = append(points, dp)
		}
	}
	return points
}

var unitNames = map[string]string{
	"%": "%", "percent": "%",
	"twh": "TWh", "gwh": "GWh", "mwh": "MWh", "kwh": "kWh",
	"gw": "GW", "mw": "MW", "kw": "kW",
	"ton": "tonnes", "tons": "tonnes", "tonne": "tonnes",
}

func normalizeUnit(u string) string {
	u = strings.ToLower(u)
	if n, ok := unitNames[u]; ok {
		return n
	}
	return u
}

func distinctYears(sentence string) []int {
	seen := map[int]bool{}
	var out []int
	for _, y := range yearPattern.FindAllString(sentence, -1) {
		n, _ := strconv.Atoi(y)
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// label names a quantity by up to three content words before it, or after
// it when nothing useful precedes it.
func label(before, after string) string {
	if l := contentWords(before, true); l != "" {
		return l
	}
	return contentWords(after, false)
}

func contentWords(s string, fromEnd bool) string {
	var words []string
	for _, w := range textstat.Words(s) {
		if _, err := strconv.Atoi(w); err == nil {
			continue
		}
		words = append(words, w)
	}
	if fromEnd {
		for len(words) > 0 && labelStopwords[strings.ToLower(words[len(words)-1])] {
			words = words[:len(words)-1]
		}
		if len(words) > 3 {
			words = words[len(words)-3:]
		}
	} else if len(words) > 3 {
		words = words[:3]
	}
	for len(words) > 0 && labelStopwords[strings.ToLower(words[0])] {
		words = words[1:]
	}
	for len(words) > 0 && labelStopwords[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

var skippedHeadings = map[string]bool{
	"introduction": true, "conclusion": true, "sources": true, "references": true,
	"analogy": true, "case study": true, "summary": true,
}

// ExtractConcepts returns up to max key concepts: section headings first,
// then repeated multi-word proper phrases.
func ExtractConcepts(text string, max int) []string {
	seen := map[string]bool{}
	var out []string
	add := func(c string) {
		key := strings.ToLower(c)
		if c == "" || seen[key] || skippedHeadings[key] || len(out) >= max {
			return
		}
		seen[key] = true
		out = append(out, c)
	}

	for _, m := range headingPattern.FindAllStringSubmatch(text, -1) {
		add(strings.Trim(m[1], "*_ "))
	}

	counts := map[string]int{}
	var order []string
	for _, p := range phrasePattern.FindAllString(stripMarkup(text), -1) {
		if counts[p] == 0 {
			order = append(order, p)
		}
		counts[p]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	for _, p := range order {
		add(p)
	}
	return out
}

// Title returns the first level-one heading, or "".
func Title(text string) string {
	if m := titlePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

var markupPattern = regexp.MustCompile(`(?m)^#{1,6}\s.*$|[*_` + "`" + `]`)

func stripMarkup(text string) string {
	return markupPattern.ReplaceAllString(text, "")
}
