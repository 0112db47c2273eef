// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/content-engine/internal/httputil"
	"github.com/pdiddy/content-engine/pkg/types"
)

// openAlexWorks is the OpenAlex works search endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexWorks = "https://api.openalex.org/works"

const maxAbstractRunes = 300

// OpenAlexBackend finds scholarly works so articles can cite primary research.
type OpenAlexBackend struct {
	Client    *http.Client
	UserAgent string

	// Email is sent as mailto for the OpenAlex polite pool.
	Email string
}

type openAlexResponse struct {
	Results []struct {
		ID              string           `json:"id"`
		Title           string           `json:"title"`
		DOI             string           `json:"doi"`
		PublicationYear int              `json:"publication_year"`
		AbstractIndex   map[string][]int `json:"abstract_inverted_index"`
		PrimaryLocation *struct {
			LandingPageURL string `json:"landing_page_url"`
			Source         *struct {
				DisplayName string `json:"display_name"`
			} `json:"source"`
		} `json:"primary_location"`
	} `json:"results"`
}

// Name returns the backend identifier.
func (b *OpenAlexBackend) Name() string { return "openalex" }

// Search returns up to max works ranked by OpenAlex relevance (5 when max is 0).
func (b *OpenAlexBackend) Search(ctx context.Context, query string, max int) ([]types.Source, error) {
	if max <= 0 {
		max = 5
	}
	if max > 200 {
		max = 200
	}
	params := url.Values{
		"search":   {query},
		"per_page": {strconv.Itoa(max)},
	}
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openAlexWorks+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 2)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex returned HTTP %d", resp.StatusCode)
	}

	var body openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	out := make([]types.Source, 0, len(body.Results))
	for _, w := range body.Results {
		link := w.DOI
		if link == "" && w.PrimaryLocation != nil {
			link = w.PrimaryLocation.LandingPageURL
		}
		if link == "" {
			link = w.ID
		}
		if link == "" || strings.TrimSpace(w.Title) == "" {
			continue
		}

		var meta []string
		if w.PrimaryLocation != nil && w.PrimaryLocation.Source != nil && w.PrimaryLocation.Source.DisplayName != "" {
			meta = append(meta, w.PrimaryLocation.Source.DisplayName)
		}
		if w.PublicationYear > 0 {
			meta = append(meta, strconv.Itoa(w.PublicationYear))
		}
		snippet := truncateRunes(reconstructAbstract(w.AbstractIndex), maxAbstractRunes)
		if len(meta) > 0 {
			snippet = strings.TrimSpace(strings.Join(meta, ", ") + ": " + snippet)
		}

		out = append(out, types.Source{Title: strings.TrimSpace(w.Title), URL: link, Snippet: snippet, Origin: "openalex"})
	}
	return out, nil
}

// reconstructAbstract rebuilds plain text from OpenAlex's inverted index,
// which maps each word to the positions where it appears.
func reconstructAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}
	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range index {
		for _, p := range positions {
			pairs = append(pairs, posWord{p, word})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].pos < pairs[j].pos })

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "..."
}
