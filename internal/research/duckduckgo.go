// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/content-engine/internal/httputil"
	"github.com/pdiddy/content-engine/pkg/types"
)

// duckDuckGoHTML is the JavaScript-free DuckDuckGo results page. Declared as
// a var so tests can substitute an httptest server.
var duckDuckGoHTML = "https://html.duckduckgo.com/html/"

// DuckDuckGoBackend scrapes DuckDuckGo's HTML results page.
type DuckDuckGoBackend struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the backend identifier.
func (b *DuckDuckGoBackend) Name() string { return "duckduckgo" }

// Search returns up to max organic results (5 when max is 0).
func (b *DuckDuckGoBackend) Search(ctx context.Context, query string, max int) ([]types.Source, error) {
	if max <= 0 {
		max = 5
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, duckDuckGoHTML+"?"+url.Values{"q": {query}}.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", b.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 2)
	if err != nil {
		return nil, fmt.Errorf("request results: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return parseDuckDuckGo(doc, max), nil
}

func parseDuckDuckGo(doc *goquery.Document, max int) []types.Source {
	var out []types.Source
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}
		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		if !ok || title == "" {
			return true
		}
		target := resolveRedirect(href)
		if target == "" {
			return true
		}
		out = append(out, types.Source{
			Title:   title,
			URL:     target,
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
			Origin:  "duckduckgo",
		})
		return len(out) < max
	})
	return out
}

// resolveRedirect unwraps DuckDuckGo's //duckduckgo.com/l/?uddg=<target> links.
func resolveRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
