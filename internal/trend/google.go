// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trend

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/content-engine/internal/httputil"
	"github.com/pdiddy/content-engine/pkg/types"
)

// googleTrendsRSS is the daily trending-searches feed. Declared as a var so
// tests can substitute an httptest server.
var googleTrendsRSS = "https://trends.google.com/trending/rss"

// GoogleTrends reads the daily trending-searches RSS feed and keeps items
// that mention a topic term in their title or attached headlines.
type GoogleTrends struct {
	Client *http.Client
	Config types.TrendConfig
}

type rssFeed struct {
	Items []rssItem `xml:"channel>item"`
}

type rssItem struct {
	Title   string        `xml:"title"`
	Link    string        `xml:"link"`
	Traffic string        `xml:"approx_traffic"`
	News    []rssNewsItem `xml:"news_item"`
}

type rssNewsItem struct {
	Title string `xml:"news_item_title"`
}

// Name implements Source.
func (g *GoogleTrends) Name() string { return "google_trends" }

// Fetch implements Source.
func (g *GoogleTrends) Fetch(ctx context.Context, topic string) ([]TrendItem, error) {
	geo := g.Config.Geo
	if geo == "" {
		geo = "US"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleTrendsRSS+"?"+url.Values{"geo": {geo}}.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if g.Config.UserAgent != "" {
		req.Header.Set("User-Agent", g.Config.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, g.Client, req, 2)
	if err != nil {
		return nil, fmt.Errorf("Google Trends request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Google Trends returned %d", resp.StatusCode)
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decoding Google Trends feed: %w", err)
	}
	return filterItems(feed.Items, topicTerms(topic)), nil
}

func filterItems(items []rssItem, terms []string) []TrendItem {
	out := []TrendItem{}
	for _, it := range items {
		headlines := make([]string, 0, len(it.News))
		for _, n := range it.News {
			if t := strings.TrimSpace(n.Title); t != "" {
				headlines = append(headlines, t)
			}
		}
		haystack := strings.ToLower(it.Title + " " + strings.Join(headlines, " "))
		if !containsAny(haystack, terms) {
			continue
		}
		out = append(out, TrendItem{
			Title:     strings.TrimSpace(it.Title),
			Traffic:   strings.TrimSpace(it.Traffic),
			Link:      strings.TrimSpace(it.Link),
			Headlines: headlines,
		})
	}
	return out
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
