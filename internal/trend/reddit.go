// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/content-engine/internal/httputil"
	"github.com/pdiddy/content-engine/pkg/types"
)

// redditSearchBase is Reddit's public search endpoint. Declared as a var so
// tests can substitute an httptest server.
var redditSearchBase = "https://www.reddit.com/search.json"

// Reddit samples hot posts matching the topic across all subreddits.
type Reddit struct {
	Client *http.Client
	Config types.TrendConfig
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title     string `json:"title"`
				Score     int    `json:"score"`
				URL       string `json:"url"`
				Subreddit string `json:"subreddit"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Name implements Source.
func (r *Reddit) Name() string { return "reddit" }

// Fetch implements Source.
func (r *Reddit) Fetch(ctx context.Context, topic string) ([]RedditPost, error) {
	limit := r.Config.RedditLimit
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{
		"q":     {topic},
		"sort":  {"hot"},
		"limit": {strconv.Itoa(limit)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, redditSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	// Reddit throttles requests with a default Go user agent.
	req.Header.Set("User-Agent", r.Config.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, r.Client, req, 2)
	if err != nil {
		return nil, fmt.Errorf("Reddit request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Reddit returned %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decoding Reddit listing: %w", err)
	}

	posts := make([]RedditPost, 0, len(listing.Data.Children))
	for _, c := range listing.Data.Children {
		posts = append(posts, RedditPost{
			Title:     c.Data.Title,
			Score:     c.Data.Score,
			URL:       c.Data.URL,
			Subreddit: c.Data.Subreddit,
		})
		if len(posts) == limit {
			break
		}
	}
	return posts, nil
}
