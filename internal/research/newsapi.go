// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/content-engine/internal/httputil"
	"github.com/pdiddy/content-engine/pkg/types"
)

// newsAPIEverything is the NewsAPI article search endpoint. Declared as a var
// so tests can substitute an httptest server.
var newsAPIEverything = "https://newsapi.org/v2/everything"

// NewsAPIBackend queries NewsAPI for recent articles.
type NewsAPIBackend struct {
	Client *http.Client
	APIKey string
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Name returns the backend identifier.
func (b *NewsAPIBackend) Name() string { return "newsapi" }

// Search returns up to max articles sorted by relevancy (5 when max is 0).
func (b *NewsAPIBackend) Search(ctx context.Context, query string, max int) ([]types.Source, error) {
	if b.APIKey == "" {
		return nil, fmt.Errorf("newsapi: no API key configured")
	}
	if max <= 0 {
		max = 5
	}
	if max > 100 {
		max = 100
	}
	params := url.Values{
		"q":        {query},
		"pageSize": {strconv.Itoa(max)},
		"sortBy":   {"relevancy"},
		"language": {"en"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, newsAPIEverything+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Api-Key", b.APIKey)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 2)
	if err != nil {
		return nil, fmt.Errorf("NewsAPI request: %w", err)
	}
	defer resp.Body.Close()

	var body newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding NewsAPI response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		return nil, fmt.Errorf("NewsAPI returned %d %s: %s", resp.StatusCode, body.Code, body.Message)
	}

	out := make([]types.Source, 0, len(body.Articles))
	for _, a := range body.Articles {
		if a.URL == "" || a.Title == "" || a.Title == "[Removed]" {
			continue
		}
		snippet := strings.TrimSpace(a.Description)
		if a.Source.Name != "" {
			snippet = strings.TrimSpace(a.Source.Name + ": " + snippet)
		}
		out = append(out, types.Source{Title: a.Title, URL: a.URL, Snippet: snippet, Origin: "newsapi"})
	}
	return out, nil
}
