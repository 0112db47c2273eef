// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pdiddy/content-engine/pkg/types"
)

// Backend searches one web or news index. Each backend implements this
// interface per the Strategy pattern.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, max int) ([]types.Source, error)
}

// Search fans the query out to all backends concurrently, merges results in
// backend order, drops duplicate URLs and keeps at most max (0 means no cap).
// Backend failures are logged and skipped.
func Search(ctx context.Context, query string, backends []Backend, max int, log zerolog.Logger) []types.Source {
	if len(backends) == 0 || strings.TrimSpace(query) == "" {
		return []types.Source{}
	}

	type backendResult struct {
		idx     int
		results []types.Source
		err     error
		name    string
	}

	ch := make(chan backendResult, len(backends))
	var wg sync.WaitGroup
	for i, b := range backends {
		wg.Add(1)
		go func(i int, b Backend) {
			defer wg.Done()
			results, err := b.Search(ctx, query, max)
			ch <- backendResult{idx: i, results: results, err: err, name: b.Name()}
		}(i, b)
	}
	go func() {
		wg.Wait()
		close(ch)
	}()

	ordered := make([][]types.Source, len(backends))
	for br := range ch {
		if br.err != nil {
			log.Warn().Err(br.err).Str("backend", br.name).Msg("search backend failed")
			continue
		}
		ordered[br.idx] = br.results
	}

	var all []types.Source
	for _, rs := range ordered {
		all = append(all, rs...)
	}
	deduped := deduplicate(all)
	if max > 0 && len(deduped) > max {
		deduped = deduped[:max]
	}
	return deduped
}

// deduplicate keeps the first result for each normalized URL. Results without
// a URL are dropped.
func deduplicate(results []types.Source) []types.Source {
	seen := make(map[string]bool)
	out := []types.Source{}
	for _, r := range results {
		key := normalizeURL(r.URL)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// normalizeURL lowercases the host and drops the scheme, a leading "www.",
// the fragment, tracking parameters and trailing slashes.
func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimRight(strings.TrimSpace(raw), "/"))
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")

	q := u.Query()
	for k := range q {
		if strings.HasPrefix(k, "utm_") {
			q.Del(k)
		}
	}
	key := host + strings.TrimRight(u.EscapedPath(), "/")
	if enc := q.Encode(); enc != "" {
		key += "?" + enc
	}
	return key
}

// NewBackends returns the backends enabled by cfg.
func NewBackends(cfg types.ResearchConfig) []Backend {
	client := &http.Client{Timeout: cfg.Timeout}
	var backends []Backend
	if cfg.EnableDuckDuckGo {
		backends = append(backends, &DuckDuckGoBackend{Client: client, UserAgent: cfg.UserAgent})
	}
	if cfg.NewsAPIKey != "" {
		backends = append(backends, &NewsAPIBackend{Client: client, APIKey: cfg.NewsAPIKey})
	}
	if cfg.EnableOpenAlex {
		backends = append(backends, &OpenAlexBackend{Client: client, UserAgent: cfg.UserAgent, Email: cfg.OpenAlexEmail})
	}
	return backends
}
