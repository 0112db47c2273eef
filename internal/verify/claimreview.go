// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/content-engine/internal/httputil"
)

// HTTPChecker queries a generic fact-check service as GET <URL>?query=<claim>.
// The service answers {"reviews": [Review...]}.
type HTTPChecker struct {
	Label     string
	URL       string
	UserAgent string
	Client    *http.Client
}

// Name implements FactChecker.
func (h *HTTPChecker) Name() string {
	if h.Label != "" {
		return h.Label
	}
	return "claim_review"
}

// Check implements FactChecker.
func (h *HTTPChecker) Check(ctx context.Context, claim string) (Response, error) {
	u, err := url.Parse(h.URL)
	if err != nil {
		return Response{}, fmt.Errorf("parsing fact-check URL: %w", err)
	}
	q := u.Query()
	q.Set("query", claim)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, h.Client, req, 2)
	if err != nil {
		return Response{}, fmt.Errorf("%s request: %w", h.Name(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return Response{}, fmt.Errorf("%s returned %d: %s", h.Name(), resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("decoding %s response: %w", h.Name(), err)
	}
	if out.Reviews == nil {
		out.Reviews = []Review{}
	}
	return out, nil
}
