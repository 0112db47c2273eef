// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"context"
	"fmt"

	"google.golang.org/api/factchecktools/v1alpha1"
	"google.golang.org/api/option"
)

// GoogleFactCheck searches published ClaimReview verdicts through the Google
// Fact Check Tools API.
type GoogleFactCheck struct {
	svc      *factchecktools.Service
	language string
	pageSize int64
}

// NewGoogleFactCheck creates the backend. An empty apiKey relies on opts for
// credentials; tests pass an endpoint and client instead.
func NewGoogleFactCheck(ctx context.Context, apiKey, language string, opts ...option.ClientOption) (*GoogleFactCheck, error) {
	if apiKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	}
	svc, err := factchecktools.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating fact check tools service: %w", err)
	}
	if language == "" {
		language = "en"
	}
	return &GoogleFactCheck{svc: svc, language: language, pageSize: 5}, nil
}

// Name implements FactChecker.
func (g *GoogleFactCheck) Name() string { return "google_fact_check" }

// Check implements FactChecker.
func (g *GoogleFactCheck) Check(ctx context.Context, claim string) (Response, error) {
	resp, err := g.svc.Claims.Search().
		Query(claim).
		LanguageCode(g.language).
		PageSize(g.pageSize).
		Context(ctx).
		Do()
	if err != nil {
		return Response{}, fmt.Errorf("claims search: %w", err)
	}

	out := Response{Reviews: []Review{}}
	for _, c := range resp.Claims {
		if c == nil {
			continue
		}
		for _, cr := range c.ClaimReview {
			if cr == nil {
				continue
			}
			r := Review{
				Claim:    c.Text,
				Claimant: c.Claimant,
				Rating:   cr.TextualRating,
				Title:    cr.Title,
				URL:      cr.Url,
			}
			if cr.Publisher != nil {
				r.Publisher = cr.Publisher.Name
				if r.Publisher == "" {
					r.Publisher = cr.Publisher.Site
				}
			}
			out.Reviews = append(out.Reviews, r)
		}
	}
	return out, nil
}
