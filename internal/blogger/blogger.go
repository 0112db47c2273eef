// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package blogger publishes compiled articles to a Blogger blog through the
// Blogger v3 API.
package blogger

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"google.golang.org/api/blogger/v3"
	"google.golang.org/api/option"

	"github.com/pdiddy/content-engine/pkg/types"
)

// ErrNoBlog is returned when no blog ID is configured and the account owns none.
var ErrNoBlog = errors.New("no blog found for the authenticated user")

// Result identifies a published post.
type Result struct {
	ID    string `json:"id" yaml:"id"`
	URL   string `json:"url" yaml:"url"`
	Draft bool   `json:"draft" yaml:"draft"`
}

// Publisher inserts posts into one blog.
type Publisher struct {
	svc    *blogger.Service
	blogID string
	draft  bool
	log    zerolog.Logger
}

// New creates a publisher authenticated with cfg.AccessToken. Extra options
// are appended after the credentials; tests pass an endpoint and client.
func New(ctx context.Context, cfg types.BloggerConfig, log zerolog.Logger, opts ...option.ClientOption) (*Publisher, error) {
	if cfg.AccessToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
		opts = append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	}
	svc, err := blogger.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating blogger service: %w", err)
	}
	return &Publisher{svc: svc, blogID: cfg.BlogID, draft: cfg.Draft, log: log}, nil
}

// Publish renders post and inserts it. The post is a draft when post.Draft or
// the publisher's Draft setting is true. When no blog ID is configured the
// first blog of the authenticated user is used and remembered.
func (p *Publisher) Publish(ctx context.Context, post Post) (Result, error) {
	html, err := Render(post)
	if err != nil {
		return Result{}, err
	}
	blogID, err := p.resolveBlog(ctx)
	if err != nil {
		return Result{}, err
	}

	draft := post.Draft || p.draft
	created, err := p.svc.Posts.Insert(blogID, &blogger.Post{
		Title:   post.Title,
		Content: html,
		Labels:  post.Labels,
	}).IsDraft(draft).Context(ctx).Do()
	if err != nil {
		return Result{}, fmt.Errorf("inserting post: %w", err)
	}
	p.log.Info().Str("blog_id", blogID).Str("post_id", created.Id).Bool("draft", draft).Msg("post published")
	return Result{ID: created.Id, URL: created.Url, Draft: draft}, nil
}

// PublishEnvelope publishes a compiled envelope.
func (p *Publisher) PublishEnvelope(ctx context.Context, env *types.ContentEnvelope) (Result, error) {
	return p.Publish(ctx, PostFrom(env))
}

func (p *Publisher) resolveBlog(ctx context.Context) (string, error) {
	if p.blogID != "" {
		return p.blogID, nil
	}
	list, err := p.svc.Blogs.ListByUser("self").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("listing blogs: %w", err)
	}
	for _, b := range list.Items {
		if b != nil && b.Id != "" {
			p.blogID = b.Id
			return p.blogID, nil
		}
	}
	return "", ErrNoBlog
}
