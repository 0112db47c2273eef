// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-engine/pkg/types"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss xmlns:ht="https://trends.google.com/trending/rss" version="2.0">
  <channel>
    <item>
      <title>solar eclipse</title>
      <ht:approx_traffic>500K+</ht:approx_traffic>
      <link>https://trends.google.com/trending/rss?geo=US</link>
      <ht:news_item><ht:news_item_title>Eclipse path announced</ht:news_item_title></ht:news_item>
    </item>
    <item>
      <title>football scores</title>
      <ht:approx_traffic>1M+</ht:approx_traffic>
      <ht:news_item><ht:news_item_title>Renewable energy stadium opens</ht:news_item_title></ht:news_item>
    </item>
    <item>
      <title>celebrity news</title>
    </item>
  </channel>
</rss>`

func testTrendConfig() types.TrendConfig {
	return types.TrendConfig{
		HTTPConfig:  types.HTTPConfig{UserAgent: "content-engine-test/1.0"},
		Geo:         "GB",
		RedditLimit: 2,
	}
}

func TestGoogleTrendsFetchFiltersByTopic(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GB", r.URL.Query().Get("geo"))
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer ts.Close()

	old := googleTrendsRSS
	googleTrendsRSS = ts.URL
	defer func() { googleTrendsRSS = old }()

	g := &GoogleTrends{Client: ts.Client(), Config: testTrendConfig()}
	items, err := g.Fetch(context.Background(), "Solar and renewable energy")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "solar eclipse", items[0].Title)
	assert.Equal(t, "500K+", items[0].Traffic)
	assert.Equal(t, []string{"Eclipse path announced"}, items[0].Headlines)
	assert.Equal(t, "football scores", items[1].Title, "headline match counts")
}

func TestRedditFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "solar power", q.Get("q"))
		assert.Equal(t, "hot", q.Get("sort"))
		assert.Equal(t, "2", q.Get("limit"))
		assert.Equal(t, "content-engine-test/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"data":{"children":[
			{"data":{"title":"Panels on every roof","score":1500,"url":"https://r/1","subreddit":"energy"}},
			{"data":{"title":"Solar math","score":300,"url":"https://r/2","subreddit":"science"}},
			{"data":{"title":"Extra","score":1,"url":"https://r/3"}}
		]}}`))
	}))
	defer ts.Close()

	old := redditSearchBase
	redditSearchBase = ts.URL
	defer func() { redditSearchBase = old }()

	r := &Reddit{Client: ts.Client(), Config: testTrendConfig()}
	posts, err := r.Fetch(context.Background(), "solar power")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, RedditPost{Title: "Panels on every roof", Score: 1500, URL: "https://r/1", Subreddit: "energy"}, posts[0])
}

func TestViralityScore(t *testing.T) {
	tests := []struct {
		name   string
		google []TrendItem
		reddit []RedditPost
		want   float64
	}{
		{"no signal", nil, nil, 0},
		{"google only", []TrendItem{{Title: "a"}, {Title: "b"}, {Title: "c"}}, nil, 0.5},
		{"reddit capped", nil, []RedditPost{{Score: 5000}}, 0.5},
		{"reddit average", nil, []RedditPost{{Score: 100}, {Score: 300}}, 0.1},
		{"negative reddit clamps", nil, []RedditPost{{Score: -40}}, 0},
		{"both", []TrendItem{{Title: "a"}}, []RedditPost{{Score: 500}}, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ViralityScore(tt.google, tt.reddit)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

type stubSource[T any] struct {
	name  string
	items []T
	err   error
}

func (s stubSource[T]) Name() string { return s.name }
func (s stubSource[T]) Fetch(context.Context, string) ([]T, error) {
	return s.items, s.err
}

func TestAnalyzeSwallowsSourceErrors(t *testing.T) {
	c := &Collector{
		Google: stubSource[TrendItem]{name: "google_trends", err: errors.New("feed down")},
		Reddit: stubSource[RedditPost]{name: "reddit", items: []RedditPost{{Title: "Hot", Score: 2000}}},
		Log:    zerolog.Nop(),
	}
	report := c.Analyze(context.Background(), "solar")

	assert.Empty(t, report.GoogleTrends)
	assert.NotNil(t, report.GoogleTrends)
	assert.Len(t, report.RedditTrends, 1)
	assert.Equal(t, 0.5, report.ViralityScore)
	assert.Equal(t, []string{"google_trends"}, report.Failed)
	assert.Contains(t, report.Summary, "1 hot Reddit posts")
}

func TestAnalyzeBothFail(t *testing.T) {
	c := &Collector{
		Google: stubSource[TrendItem]{name: "google_trends", err: errors.New("x")},
		Reddit: stubSource[RedditPost]{name: "reddit", err: errors.New("y")},
		Log:    zerolog.Nop(),
	}
	report := c.Analyze(context.Background(), "solar")
	assert.Zero(t, report.ViralityScore)
	assert.ElementsMatch(t, []string{"google_trends", "reddit"}, report.Failed)
	assert.Equal(t, `No current trend signal for "solar".`, report.Summary)
}
