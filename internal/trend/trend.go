// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trend measures how much attention a topic is getting right now.
// It samples Google Trends and Reddit concurrently and folds both into a
// virality score in [0, 1].
package trend

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// TrendItem is one Google Trends search related to the topic.
type TrendItem struct {
	Title     string   `json:"title" yaml:"title"`
	Traffic   string   `json:"traffic,omitempty" yaml:"traffic,omitempty"`
	Link      string   `json:"link,omitempty" yaml:"link,omitempty"`
	Headlines []string `json:"headlines,omitempty" yaml:"headlines,omitempty"`
}

// RedditPost is one hot Reddit post matching the topic.
type RedditPost struct {
	Title     string `json:"title" yaml:"title"`
	Score     int    `json:"score" yaml:"score"`
	URL       string `json:"url" yaml:"url"`
	Subreddit string `json:"subreddit,omitempty" yaml:"subreddit,omitempty"`
}

// TrendReport is the output of the trend stage.
type TrendReport struct {
	GoogleTrends  []TrendItem  `json:"google_trends" yaml:"google_trends"`
	RedditTrends  []RedditPost `json:"reddit_trends" yaml:"reddit_trends"`
	ViralityScore float64      `json:"virality_score" yaml:"virality_score"`
	Summary       string       `json:"summary" yaml:"summary"`

	// Failed names the sources that errored and contributed nothing.
	Failed []string `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// Source fetches trend signals for a topic.
type Source[T any] interface {
	Name() string
	Fetch(ctx context.Context, topic string) ([]T, error)
}

// Collector queries both trend sources. A nil source is skipped.
type Collector struct {
	Google Source[TrendItem]
	Reddit Source[RedditPost]
	Log    zerolog.Logger
}

// Analyze fetches both sources concurrently. A failing source is logged,
// recorded in Failed and contributes an empty slice; Analyze never errors.
func (c *Collector) Analyze(ctx context.Context, topic string) TrendReport {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		report TrendReport
	)
	fail := func(name string, err error) {
		c.Log.Warn().Err(err).Str("source", name).Msg("trend source failed")
		mu.Lock()
		report.Failed = append(report.Failed, name)
		mu.Unlock()
	}

	if c.Google != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := c.Google.Fetch(ctx, topic)
			if err != nil {
				fail(c.Google.Name(), err)
				return
			}
			report.GoogleTrends = items
		}()
	}
	if c.Reddit != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			posts, err := c.Reddit.Fetch(ctx, topic)
			if err != nil {
				fail(c.Reddit.Name(), err)
				return
			}
			report.RedditTrends = posts
		}()
	}
	wg.Wait()

	if report.GoogleTrends == nil {
		report.GoogleTrends = []TrendItem{}
	}
	if report.RedditTrends == nil {
		report.RedditTrends = []RedditPost{}
	}
	report.ViralityScore = ViralityScore(report.GoogleTrends, report.RedditTrends)
	report.Summary = summarize(topic, report)
	return report
}

// ViralityScore combines trend breadth and Reddit engagement with equal weight.
// Any related Google search earns the full breadth term; the engagement term is
// the mean post score over 1000, capped at 1. The result is rounded to two
// decimals and lies in [0, 1].
func ViralityScore(google []TrendItem, reddit []RedditPost) float64 {
	score := 0.0
	if len(google) > 0 {
		score += 0.5 * math.Min(float64(len(google)), 1)
	}
	if len(reddit) > 0 {
		total := 0
		for _, p := range reddit {
			total += p.Score
		}
		avg := float64(total) / float64(len(reddit))
		score += 0.5 * math.Max(0, math.Min(avg/1000, 1))
	}
	return math.Round(score*100) / 100
}

func summarize(topic string, r TrendReport) string {
	var parts []string
	if n := len(r.GoogleTrends); n > 0 {
		parts = append(parts, fmt.Sprintf("%d trending searches (top: %q)", n, r.GoogleTrends[0].Title))
	}
	if n := len(r.RedditTrends); n > 0 {
		parts = append(parts, fmt.Sprintf("%d hot Reddit posts (top: %q, %d points)", n, r.RedditTrends[0].Title, r.RedditTrends[0].Score))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("No current trend signal for %q.", topic)
	}
	return fmt.Sprintf("%q: %s. Virality %.2f.", topic, strings.Join(parts, "; "), r.ViralityScore)
}

var stopwords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "from": true, "about": true, "into": true,
}

// topicTerms returns the lowercased words of topic that are long enough to match on.
func topicTerms(topic string) []string {
	var terms []string
	for _, f := range strings.Fields(strings.ToLower(topic)) {
		f = strings.Trim(f, `.,;:!?"'()`)
		if len(f) >= 3 && !stopwords[f] {
			terms = append(terms, f)
		}
	}
	return terms
}
