// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engage

import (
	"sync"

	"github.com/cdipaolo/sentiment"
)

// Polarizer scores the sentiment of a sentence in [-1, 1].
type Polarizer interface {
	Polarity(sentence string) float64
}

// NaiveBayes scores sentiment with the pretrained English model bundled in
// github.com/cdipaolo/sentiment. The model loads on first use.
type NaiveBayes struct {
	once   sync.Once
	models sentiment.Models
	err    error
}

// Polarity maps the model's per-word positive/negative classes to the mean
// of +1 and -1 over the sentence's words. It returns 0 if the model failed
// to load or the sentence has no words.
func (n *NaiveBayes) Polarity(sentence string) float64 {
	n.once.Do(func() {
		n.models, n.err = sentiment.Restore()
	})
	if n.err != nil {
		return 0
	}
	analysis := n.models.SentimentAnalysis(sentence, sentiment.English)
	if analysis == nil || len(analysis.Words) == 0 {
		return 0
	}
	total := 0.0
	for _, w := range analysis.Words {
		total += 2*float64(w.Score) - 1
	}
	return total / float64(len(analysis.Words))
}

// Err reports a model load failure, if any.
func (n *NaiveBayes) Err() error { return n.err }
