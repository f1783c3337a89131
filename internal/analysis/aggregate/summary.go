// Package aggregate derives batch-level sentiment statistics from articles:
// label counts, the overall trend, per-source breakdowns, and the most
// frequent words per sentiment class.
package aggregate

import (
	"github.com/seenimoa/newsvani/pkg/models"
)

// DefaultKeywords is the number of keywords kept per sentiment class.
const DefaultKeywords = 5

// Aggregator computes summaries. Extended enables the per-source breakdown
// and the per-sentiment keyword lists.
type Aggregator struct {
	Extended bool
	Keywords int // per-sentiment keyword count; <= 0 means DefaultKeywords
}

// Summarize builds a summary for articles. The input is only read.
func (a Aggregator) Summarize(articles []models.Article) models.Summary {
	s := Summarize(articles)
	if !a.Extended {
		return s
	}

	n := a.Keywords
	if n <= 0 {
		n = DefaultKeywords
	}
	s.SourceSentiment = BreakdownBySource(articles)
	s.TopPositiveKeywords = TopKeywordsBySentiment(articles, models.Positive, n)
	s.TopNegativeKeywords = TopKeywordsBySentiment(articles, models.Negative, n)
	return s
}

// Summarize tallies sentiment labels in one pass and classifies the trend.
// An article with an unrecognised label is counted as Neutral, so the counts
// always sum to len(articles). An empty batch yields zero counts and a
// Neutral trend.
func Summarize(articles []models.Article) models.Summary {
	var counts models.SentimentCounts
	for _, a := range articles {
		label := a.Sentiment
		if !label.Valid() {
			label = models.Neutral
		}
		counts.Add(label)
	}
	return models.Summary{
		TotalArticles:   len(articles),
		SentimentCounts: counts,
		OverallTrend:    TrendOf(counts),
	}
}

// TrendOf compares Positive against Negative only; equality (including 0/0)
// is Neutral regardless of the Neutral count.
func TrendOf(c models.SentimentCounts) models.Trend {
	switch {
	case c.Positive > c.Negative:
		return models.TrendMostlyPositive
	case c.Negative > c.Positive:
		return models.TrendMostlyNegative
	default:
		return models.TrendNeutral
	}
}
