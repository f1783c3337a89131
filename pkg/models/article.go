// Package models defines the domain types shared by the news analysis
// pipeline: raw fragments, normalized articles, and derived summaries.
package models

// Sentiment is the label assigned to a single article.
type Sentiment string

const (
	Positive Sentiment = "Positive"
	Negative Sentiment = "Negative"
	Neutral  Sentiment = "Neutral"
)

// Sentiments lists every label in display order.
var Sentiments = []Sentiment{Positive, Negative, Neutral}

// Valid reports whether s is one of the three labels.
func (s Sentiment) Valid() bool {
	return s == Positive || s == Negative || s == Neutral
}

// Trend is the aggregate classification of an article batch.
type Trend string

const (
	TrendMostlyPositive Trend = "Mostly Positive"
	TrendMostlyNegative Trend = "Mostly Negative"
	TrendNeutral        Trend = "Neutral"
)

// Trends lists every trend value.
var Trends = []Trend{TrendMostlyPositive, TrendMostlyNegative, TrendNeutral}

// Fragment is a news item as extracted from a search page, before normalization.
// An empty Snippet means the page carried no snippet for the item.
type Fragment struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
}

// Article is one normalized news item.
type Article struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	// Summary is the first sentence of the snippet, on one line.
	Summary   string    `json:"summary"`
	Sentiment Sentiment `json:"sentiment"`
	// Date is the processing date, YYYY-MM-DD in IST.
	Date string `json:"date"`
}

// SentimentCounts tallies articles per sentiment label.
type SentimentCounts struct {
	Positive int `json:"Positive"`
	Negative int `json:"Negative"`
	Neutral  int `json:"Neutral"`
}

// Add increments the counter for label. Unknown labels are ignored.
func (c *SentimentCounts) Add(label Sentiment) {
	switch label {
	case Positive:
		c.Positive++
	case Negative:
		c.Negative++
	case Neutral:
		c.Neutral++
	}
}

// Get returns the count for label.
func (c SentimentCounts) Get(label Sentiment) int {
	switch label {
	case Positive:
		return c.Positive
	case Negative:
		return c.Negative
	case Neutral:
		return c.Neutral
	}
	return 0
}

// Total returns the sum of all three counters.
func (c SentimentCounts) Total() int {
	return c.Positive + c.Negative + c.Neutral
}

// SourceBreakdown maps a source domain to the sentiment counts of its articles.
type SourceBreakdown map[string]SentimentCounts

// WordCount is a single keyword frequency entry.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// KeywordFrequency is ordered by descending count, ties in first-seen order.
type KeywordFrequency []WordCount

// Summary holds batch-level statistics derived from a list of articles.
type Summary struct {
	TotalArticles   int             `json:"total_articles"`
	SentimentCounts SentimentCounts `json:"sentiment_counts"`
	OverallTrend    Trend           `json:"overall_trend"`

	// Extended fields, filled only when the aggregator runs in extended mode.
	SourceSentiment     SourceBreakdown  `json:"source_sentiment,omitempty"`
	TopPositiveKeywords KeywordFrequency `json:"top_positive_keywords,omitempty"`
	TopNegativeKeywords KeywordFrequency `json:"top_negative_keywords,omitempty"`
}

// Batch is the set of articles fetched for one company query.
// A non-nil Err means the upstream fetch failed and Articles must not be used.
type Batch struct {
	Company  string    `json:"company"`
	Articles []Article `json:"articles"`
	Err      error     `json:"-"`
}

// OK reports whether the batch carries usable articles (possibly zero).
func (b Batch) OK() bool { return b.Err == nil }
