// Package article turns scraped news fragments into normalized, sentiment-labelled
// articles.
package article

import (
	"regexp"
	"strings"
	"time"

	"github.com/seenimoa/newsvani/internal/analysis/sentiment"
	"github.com/seenimoa/newsvani/pkg/models"
	"github.com/seenimoa/newsvani/pkg/utils"
)

// NoSummary replaces a missing snippet.
const NoSummary = "No summary available."

// sentenceBoundary is a period followed by whitespace.
var sentenceBoundary = regexp.MustCompile(`\.\s`)

// FirstSentence returns the leading sentence of s, period included, on a
// single line. Text without a boundary is returned whole.
func FirstSentence(s string) string {
	s = oneLine(s)
	if loc := sentenceBoundary.FindStringIndex(s); loc != nil {
		return s[:loc[0]+1]
	}
	return s
}

// oneLine collapses every whitespace run, line breaks included, to one space.
// Scraped snippets wrap freely; narratives and reports are line oriented.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Builder normalizes fragments into articles. It is stateless apart from
// its injected collaborators and safe for concurrent use.
type Builder struct {
	classifier sentiment.Classifier
	now        func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock overrides the clock used to stamp article dates.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates a builder that labels articles with c.
func NewBuilder(c sentiment.Classifier, opts ...Option) *Builder {
	b := &Builder{classifier: c, now: utils.NowIST}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build converts one fragment into an article. It never fails: a missing
// snippet falls back to NoSummary and a label outside the three known ones
// becomes Neutral.
func (b *Builder) Build(f models.Fragment) models.Article {
	summary := NoSummary
	if snippet := strings.TrimSpace(f.Snippet); snippet != "" {
		summary = FirstSentence(snippet)
	}

	label := b.classifier.Classify(summary)
	if !label.Valid() {
		label = models.Neutral
	}

	return models.Article{
		Title:     oneLine(f.Title),
		Link:      strings.TrimSpace(f.Link),
		Summary:   summary,
		Sentiment: label,
		Date:      utils.FormatDateIST(b.now()),
	}
}

// BuildAll builds every usable fragment, preserving order. Fragments
// without a title or link are skipped.
func (b *Builder) BuildAll(fragments []models.Fragment) []models.Article {
	articles := make([]models.Article, 0, len(fragments))
	for _, f := range fragments {
		if strings.TrimSpace(f.Title) == "" || strings.TrimSpace(f.Link) == "" {
			continue
		}
		articles = append(articles, b.Build(f))
	}
	return articles
}
