// Package narrative composes the spoken Hindi summary of an analysed batch.
// The output is plain text meant for a translator and a speech synthesizer.
package narrative

import (
	"errors"
	"fmt"
	"strings"

	"github.com/seenimoa/newsvani/pkg/models"
)

// DefaultArticles is the number of article lines included in a narrative.
const DefaultArticles = 5

// ErrTrendMappingMissing means the phrase table lacks an entry for a trend.
var ErrTrendMappingMissing = errors.New("narrative: trend phrase missing")

// TrendMappingError reports the trend that had no phrase.
type TrendMappingError struct {
	Trend models.Trend
}

func (e *TrendMappingError) Error() string {
	return fmt.Sprintf("narrative: no phrase for trend %q", e.Trend)
}

// Unwrap lets errors.Is match ErrTrendMappingMissing.
func (e *TrendMappingError) Unwrap() error { return ErrTrendMappingMissing }

// HindiPhrases maps every trend to its Hindi phrase.
var HindiPhrases = map[models.Trend]string{
	models.TrendMostlyPositive: "ज्यादातर सकारात्मक",
	models.TrendMostlyNegative: "ज्यादातर नकारात्मक",
	models.TrendNeutral:        "तटस्थ",
}

// Composer renders a summary and the leading articles as narrative text.
type Composer struct {
	K       int                     // article lines; <= 0 means DefaultArticles
	Phrases map[models.Trend]string // trend phrase table
}

// New returns a composer with the Hindi phrase table and K = DefaultArticles.
func New() *Composer {
	return &Composer{K: DefaultArticles, Phrases: HindiPhrases}
}

// Validate checks that the phrase table covers every trend value.
func (c *Composer) Validate() error {
	for _, t := range models.Trends {
		if strings.TrimSpace(c.Phrases[t]) == "" {
			return &TrendMappingError{Trend: t}
		}
	}
	return nil
}

// Compose returns one trend sentence followed by one numbered line per
// article, for the first K articles in their given order. Lines are
// separated by '\n'.
func (c *Composer) Compose(s models.Summary, articles []models.Article) (string, error) {
	phrase := c.Phrases[s.OverallTrend]
	if strings.TrimSpace(phrase) == "" {
		return "", &TrendMappingError{Trend: s.OverallTrend}
	}

	k := c.K
	if k <= 0 {
		k = DefaultArticles
	}
	if len(articles) < k {
		k = len(articles)
	}

	lines := make([]string, 0, k+1)
	lines = append(lines, trendSentence(s, phrase))
	for i, a := range articles[:k] {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, strings.Join(strings.Fields(a.Summary), " ")))
	}
	return strings.Join(lines, "\n"), nil
}

func trendSentence(s models.Summary, phrase string) string {
	c := s.SentimentCounts
	return fmt.Sprintf(
		"कुल %d लेखों में से %d सकारात्मक, %d नकारात्मक और %d तटस्थ हैं, इसलिए इस कंपनी की खबरों का आज का रुझान %s है।",
		s.TotalArticles, c.Positive, c.Negative, c.Neutral, phrase,
	)
}
