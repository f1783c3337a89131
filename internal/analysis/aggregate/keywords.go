package aggregate

import (
	"sort"
	"strings"
	"unicode"

	"github.com/seenimoa/newsvani/pkg/models"
)

// Tokens splits text into case-folded runs of letters and digits.
func Tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// TopKeywordsBySentiment counts summary tokens of articles labelled label and
// returns the n most frequent. No stopword filtering is applied.
func TopKeywordsBySentiment(articles []models.Article, label models.Sentiment, n int) models.KeywordFrequency {
	counter := NewCounter()
	for _, a := range articles {
		if a.Sentiment != label {
			continue
		}
		counter.AddAll(Tokens(a.Summary))
	}
	return counter.Top(n)
}

// Counter accumulates word frequencies and remembers first-seen order so that
// ties rank stably.
type Counter struct {
	counts map[string]int
	order  []string
}

// NewCounter returns an empty counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Add counts one occurrence of word.
func (c *Counter) Add(word string) {
	if _, seen := c.counts[word]; !seen {
		c.order = append(c.order, word)
	}
	c.counts[word]++
}

// AddAll counts every word in words.
func (c *Counter) AddAll(words []string) {
	for _, w := range words {
		c.Add(w)
	}
}

// Len returns the number of distinct words.
func (c *Counter) Len() int { return len(c.order) }

// Top returns up to n entries by descending count, ties in first-seen order.
// n <= 0 returns every entry. The result is never nil.
func (c *Counter) Top(n int) models.KeywordFrequency {
	out := make(models.KeywordFrequency, 0, len(c.order))
	for _, w := range c.order {
		out = append(out, models.WordCount{Word: w, Count: c.counts[w]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
