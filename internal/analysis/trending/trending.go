// Package trending finds the most frequent content words across article summaries.
package trending

import (
	"strings"
	"unicode"

	"github.com/seenimoa/newsvani/internal/analysis/aggregate"
	"github.com/seenimoa/newsvani/pkg/models"
)

// DefaultTopN is used when Extract is called with topN <= 0.
const DefaultTopN = 10

// asciiPunct is the ASCII punctuation set removed before tokenizing.
const asciiPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var punctStripper = strings.NewReplacer(punctPairs()...)

func punctPairs() []string {
	pairs := make([]string, 0, 2*len(asciiPunct))
	for _, r := range asciiPunct {
		pairs = append(pairs, string(r), "")
	}
	return pairs
}

// Words lowercases text, strips ASCII punctuation, splits on whitespace and
// keeps only purely alphanumeric, non-stopword tokens.
func Words(text string) []string {
	fields := strings.Fields(punctStripper.Replace(strings.ToLower(text)))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if !isAlnum(f) || IsStopword(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Extract returns the topN most frequent content words across all summaries,
// ties in first-occurrence order. It returns an empty slice when nothing
// qualifies.
func Extract(articles []models.Article, topN int) models.KeywordFrequency {
	if topN <= 0 {
		topN = DefaultTopN
	}
	counter := aggregate.NewCounter()
	for _, a := range articles {
		counter.AddAll(Words(a.Summary))
	}
	return counter.Top(topN)
}

// FromBatch extracts trending words from a fetched batch. A batch carrying an
// upstream fetch error is not tokenized; its error is returned unchanged.
func FromBatch(b models.Batch, topN int) (models.KeywordFrequency, error) {
	if b.Err != nil {
		return nil, b.Err
	}
	return Extract(b.Articles, topN), nil
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
