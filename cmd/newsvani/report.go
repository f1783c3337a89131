package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/seenimoa/newsvani/internal/pipeline"
	"github.com/seenimoa/newsvani/pkg/models"
	"github.com/seenimoa/newsvani/pkg/utils"
)

// printReport writes the terminal rendering of an analysis.
func printReport(w io.Writer, r *pipeline.Report) {
	s := r.Summary
	c := s.SentimentCounts

	fmt.Fprintln(w, "\n🔹 Sentiment Analysis Summary 🔹")
	fmt.Fprintf(w, "Total Articles: %d\n", s.TotalArticles)
	fmt.Fprintf(w, "Sentiment Counts: Positive %d (%s), Negative %d (%s), Neutral %d (%s)\n",
		c.Positive, utils.FormatShare(c.Positive, s.TotalArticles),
		c.Negative, utils.FormatShare(c.Negative, s.TotalArticles),
		c.Neutral, utils.FormatShare(c.Neutral, s.TotalArticles),
	)
	fmt.Fprintf(w, "Overall Sentiment Trend: %s\n", s.OverallTrend)

	if len(s.SourceSentiment) > 0 {
		fmt.Fprintln(w, "\n🔹 Sentiment by Source 🔹")
		for _, domain := range sortedDomains(s.SourceSentiment) {
			sc := s.SourceSentiment[domain]
			fmt.Fprintf(w, "%-30s +%d / -%d / =%d\n", domain, sc.Positive, sc.Negative, sc.Neutral)
		}
	}
	printKeywords(w, "Top Positive Keywords", s.TopPositiveKeywords)
	printKeywords(w, "Top Negative Keywords", s.TopNegativeKeywords)

	fmt.Fprintln(w, "\n🔹 Top Trending Words 🔹")
	if len(r.Trending) == 0 {
		fmt.Fprintln(w, "No significant trending words found.")
	}
	for _, wc := range r.Trending {
		fmt.Fprintf(w, "%s: %d times\n", capitalize(wc.Word), wc.Count)
	}

	fmt.Fprintln(w, "\n🔹 Article Details 🔹")
	for _, a := range r.Articles {
		fmt.Fprintf(w, "🔹 Title: %s\n", a.Title)
		fmt.Fprintf(w, "🔗 Source: %s\n", a.Link)
		fmt.Fprintf(w, "📝 Summary: %s\n", a.Summary)
		fmt.Fprintf(w, "📊 Sentiment: %s\n", a.Sentiment)
		fmt.Fprintln(w, strings.Repeat("-", 80))
	}
}

func printKeywords(w io.Writer, title string, kw models.KeywordFrequency) {
	if len(kw) == 0 {
		return
	}
	parts := make([]string, len(kw))
	for i, wc := range kw {
		parts[i] = fmt.Sprintf("%s (%d)", wc.Word, wc.Count)
	}
	fmt.Fprintf(w, "%s: %s\n", title, strings.Join(parts, ", "))
}

func sortedDomains(b models.SourceBreakdown) []string {
	domains := make([]string, 0, len(b))
	for d := range b {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
