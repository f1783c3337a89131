package datasource

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/newsvani/pkg/models"
	"github.com/seenimoa/newsvani/pkg/utils"
)

// BingRSS reads the RSS rendition of a Bing News search.
type BingRSS struct {
	opts   Options
	parser *gofeed.Parser
}

// NewBingRSS creates a Bing News RSS source.
func NewBingRSS(opts Options) *BingRSS {
	return &BingRSS{opts: opts.withDefaults(), parser: gofeed.NewParser()}
}

// Name returns the data source name.
func (r *BingRSS) Name() string { return "Bing News RSS" }

// Fetch parses the feed and returns the first n items for company.
func (r *BingRSS) Fetch(ctx context.Context, company string, n int) ([]models.Fragment, error) {
	company = utils.NormalizeCompany(company)
	if company == "" {
		return nil, ErrEmptyCompany
	}

	body, err := doGet(ctx, r.opts.Client, searchURL(r.opts.BaseURL, company, true), r.opts.UserAgent)
	if err != nil {
		return nil, unavailable(r.Name(), err)
	}
	defer body.Close()

	feed, err := r.parser.Parse(body)
	if err != nil {
		return nil, unavailable(r.Name(), fmt.Errorf("parse RSS: %w", err))
	}

	items := feed.Items
	if n > 0 && len(items) > n {
		items = items[:n]
	}

	frags := make([]models.Fragment, 0, len(items))
	for _, item := range items {
		if item == nil || strings.TrimSpace(item.Title) == "" || strings.TrimSpace(item.Link) == "" {
			continue
		}
		frags = append(frags, models.Fragment{
			Title:   strings.TrimSpace(item.Title),
			Link:    strings.TrimSpace(item.Link),
			Snippet: cleanHTML(item.Description),
		})
	}
	if len(frags) == 0 {
		return nil, unavailable(r.Name(), nil)
	}
	return frags, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
