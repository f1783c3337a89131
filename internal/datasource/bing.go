package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/newsvani/pkg/models"
	"github.com/seenimoa/newsvani/pkg/utils"
)

// DefaultBingURL is the Bing News search endpoint.
const DefaultBingURL = "https://www.bing.com/news/search"

// Bing scrapes the Bing News result page.
type Bing struct {
	opts Options
}

// Options configures the Bing sources.
type Options struct {
	BaseURL   string // search endpoint; DefaultBingURL if empty
	UserAgent string
	Client    *http.Client // NewHTTPClient(0) if nil
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBingURL
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Client == nil {
		o.Client = NewHTTPClient(0)
	}
	return o
}

// NewBing creates a Bing News HTML scraper.
func NewBing(opts Options) *Bing {
	return &Bing{opts: opts.withDefaults()}
}

// Name returns the data source name.
func (b *Bing) Name() string { return "Bing News" }

// Fetch scrapes the first n news cards for company.
func (b *Bing) Fetch(ctx context.Context, company string, n int) ([]models.Fragment, error) {
	company = utils.NormalizeCompany(company)
	if company == "" {
		return nil, ErrEmptyCompany
	}

	pageURL := searchURL(b.opts.BaseURL, company, false)
	body, err := doGet(ctx, b.opts.Client, pageURL, b.opts.UserAgent)
	if err != nil {
		return nil, unavailable(b.Name(), err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, unavailable(b.Name(), fmt.Errorf("parse html: %w", err))
	}

	frags := ExtractCards(doc, pageURL, n)
	if len(frags) == 0 {
		return nil, unavailable(b.Name(), nil)
	}
	return frags, nil
}

// ExtractCards pulls fragments out of a Bing News result page. Only the first
// n cards are inspected (all when n <= 0); cards without a title anchor are
// dropped. Relative links are resolved against pageURL.
func ExtractCards(doc *goquery.Document, pageURL string, n int) []models.Fragment {
	cards := doc.Find("div.news-card")
	if n > 0 && cards.Length() > n {
		cards = cards.Slice(0, n)
	}

	base, _ := url.Parse(pageURL)
	var frags []models.Fragment
	cards.Each(func(_ int, s *goquery.Selection) {
		anchor := s.Find("a.title").First()
		if anchor.Length() == 0 {
			return
		}
		href, ok := anchor.Attr("href")
		if !ok {
			return
		}
		frags = append(frags, models.Fragment{
			Title:   strings.TrimSpace(anchor.Text()),
			Link:    resolveLink(base, href),
			Snippet: strings.TrimSpace(s.Find(".snippet").First().Text()),
		})
	})
	return frags
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// searchURL builds the Bing query URL, optionally asking for the RSS format.
func searchURL(base, company string, rss bool) string {
	q := url.Values{}
	q.Set("q", company)
	if rss {
		q.Set("format", "rss")
	}
	return base + "?" + q.Encode()
}
