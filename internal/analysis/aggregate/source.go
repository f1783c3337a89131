package aggregate

import (
	"strings"

	"github.com/seenimoa/newsvani/pkg/models"
)

// SourceDomain returns the host part of link: the text between "://" and the
// next "/". It reports false when the link has no scheme separator or the host
// is empty.
func SourceDomain(link string) (string, bool) {
	_, rest, ok := strings.Cut(link, "://")
	if !ok {
		return "", false
	}
	host, _, _ := strings.Cut(rest, "/")
	host = strings.TrimSpace(host)
	if host == "" {
		return "", false
	}
	return host, true
}

// BreakdownBySource counts sentiment labels per source domain. Articles whose
// domain cannot be derived are left out.
func BreakdownBySource(articles []models.Article) models.SourceBreakdown {
	out := make(models.SourceBreakdown)
	for _, a := range articles {
		host, ok := SourceDomain(a.Link)
		if !ok {
			continue
		}
		c := out[host]
		c.Add(a.Sentiment)
		out[host] = c
	}
	return out
}
