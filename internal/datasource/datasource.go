// Package datasource fetches raw news fragments for a company. It defines a
// common Fetcher interface and implements Bing News sources (HTML and RSS),
// plus combinators for fallback, merging, and caching.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/seenimoa/newsvani/pkg/models"
)

// Fetcher returns up to n raw fragments about company, in source order.
// An error wraps ErrFetchUnavailable when no fragments could be obtained.
type Fetcher interface {
	// Name returns the human-readable name of this source.
	Name() string

	// Fetch returns extracted fragments; it never parses beyond title, link and snippet.
	Fetch(ctx context.Context, company string, n int) ([]models.Fragment, error)
}

// --- Sentinel errors ---

// ErrFetchUnavailable is returned when the upstream fetch failed or yielded nothing.
var ErrFetchUnavailable = errors.New("news fetch unavailable")

// ErrEmptyCompany is returned when the company name is blank.
var ErrEmptyCompany = errors.New("company name is required")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// unavailable wraps err so that errors.Is matches ErrFetchUnavailable.
func unavailable(source string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", source, ErrFetchUnavailable)
	}
	return fmt.Errorf("%s: %w: %w", source, ErrFetchUnavailable, err)
}

// --- Shared HTTP client helpers ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// NewHTTPClient returns an HTTP client with the given timeout (30s if zero).
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// doGet performs a GET request and returns the response body.
// The caller is responsible for closing the returned ReadCloser.
func doGet(ctx context.Context, client *http.Client, url, userAgent string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, nil
}
