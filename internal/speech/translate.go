package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultTranslateURL is the public Google Translate endpoint used by gtx clients.
const DefaultTranslateURL = "https://translate.googleapis.com/translate_a/single"

// GoogleTranslator calls the keyless Google Translate endpoint with
// source language detection.
type GoogleTranslator struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// GoogleOption configures GoogleTranslator and GoogleTTS.
type GoogleOption func(*googleOptions)

type googleOptions struct {
	baseURL     string
	userAgent   string
	client      *http.Client
	concurrency int
}

// WithBaseURL overrides the endpoint (used by tests).
func WithBaseURL(u string) GoogleOption {
	return func(o *googleOptions) { o.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) GoogleOption {
	return func(o *googleOptions) { o.client = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) GoogleOption {
	return func(o *googleOptions) { o.userAgent = ua }
}

// WithConcurrency bounds the number of parallel TTS chunk downloads.
func WithConcurrency(n int) GoogleOption {
	return func(o *googleOptions) { o.concurrency = n }
}

func applyGoogle(base string, opts []GoogleOption) googleOptions {
	o := googleOptions{baseURL: base, userAgent: DefaultUserAgent, client: defaultClient(), concurrency: 4}
	for _, opt := range opts {
		opt(&o)
	}
	if o.concurrency <= 0 {
		o.concurrency = 1
	}
	return o
}

// NewGoogleTranslator creates a translator backed by translate.googleapis.com.
func NewGoogleTranslator(opts ...GoogleOption) *GoogleTranslator {
	o := applyGoogle(DefaultTranslateURL, opts)
	return &GoogleTranslator{baseURL: o.baseURL, userAgent: o.userAgent, client: o.client}
}

// Name returns the translator name.
func (g *GoogleTranslator) Name() string { return "google" }

// Translate returns text rendered in lang.
func (g *GoogleTranslator) Translate(ctx context.Context, text, lang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty input", ErrTranslation)
	}
	if lang == "" {
		lang = LangHindi
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", LangAuto)
	q.Set("tl", lang)
	q.Set("dt", "t")

	form := url.Values{}
	form.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"?"+q.Encode(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslation, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrTranslation, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrTranslation, err)
	}
	out, err := parseSegments(raw)
	if err != nil {
		return "", err
	}
	return out, nil
}

// parseSegments joins the translated segments of a gtx response:
// [[["translated","source",...],...], null, "en", ...].
func parseSegments(raw []json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrTranslation)
	}
	var segments [][]any
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return "", fmt.Errorf("%w: unexpected response shape: %v", ErrTranslation, err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			sb.WriteString(s)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("%w: no translated text", ErrTranslation)
	}
	return out, nil
}
