package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// DefaultTTSURL is the Google Translate text-to-speech endpoint.
const DefaultTTSURL = "https://translate.google.com/translate_tts"

// MaxChunkRunes is the longest text the TTS endpoint accepts per request.
const MaxChunkRunes = 100

// GoogleTTS synthesizes MP3 audio through the Google Translate TTS endpoint.
// Long text is split into chunks that are downloaded concurrently and
// concatenated in order.
type GoogleTTS struct {
	baseURL     string
	userAgent   string
	client      *http.Client
	concurrency int
}

// NewGoogleTTS creates a synthesizer. WithConcurrency bounds parallel downloads.
func NewGoogleTTS(opts ...GoogleOption) *GoogleTTS {
	o := applyGoogle(DefaultTTSURL, opts)
	return &GoogleTTS{baseURL: o.baseURL, userAgent: o.userAgent, client: o.client, concurrency: o.concurrency}
}

// Synthesize renders text in lang and writes the MP3 to path. The file is
// only created once every chunk has been fetched.
func (t *GoogleTTS) Synthesize(ctx context.Context, text, lang, path string) error {
	if lang == "" {
		lang = LangHindi
	}
	chunks := SplitChunks(text, MaxChunkRunes)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no text to speak", ErrSynthesis)
	}

	parts := make([][]byte, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			data, err := t.fetchChunk(gctx, chunk, lang, i, len(chunks))
			if err != nil {
				return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
			}
			parts[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ErrSynthesis, err)
	}

	if err := writeParts(path, parts); err != nil {
		return fmt.Errorf("%w: %w", ErrSynthesis, err)
	}
	return nil
}

func (t *GoogleTTS) fetchChunk(ctx context.Context, chunk, lang string, idx, total int) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", chunk)
	q.Set("tl", lang)
	q.Set("client", "tw-ob")
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Referer", "https://translate.google.com/")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio")
	}
	return data, nil
}

func writeParts(path string, parts [][]byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	for _, p := range parts {
		if _, err := f.Write(p); err != nil {
			f.Close()
			os.Remove(path)
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return f.Close()
}

// SplitChunks cuts text into pieces of at most limit runes. It breaks after
// sentence and clause punctuation (including the Devanagari danda), packs
// short pieces together, and falls back to word and then rune boundaries for
// pieces that are still too long.
func SplitChunks(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxChunkRunes
	}

	var pieces []string
	for _, p := range splitPunct(text) {
		pieces = append(pieces, splitLong(p, limit)...)
	}

	var chunks []string
	var cur strings.Builder
	curLen := 0
	for _, p := range pieces {
		n := utf8.RuneCountInString(p)
		if curLen > 0 && curLen+1+n > limit {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(p)
		curLen += n
	}
	if curLen > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

func isBreak(r rune) bool {
	switch r {
	case '.', '!', '?', ',', ';', ':', '\n', '।', '॥', '…':
		return true
	}
	return false
}

// splitPunct splits after break runes and drops empty pieces.
func splitPunct(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if !isBreak(r) {
			continue
		}
		end := i + utf8.RuneLen(r)
		if p := strings.TrimSpace(text[start:end]); p != "" && !onlyBreaks(p) {
			out = append(out, p)
		}
		start = end
	}
	if p := strings.TrimSpace(text[start:]); p != "" && !onlyBreaks(p) {
		out = append(out, p)
	}
	return out
}

func onlyBreaks(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !isBreak(r) && r != ' ' }) < 0
}

// splitLong breaks s at the last space before limit runes, or hard at limit.
func splitLong(s string, limit int) []string {
	var out []string
	for utf8.RuneCountInString(s) > limit {
		runes := []rune(s)
		cut := limit
		if sp := strings.LastIndex(string(runes[:limit+1]), " "); sp > 0 {
			cut = utf8.RuneCountInString(string(runes[:limit+1])[:sp])
		}
		out = append(out, strings.TrimSpace(string(runes[:cut])))
		s = strings.TrimSpace(string(runes[cut:]))
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}
