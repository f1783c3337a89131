// Package speech turns the English narrative into Hindi text and audio.
// Translators and synthesizers are interfaces so the pipeline can be tested
// without network access.
package speech

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Language codes understood by the translators and the TTS endpoint.
const (
	LangHindi   = "hi"
	LangEnglish = "en"
	LangAuto    = "auto"
)

// Errors returned by translators and synthesizers. Both are recoverable:
// the analysis report stays valid when audio cannot be produced.
var (
	ErrTranslation = errors.New("speech: translation failed")
	ErrSynthesis   = errors.New("speech: synthesis failed")
	ErrNoAPIKey    = errors.New("speech: API key not configured")
)

// Translator converts text into the target language.
type Translator interface {
	Name() string
	Translate(ctx context.Context, text, lang string) (string, error)
}

// Synthesizer renders text as speech and writes an MP3 file to path.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang, path string) error
}

// DefaultUserAgent is sent with requests to the public Google endpoints.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

func defaultClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
