package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/seenimoa/newsvani/internal/analysis/aggregate"
	"github.com/seenimoa/newsvani/internal/analysis/sentiment"
	"github.com/seenimoa/newsvani/internal/config"
	"github.com/seenimoa/newsvani/internal/datasource"
	"github.com/seenimoa/newsvani/internal/infra"
	"github.com/seenimoa/newsvani/internal/narrative"
	"github.com/seenimoa/newsvani/internal/speech"
	"github.com/seenimoa/newsvani/pkg/models"
)

// NewFetcher builds the configured news source, wrapped in the fragment
// cache and rate limiter when they are enabled.
func NewFetcher(cfg config.FetchConfig) (datasource.Fetcher, error) {
	f, err := datasource.New(cfg.Provider, datasource.Options{
		UserAgent: cfg.UserAgent,
		Client:    datasource.NewHTTPClient(cfg.Timeout()),
	})
	if err != nil {
		return nil, err
	}
	if cfg.CacheTTL <= 0 && cfg.RateLimit <= 0 {
		return f, nil
	}

	var limiter *infra.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = infra.NewRateLimiter(cfg.RateLimit, time.Second)
	}
	return datasource.NewCached(f, infra.NewCache[[]models.Fragment](cfg.TTL()), limiter), nil
}

// FromConfig assembles a Pipeline from cfg. progress may be nil.
func FromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger, progress func(Event)) (*Pipeline, error) {
	fetcher, err := NewFetcher(cfg.Fetch)
	if err != nil {
		return nil, fmt.Errorf("news source: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	translator, err := speech.NewTranslator(ctx, cfg.Speech.Translator, cfg.Speech.GeminiKey, cfg.Speech.GeminiModel)
	if errors.Is(err, speech.ErrNoAPIKey) {
		logger.Warn("gemini key not set, using google translator")
		translator, err = speech.NewGoogleTranslator(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("translator: %w", err)
	}

	classifier, err := sentiment.New(cfg.Analysis.Classifier)
	if err != nil {
		return nil, err
	}

	composer := narrative.New()
	if cfg.Analysis.NarrativeArticles > 0 {
		composer.K = cfg.Analysis.NarrativeArticles
	}

	return New(Config{
		Fetcher:    fetcher,
		Classifier: classifier,
		Aggregator: aggregate.Aggregator{
			Extended: cfg.Analysis.ExtendedSummary,
			Keywords: cfg.Analysis.KeywordsTopN,
		},
		Composer:    composer,
		Translator:  translator,
		Synthesizer: speech.NewGoogleTTS(speech.WithConcurrency(cfg.Speech.TTSConcurrency)),
		Language:    cfg.Speech.Language,
		NumArticles: cfg.Fetch.NumArticles,
		TrendingN:   cfg.Analysis.TrendingTopN,
		Logger:      logger,
		Progress:    progress,
	})
}
