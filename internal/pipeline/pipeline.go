// Package pipeline wires the news fetcher, the article builder and the
// analysis core into a single run, and turns the resulting narrative into
// Hindi audio.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/newsvani/internal/analysis/aggregate"
	"github.com/seenimoa/newsvani/internal/analysis/sentiment"
	"github.com/seenimoa/newsvani/internal/analysis/trending"
	"github.com/seenimoa/newsvani/internal/article"
	"github.com/seenimoa/newsvani/internal/datasource"
	"github.com/seenimoa/newsvani/internal/narrative"
	"github.com/seenimoa/newsvani/internal/speech"
	"github.com/seenimoa/newsvani/pkg/models"
	"github.com/seenimoa/newsvani/pkg/utils"
)

// Stage names reported through the progress callback.
const (
	StageFetch      = "fetch"
	StageBuild      = "build"
	StageAnalyze    = "analyze"
	StageCompose    = "compose"
	StageTranslate  = "translate"
	StageSynthesize = "synthesize"
	StageDone       = "done"
	StageFailed     = "failed"
)

// Defaults used when Config leaves a field zero.
const (
	DefaultArticles = 10
	DefaultTrending = 5
)

// Event describes the progress of a run.
type Event struct {
	Stage   string    `json:"stage"`
	Company string    `json:"company"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

// Report is the outcome of one analysis run.
type Report struct {
	Company   string                  `json:"company"`
	Articles  []models.Article        `json:"articles"`
	Summary   models.Summary          `json:"summary"`
	Trending  models.KeywordFrequency `json:"trending_words"`
	Narrative string                  `json:"narrative"`
	Duration  time.Duration           `json:"duration_ns"`
}

// Config holds the collaborators of a Pipeline. Fetcher is required; every
// other field has a default.
type Config struct {
	Fetcher     datasource.Fetcher
	Classifier  sentiment.Classifier
	Aggregator  aggregate.Aggregator
	Composer    *narrative.Composer
	Translator  speech.Translator
	Synthesizer speech.Synthesizer
	Language    string
	NumArticles int
	TrendingN   int
	Clock       func() time.Time
	Logger      *slog.Logger
	Progress    func(Event)
}

// Pipeline runs company analyses. It is safe for concurrent use as long as
// its collaborators are.
type Pipeline struct {
	fetcher     datasource.Fetcher
	builder     *article.Builder
	aggregator  aggregate.Aggregator
	composer    *narrative.Composer
	translator  speech.Translator
	synthesizer speech.Synthesizer
	language    string
	numArticles int
	trendingN   int
	logger      *slog.Logger
	progress    func(Event)
}

// New validates cfg and builds a Pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("pipeline: fetcher is required")
	}
	if cfg.Classifier == nil {
		cfg.Classifier = sentiment.NewVader()
	}
	if cfg.Composer == nil {
		cfg.Composer = narrative.New()
	}
	if err := cfg.Composer.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if cfg.Language == "" {
		cfg.Language = speech.LangHindi
	}
	if cfg.NumArticles <= 0 {
		cfg.NumArticles = DefaultArticles
	}
	if cfg.TrendingN <= 0 {
		cfg.TrendingN = DefaultTrending
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var opts []article.Option
	if cfg.Clock != nil {
		opts = append(opts, article.WithClock(cfg.Clock))
	}

	return &Pipeline{
		fetcher:     cfg.Fetcher,
		builder:     article.NewBuilder(cfg.Classifier, opts...),
		aggregator:  cfg.Aggregator,
		composer:    cfg.Composer,
		translator:  cfg.Translator,
		synthesizer: cfg.Synthesizer,
		language:    cfg.Language,
		numArticles: cfg.NumArticles,
		trendingN:   cfg.TrendingN,
		logger:      cfg.Logger,
		progress:    cfg.Progress,
	}, nil
}

// Fetch retrieves fragments for company and builds the article batch. A
// failed fetch is reported in Batch.Err, never as a panic or partial batch.
func (p *Pipeline) Fetch(ctx context.Context, company string) models.Batch {
	company = utils.NormalizeCompany(company)
	b := models.Batch{Company: company}

	p.emit(StageFetch, company, p.fetcher.Name())
	frags, err := p.fetcher.Fetch(ctx, company, p.numArticles)
	if err != nil {
		p.logger.Warn("news fetch failed", "company", company, "source", p.fetcher.Name(), "error", err)
		b.Err = err
		return b
	}

	p.emit(StageBuild, company, fmt.Sprintf("%d fragments", len(frags)))
	b.Articles = p.builder.BuildAll(frags)
	return b
}

// Analyze runs fetch, build, aggregation, trending extraction and narrative
// composition for company. The returned error wraps
// datasource.ErrFetchUnavailable, datasource.ErrEmptyCompany or
// narrative.ErrTrendMappingMissing.
func (p *Pipeline) Analyze(ctx context.Context, company string) (*Report, error) {
	start := time.Now()

	b := p.Fetch(ctx, company)
	if !b.OK() {
		p.emit(StageFailed, b.Company, b.Err.Error())
		return nil, b.Err
	}

	report, err := p.AnalyzeBatch(ctx, b)
	if err != nil {
		p.emit(StageFailed, b.Company, err.Error())
		return nil, err
	}
	report.Duration = time.Since(start)

	p.logger.Info("analysis complete",
		"company", report.Company,
		"articles", report.Summary.TotalArticles,
		"trend", report.Summary.OverallTrend,
		"duration", report.Duration,
	)
	p.emit(StageDone, report.Company, string(report.Summary.OverallTrend))
	return report, nil
}

// AnalyzeBatch runs the analysis core over an already built batch.
// Aggregation and trending extraction only read the batch, so they run
// concurrently.
func (p *Pipeline) AnalyzeBatch(ctx context.Context, b models.Batch) (*Report, error) {
	p.emit(StageAnalyze, b.Company, fmt.Sprintf("%d articles", len(b.Articles)))

	var (
		summary models.Summary
		words   models.KeywordFrequency
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary = p.aggregator.Summarize(b.Articles)
		return nil
	})
	g.Go(func() error {
		var err error
		words, err = trending.FromBatch(b, p.trendingN)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.emit(StageCompose, b.Company, "")
	text, err := p.composer.Compose(summary, b.Articles)
	if err != nil {
		p.logger.Error("narrative composition failed", "company", b.Company, "error", err)
		return nil, err
	}

	return &Report{
		Company:   b.Company,
		Articles:  b.Articles,
		Summary:   summary,
		Trending:  words,
		Narrative: text,
	}, nil
}

// Speak translates the report narrative and writes the audio to path. The
// returned error wraps speech.ErrTranslation or speech.ErrSynthesis; the
// report itself remains valid either way.
func (p *Pipeline) Speak(ctx context.Context, r *Report, path string) error {
	if r == nil {
		return errors.New("pipeline: nil report")
	}
	if p.translator == nil || p.synthesizer == nil {
		return fmt.Errorf("%w: speech is not configured", speech.ErrSynthesis)
	}

	p.emit(StageTranslate, r.Company, p.translator.Name())
	hindi, err := p.translator.Translate(ctx, r.Narrative, p.language)
	if err != nil {
		p.logger.Warn("translation failed", "company", r.Company, "translator", p.translator.Name(), "error", err)
		p.emit(StageFailed, r.Company, err.Error())
		return err
	}

	p.emit(StageSynthesize, r.Company, path)
	if err := p.synthesizer.Synthesize(ctx, hindi, p.language, path); err != nil {
		p.logger.Warn("speech synthesis failed", "company", r.Company, "path", path, "error", err)
		p.emit(StageFailed, r.Company, err.Error())
		return err
	}

	p.logger.Info("audio written", "company", r.Company, "path", path)
	p.emit(StageDone, r.Company, path)
	return nil
}

func (p *Pipeline) emit(stage, company, msg string) {
	if p.progress == nil {
		return
	}
	p.progress(Event{Stage: stage, Company: company, Message: msg, Time: time.Now()})
}
