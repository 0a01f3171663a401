// Package studio holds an operator's state between the three actions (fetch, select,
// produce) and wires the headline source, script generator and renderer together.
package studio

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/mohammad-safakhou/newsreel/config"
	"github.com/mohammad-safakhou/newsreel/internal/logger"
	"github.com/mohammad-safakhou/newsreel/internal/render"
	"github.com/mohammad-safakhou/newsreel/internal/telemetry"
	"github.com/mohammad-safakhou/newsreel/models"
	"github.com/mohammad-safakhou/newsreel/news"
	"github.com/mohammad-safakhou/newsreel/news/newsapi"
	"github.com/mohammad-safakhou/newsreel/provider"
	"github.com/mohammad-safakhou/newsreel/speech"
	"github.com/sirupsen/logrus"
)

// HeadlineSource fetches the operator's headline list.
type HeadlineSource interface {
	Fetch(ctx context.Context) (news.Result, error)
}

// Recorder receives the outcome of every production attempt. Errors are logged and never
// fail the production.
type Recorder interface {
	Record(ctx context.Context, rec models.RenderRecord) error
}

// Media is the probe and encoder pair the renderer needs; *ffmpeg.FFmpeg satisfies it.
type Media interface {
	render.Prober
	render.Encoder
}

type Studio struct {
	cfg        *config.Config
	media      Media
	headlines  func(key string) HeadlineSource
	writer     func(key string) (provider.Provider, error)
	voice      func(key string) (speech.Synthesizer, error)
	httpClient *http.Client
	recorders  []Recorder
	log        *logrus.Logger
	metrics    *telemetry.Metrics
}

type Option func(*Studio)

func WithLogger(log *logrus.Logger) Option {
	return func(s *Studio) { s.log = log }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Studio) { s.metrics = m }
}

// WithRecorders adds production recorders (ledger, event stream).
func WithRecorders(rs ...Recorder) Option {
	return func(s *Studio) { s.recorders = append(s.recorders, rs...) }
}

// WithHeadlineSource replaces the NewsAPI source.
func WithHeadlineSource(fn func(key string) HeadlineSource) Option {
	return func(s *Studio) { s.headlines = fn }
}

// WithWriter replaces the configured script generator.
func WithWriter(fn func(key string) (provider.Provider, error)) Option {
	return func(s *Studio) { s.writer = fn }
}

// WithVoice replaces the configured speech synthesizer.
func WithVoice(fn func(key string) (speech.Synthesizer, error)) Option {
	return func(s *Studio) { s.voice = fn }
}

// WithHTTPClient sets the client used for lead image downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Studio) { s.httpClient = c }
}

// New builds a Studio whose sources all come from cfg.
func New(cfg *config.Config, media Media, opts ...Option) *Studio {
	s := &Studio{
		cfg:        cfg,
		media:      media,
		httpClient: http.DefaultClient,
	}
	s.headlines = func(key string) HeadlineSource {
		n := cfg.Sources.NewsAPI
		return news.NewRetriever(newsapi.NewsAPI{
			APIKey:     key,
			Endpoint:   n.Endpoint,
			Language:   n.Language,
			PageSize:   n.PageSize,
			HTTPClient: &http.Client{Timeout: n.Timeout},
		}, n.MaxResults)
	}
	s.writer = func(key string) (provider.Provider, error) {
		return provider.NewProvider(provider.Client(cfg.LLM.Provider), key, cfg.LLM)
	}
	s.voice = func(key string) (speech.Synthesizer, error) {
		return speech.NewSynthesizer(cfg.Speech, cfg.LLM, key)
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	return s
}

// NewSession creates an empty operator session whose artifacts live under
// {render.output_dir}/{id}.
func (s *Studio) NewSession(id string) *Session {
	return &Session{
		studio:  s,
		id:      id,
		workdir: filepath.Join(s.cfg.Render.Normalize().OutputDir, id),
		log:     logger.Component(s.log, "studio").WithField("session", id),
	}
}

func (s *Studio) renderer(voice speech.Synthesizer, log *logrus.Entry) *render.Renderer {
	return render.New(s.cfg.Render, voice, s.media, s.media,
		render.WithLogger(log.WithField("component", "render")),
		render.WithMetrics(s.metrics),
		render.WithHTTPClient(s.httpClient),
	)
}

func (s *Studio) record(ctx context.Context, log *logrus.Entry, rec models.RenderRecord) {
	s.metrics.Production(string(rec.Status))
	for _, r := range s.recorders {
		if err := r.Record(ctx, rec); err != nil {
			log.WithError(err).Warn("failed to record production")
		}
	}
}
