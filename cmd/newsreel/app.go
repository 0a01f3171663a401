package main

import (
	"context"
	"fmt"

	"github.com/mohammad-safakhou/newsreel/config"
	"github.com/mohammad-safakhou/newsreel/internal/logger"
	"github.com/mohammad-safakhou/newsreel/internal/queue/streams"
	"github.com/mohammad-safakhou/newsreel/internal/store"
	"github.com/mohammad-safakhou/newsreel/internal/studio"
	"github.com/mohammad-safakhou/newsreel/internal/telemetry"
	"github.com/mohammad-safakhou/newsreel/media/ffmpeg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// app is everything a command needs, built once from configuration.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	registry *prometheus.Registry
	studio   *studio.Studio
	ledger   *store.Store
	redis    *redis.Client
}

type appOption func(*config.Config)

// logToFile keeps the terminal clean for the TUI.
func logToFile(cfg *config.Config) {
	if cfg.General.LogFile == "" {
		cfg.General.LogFile = "newsreel.log"
	}
}

func newApp(ctx context.Context, opts *rootOptions, appOpts ...appOption) (*app, error) {
	cfg, err := config.Load(opts.cfgPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.General.LogLevel = opts.logLevel
	}
	for _, o := range appOpts {
		o(cfg)
	}
	log, err := logger.New(cfg.General)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewMetrics(a.registry)

	var recorders []studio.Recorder
	if cfg.Storage.Postgres.Enabled() {
		a.ledger, err = store.New(ctx, cfg.Storage.Postgres)
		if err != nil {
			return nil, fmt.Errorf("open render ledger: %w", err)
		}
		recorders = append(recorders, a.ledger)
	}
	if cfg.Storage.Redis.Enabled() {
		a.redis, err = streams.Connect(ctx, cfg.Storage.Redis, logger.Component(log, "redis"))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		recorders = append(recorders, streams.NewRenderEvents(streams.NewPublisher(a.redis), cfg.Storage.Redis.Stream, cfg.Storage.Redis.MaxLen))
	}

	a.studio = studio.New(cfg, ffmpeg.New(cfg.Render.FFmpegPath, cfg.Render.FFprobePath),
		studio.WithLogger(log),
		studio.WithMetrics(metrics),
		studio.WithRecorders(recorders...),
	)
	return a, nil
}

// credentials are the keys found in the environment or config file, used to pre-fill the
// operator session.
func (a *app) credentials() studio.Credentials {
	return studio.Credentials{
		NewsAPIKey: a.cfg.Sources.NewsAPI.APIKey,
		LLMKey:     a.cfg.LLM.APIKey(),
	}
}

func (a *app) Close() {
	if a.ledger != nil {
		_ = a.ledger.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
