package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the production counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	fetches     *prometheus.CounterVec
	scripts     *prometheus.CounterVec
	stages      *prometheus.HistogramVec
	productions *prometheus.CounterVec
	imageSkips  prometheus.Counter
	narration   prometheus.Histogram
}

// NewMetrics registers the newsreel collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsreel",
			Name:      "headline_fetches_total",
			Help:      "Headline fetches by outcome (ok, empty, failed).",
		}, []string{"outcome"}),
		scripts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsreel",
			Name:      "scripts_total",
			Help:      "Script generation calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		stages: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "newsreel",
			Name:      "render_stage_seconds",
			Help:      "Time spent in each render stage.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		productions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newsreel",
			Name:      "productions_total",
			Help:      "Finished productions by status.",
		}, []string{"status"}),
		imageSkips: f.NewCounter(prometheus.CounterOpts{
			Namespace: "newsreel",
			Name:      "lead_image_skipped_total",
			Help:      "Renders that went ahead without the lead image.",
		}),
		narration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "newsreel",
			Name:      "narration_seconds",
			Help:      "Narration length, which is also the video length.",
			Buckets:   []float64{10, 15, 20, 25, 30, 40, 50, 60, 90},
		}),
	}
}

func (m *Metrics) Fetch(outcome string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Script(provider, outcome string) {
	if m == nil {
		return
	}
	m.scripts.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) Stage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stages.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) Production(status string) {
	if m == nil {
		return
	}
	m.productions.WithLabelValues(status).Inc()
}

func (m *Metrics) ImageSkipped() {
	if m == nil {
		return
	}
	m.imageSkips.Inc()
}

func (m *Metrics) Narration(d time.Duration) {
	if m == nil {
		return
	}
	m.narration.Observe(d.Seconds())
}
