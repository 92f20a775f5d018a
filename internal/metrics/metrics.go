// Package metrics exposes run counters for the matching and scoring pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/ppiankov/politikcred/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "politikcred"

// Promise outcomes
const (
	OutcomeMatched   = "matched"
	OutcomeUnmatched = "unmatched"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// Metrics holds the collectors on a private registry. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	registry *prometheus.Registry

	promises      *prometheus.CounterVec
	fallbacks     prometheus.Counter
	scores        *prometheus.CounterVec
	ledger        *prometheus.CounterVec
	matchScore    *prometheus.HistogramVec
	runDuration   *prometheus.HistogramVec
	lastRunFinish *prometheus.GaugeVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		promises: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promises_processed_total",
			Help:      "Pending promises processed by the matcher, by outcome.",
		}, []string{"outcome"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_fallbacks_total",
			Help:      "Promises scored on the keyword path because the embedding provider failed.",
		}),
		scores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consistency_scores_total",
			Help:      "Consistency score calculations, by result.",
		}, []string{"result"}),
		ledger: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credibility_entries_total",
			Help:      "Credibility history entries appended, by reason.",
		}, []string{"reason"}),
		matchScore: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_score",
			Help:      "Best candidate score per promise, by method.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}, []string{"method"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of batch runs, by kind.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"kind"}),
		lastRunFinish: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run, by kind.",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(m.promises, m.fallbacks, m.scores, m.ledger, m.matchScore, m.runDuration, m.lastRunFinish)
	return m
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Promise counts one processed promise
func (m *Metrics) Promise(outcome string) {
	if m == nil {
		return
	}
	m.promises.WithLabelValues(outcome).Inc()
}

// MatchScore records the best candidate score for a promise
func (m *Metrics) MatchScore(method model.Method, score float64) {
	if m == nil {
		return
	}
	m.matchScore.WithLabelValues(string(method)).Observe(score)
}

// Fallback counts one embedding fallback
func (m *Metrics) Fallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}

// Score counts one consistency calculation
func (m *Metrics) Score(err error) {
	if m == nil {
		return
	}
	result := "updated"
	if err != nil {
		result = "failed"
	}
	m.scores.WithLabelValues(result).Inc()
}

// Ledger counts one appended history entry
func (m *Metrics) Ledger(reason model.Reason) {
	if m == nil {
		return
	}
	m.ledger.WithLabelValues(string(reason)).Inc()
}

// Run records a finished run of the given kind (match, score)
func (m *Metrics) Run(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.WithLabelValues(kind).Observe(d.Seconds())
	m.lastRunFinish.WithLabelValues(kind).SetToCurrentTime()
}
