package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/doeshing/pteroai-go/internal/ports"
)

// Prometheus holds the pipeline instruments on its own registry.
type Prometheus struct {
	registry *prometheus.Registry

	oracleCalls       *prometheus.CounterVec
	oracleDuration    *prometheus.HistogramVec
	degradedStages    *prometheus.CounterVec
	decisions         *prometheus.CounterVec
	knowledgeAnalyses *prometheus.CounterVec
}

// New registers the instruments on a fresh registry.
func New() *Prometheus {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		oracleCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pteroai_oracle_calls_total",
			Help: "Oracle calls by role and outcome",
		}, []string{"role", "outcome"}),
		oracleDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pteroai_oracle_call_duration_seconds",
			Help:    "Oracle round-trip latency",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		}, []string{"role"}),
		degradedStages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pteroai_degraded_stages_total",
			Help: "Pipeline stages that fell back to their default",
		}, []string{"stage"}),
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pteroai_decisions_total",
			Help: "Decisions by security level and cache hit",
		}, []string{"level", "cached"}),
		knowledgeAnalyses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pteroai_file_analyses_total",
			Help: "File knowledge analyses by outcome",
		}, []string{"outcome"}),
	}
}

func (p *Prometheus) ObserveOracleCall(role, outcome string, elapsed time.Duration) {
	p.oracleCalls.WithLabelValues(role, outcome).Inc()
	p.oracleDuration.WithLabelValues(role).Observe(elapsed.Seconds())
}

func (p *Prometheus) IncDegradedStage(stage string) {
	p.degradedStages.WithLabelValues(stage).Inc()
}

func (p *Prometheus) IncDecision(level string, cached bool) {
	label := "false"
	if cached {
		label = "true"
	}
	p.decisions.WithLabelValues(level, label).Inc()
}

func (p *Prometheus) IncKnowledgeAnalysis(outcome string) {
	p.knowledgeAnalyses.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry exposes the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

var _ ports.Metrics = (*Prometheus)(nil)
