package observability

import (
	"context"
	"time"

	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Build outcomes.
const (
	OutcomeFeasible   = "feasible"
	OutcomeInfeasible = "infeasible"
	OutcomeUntrained  = "untrained"
	OutcomeError      = "error"
)

// Metrics groups every collector exported by mnemo.
type Metrics struct {
	Builds        *prometheus.CounterVec
	BuildDuration prometheus.Histogram
	StageDuration *prometheus.HistogramVec
	Removed       *prometheus.CounterVec
	StoreOps      *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec
	Requests      *prometheus.CounterVec
	QueueDepth    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mnemo_builds_total",
				Help: "Constrained model builds by outcome",
			},
			[]string{"outcome"},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mnemo_build_duration_seconds",
				Help:    "Duration of constrained model builds",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mnemo_build_stage_duration_seconds",
				Help:    "Duration of each build stage",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"stage"},
		),
		Removed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mnemo_removed_tokens_total",
				Help: "Tokens pruned from layers, by stage",
			},
			[]string{"stage"},
		),
		StoreOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mnemo_model_store_operations_total",
				Help: "Model store calls by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "mnemo_model_store_duration_seconds",
				Help: "Latency of model store calls",
			},
			[]string{"op"},
		),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mnemo_requests_total",
				Help: "Generation requests by transport and status",
			},
			[]string{"transport", "status"},
		),
		QueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mnemo_queue_depth",
				Help: "Build requests waiting for a worker",
			},
		),
	}

	reg.MustRegister(
		m.Builds,
		m.BuildDuration,
		m.StageDuration,
		m.Removed,
		m.StoreOps,
		m.StoreDuration,
		m.Requests,
		m.QueueDepth,
	)
	return m
}

// Hooks returns build hooks that record into m.
func (m *Metrics) Hooks() domain.BuildHooks {
	return domain.BuildHooks{
		OnStage: func(_ context.Context, ev *domain.StageEvent) {
			m.StageDuration.WithLabelValues(string(ev.Stage)).Observe(ev.Duration.Seconds())
			if ev.Removed > 0 {
				m.Removed.WithLabelValues(string(ev.Stage)).Add(float64(ev.Removed))
			}
		},
		OnBuild: func(_ context.Context, ev *domain.BuildEvent) {
			m.Builds.WithLabelValues(BuildOutcome(ev)).Inc()
			m.BuildDuration.Observe(ev.Duration.Seconds())
		},
	}
}

// BuildOutcome classifies a finished build.
func BuildOutcome(ev *domain.BuildEvent) string {
	switch {
	case ev.Err != nil:
		return OutcomeError
	case !ev.Trained:
		return OutcomeUntrained
	case ev.Feasible:
		return OutcomeFeasible
	default:
		return OutcomeInfeasible
	}
}

// ObserveStore implements middleware.StoreRecorder.
func (m *Metrics) ObserveStore(op, outcome string, elapsed time.Duration) {
	m.StoreOps.WithLabelValues(op, outcome).Inc()
	m.StoreDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveRequest counts one transport request.
func (m *Metrics) ObserveRequest(transport, status string) {
	m.Requests.WithLabelValues(transport, status).Inc()
}

// SetQueueDepth implements pool.Observer.
func (m *Metrics) SetQueueDepth(n int) {
	m.QueueDepth.Set(float64(n))
}
