package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/cartsync/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cartsync"

// Metrics collects mutation and reconciliation metrics.
type Metrics struct {
	mutations      *prometheus.CounterVec
	mutationTime   *prometheus.HistogramVec
	inFlight       prometheus.Gauge
	reconciliation *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// Pass prometheus.DefaultRegisterer to expose them on promhttp.Handler().
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mutations_total",
				Help:      "Total number of checkout mutations by operation and result",
			},
			[]string{"op", "result"},
		),
		mutationTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "remote_call_duration_seconds",
				Help:      "Duration of remote checkout mutations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mutations_in_flight",
			Help:      "Mutations currently waiting on the backend",
		}),
		reconciliation: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconciliations_total",
				Help:      "Total number of reconciliation runs by outcome",
			},
			[]string{"outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.mutations, m.mutationTime, m.inFlight, m.reconciliation} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMutationStart: func(ctx context.Context, e *domain.MutationEvent) {
			m.inFlight.Inc()
		},
		OnMutationEnd: func(ctx context.Context, e *domain.MutationEvent) {
			m.inFlight.Dec()
			result := "ok"
			if e.Err != nil {
				result = "error"
			}
			m.mutations.WithLabelValues(e.Op, result).Inc()
			m.mutationTime.WithLabelValues(e.Op).Observe(e.Duration.Seconds())
		},
		OnReconcile: func(ctx context.Context, e *domain.ReconcileEvent) {
			m.reconciliation.WithLabelValues(string(e.Outcome)).Inc()
		},
	}
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
