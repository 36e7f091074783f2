package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for PlanRunsTotal.
const (
	OutcomeOK        = "ok"
	OutcomeNoOrders  = "no_orders"
	OutcomeNoRoute   = "no_route"
	OutcomeCancelled = "cancelled"
	OutcomeError     = "error"
)

// Registry holds the planner metrics on a dedicated Prometheus registry.
// A nil *Registry is valid and records nothing.
type Registry struct {
	registry *prometheus.Registry

	PlanRunsTotal       *prometheus.CounterVec
	PlanDuration        prometheus.Histogram
	IterationsTotal     prometheus.Counter
	TrucksReducedTotal  prometheus.Counter
	BestTotal           *prometheus.GaugeVec
	ActiveTrucks        prometheus.Gauge
	DistanceLookupTotal *prometheus.CounterVec
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{registry: reg}

	r.PlanRunsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_runs_total",
			Help: "Planning runs by outcome",
		},
		[]string{"outcome"},
	)
	r.PlanDuration = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "planner_run_duration_seconds",
			Help:    "Wall time of a planning run, graph fetch included",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)
	r.IterationsTotal = promauto.With(reg).NewCounter(
		prometheus.CounterOpts{
			Name: "planner_iterations_total",
			Help: "Optimizer iterations completed",
		},
	)
	r.TrucksReducedTotal = promauto.With(reg).NewCounter(
		prometheus.CounterOpts{
			Name: "planner_trucks_reduced_total",
			Help: "Iterations in which a route with one truck fewer won",
		},
	)
	r.BestTotal = promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "planner_best_total",
			Help: "Optimized total of the last accepted route",
		},
		[]string{"optimize_by"},
	)
	r.ActiveTrucks = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "planner_active_trucks",
			Help: "Trucks used by the last accepted route",
		},
	)
	r.DistanceLookupTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_distance_lookups_total",
			Help: "Provider calls made while building a graph, by kind",
		},
		[]string{"kind"},
	)

	return r
}

func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Registry) RecordPlan(outcome string, duration time.Duration) {
	if r == nil {
		return
	}
	r.PlanRunsTotal.WithLabelValues(outcome).Inc()
	r.PlanDuration.Observe(duration.Seconds())
}

func (r *Registry) RecordIteration(trucksReduced bool) {
	if r == nil {
		return
	}
	r.IterationsTotal.Inc()
	if trucksReduced {
		r.TrucksReducedTotal.Inc()
	}
}

func (r *Registry) RecordBest(optimizeBy string, total, trucks int) {
	if r == nil {
		return
	}
	r.BestTotal.WithLabelValues(optimizeBy).Set(float64(total))
	r.ActiveTrucks.Set(float64(trucks))
}

// RecordLookup counts one provider call; kind is "matrix" or "pair".
func (r *Registry) RecordLookup(kind string) {
	if r == nil {
		return
	}
	r.DistanceLookupTotal.WithLabelValues(kind).Inc()
}
