package observability

import (
	"context"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by engine lifecycle hooks.
type Metrics struct {
	Runs      *prometheus.CounterVec
	Steps     *prometheus.CounterVec
	Errors    *prometheus.CounterVec
	TapeCells *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// Pass prometheus.NewRegistry() in tests to avoid global state.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_runs_total",
				Help: "Total number of finished runs by outcome",
			},
			[]string{"machine", "status"},
		),
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_steps_total",
				Help: "Total number of transitions applied",
			},
			[]string{"machine"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_errors_total",
				Help: "Total number of aborted runs by error kind",
			},
			[]string{"machine", "kind"},
		),
		TapeCells: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "turing_tape_cells",
				Help:    "Tape length at the end of a run",
				Buckets: prometheus.ExponentialBuckets(4, 4, 8),
			},
			[]string{"machine"},
		),
	}
	reg.MustRegister(m.Runs, m.Steps, m.Errors, m.TapeCells)
	return m
}

// Hooks returns lifecycle hooks that record every step and halt.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			m.Steps.WithLabelValues(e.Machine).Inc()
		},
		OnHalt: func(ctx context.Context, e *domain.HaltEvent) {
			m.Runs.WithLabelValues(e.Machine, string(e.Status)).Inc()
			m.TapeCells.WithLabelValues(e.Machine).Observe(float64(e.TapeSize))
			if e.Err != nil {
				m.Errors.WithLabelValues(e.Machine, domain.ErrorKind(e.Err)).Inc()
			}
		},
	}
}

// ObserveAbort records runs stopped outside the engine, such as by the step
// budget or cancellation, which never reach a halt hook.
func (m *Metrics) ObserveAbort(machine string, err error) {
	if err == nil {
		return
	}
	m.Errors.WithLabelValues(machine, domain.ErrorKind(err)).Inc()
}
