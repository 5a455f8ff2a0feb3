package observability

import (
	"context"
	"errors"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by scheduler hooks.
type Metrics struct {
	builds       *prometheus.CounterVec
	recipes      *prometheus.CounterVec
	recipeTime   prometheus.Histogram
	steps        *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	failures     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Step set constructions by outcome.",
		}, []string{"outcome"}),
		recipes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recipes_total",
			Help:      "Recipe executions by outcome.",
		}, []string{"outcome"}),
		recipeTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recipe_duration_seconds",
			Help:      "Duration of recipe executions.",
			Buckets:   prometheus.DefBuckets,
		}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Step executions by step and outcome.",
		}, []string{"step", "outcome"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of step bodies.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Run failures by kind.",
		}, []string{"kind"}),
	}

	for _, c := range []prometheus.Collector{m.builds, m.recipes, m.recipeTime, m.steps, m.stepDuration, m.failures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBuild: func(_ context.Context, e *domain.BuildEvent) {
			m.builds.WithLabelValues(outcome(e.Err)).Inc()
		},
		OnRecipeEnd: func(_ context.Context, e *domain.RecipeEvent) {
			m.recipes.WithLabelValues(outcome(e.Err)).Inc()
			m.recipeTime.Observe(e.Duration.Seconds())
		},
		OnStepEnd: func(_ context.Context, e *domain.StepEvent) {
			m.steps.WithLabelValues(e.Step, outcome(e.Err)).Inc()
			m.stepDuration.WithLabelValues(e.Step).Observe(e.Duration.Seconds())
		},
		OnFailure: func(_ context.Context, err error) {
			m.failures.WithLabelValues(Kind(err)).Inc()
		},
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var kinds = []struct {
	err  error
	name string
}{
	{domain.ErrIncompleteBoundInputs, "incomplete_bound_inputs"},
	{domain.ErrInvalidBoundInput, "invalid_bound_input"},
	{domain.ErrUnsatisfiableParameter, "unsatisfiable_parameter"},
	{domain.ErrDeclarationViolated, "declaration_violated"},
	{domain.ErrStepFailed, "step_failed"},
	{context.Canceled, "canceled"},
	{context.DeadlineExceeded, "deadline_exceeded"},
}

// Kind classifies a run error into a stable label value.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "other"
}
