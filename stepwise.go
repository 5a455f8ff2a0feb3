package stepwise

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/internal/recipe"
	"github.com/aretw0/stepwise/internal/runtime"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/schema"
)

// DefaultLockTTL bounds how long a run may hold the pipeline lock.
const DefaultLockTTL = 5 * time.Minute

// Scheduler is the high-level entry point of the library. It is built once
// from a step set, proves which execution orders are sound, and runs them.
// A Scheduler is safe for concurrent use.
type Scheduler struct {
	book     *recipe.Book
	executor *runtime.Executor
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	invoker  ports.Invoker
	store    ports.ReportStore
	locker   ports.DistributedLocker
	lockTTL  time.Duration
	stop     bool
	Name     string
}

// Option defines a functional option for configuring the Scheduler.
type Option func(*Scheduler)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
// Calling it more than once merges the hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Scheduler) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithInvoker sets how step bodies are called. By default Step.Body is used.
func WithInvoker(inv ports.Invoker) Option {
	return func(s *Scheduler) {
		s.invoker = inv
	}
}

// WithStopOnFailure aborts a run at the first failing recipe.
func WithStopOnFailure() Option {
	return func(s *Scheduler) {
		s.stop = true
	}
}

// WithReportStore persists every finished run report.
func WithReportStore(store ports.ReportStore) Option {
	return func(s *Scheduler) {
		s.store = store
	}
}

// WithLocker serializes runs of this pipeline, keyed by its name.
// A ttl of zero uses DefaultLockTTL.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(s *Scheduler) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

// WithName labels the pipeline in logs, reports and lock keys.
func WithName(name string) Option {
	return func(s *Scheduler) {
		s.Name = name
	}
}

// New validates steps and discovers their recipes.
// It fails with the construction errors of package domain (ErrAmbiguousGuard,
// ErrUnsatisfiableDependency, ErrNoSoundOrdering, ...).
func New(steps []*domain.Step, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.Name != "" {
		s.logger = s.logger.With("pipeline", s.Name)
	}
	if s.lockTTL <= 0 {
		s.lockTTL = DefaultLockTTL
	}

	book, err := recipe.Build(steps)
	if s.hooks.OnBuild != nil {
		ev := &domain.BuildEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventBuild},
			Steps:     len(steps),
			Err:       err,
		}
		if book != nil {
			ev.Recipes = len(book.Recipes())
		}
		s.hooks.OnBuild(context.Background(), ev)
	}
	if err != nil {
		s.logger.Error("step set rejected", "error", err)
		return nil, err
	}
	s.book = book
	s.logger.Info("recipes discovered", "steps", len(steps), "recipes", len(book.Recipes()))

	execOpts := []runtime.Option{
		runtime.WithLogger(s.logger),
		runtime.WithLifecycleHooks(s.hooks),
		runtime.WithInvoker(s.invoker),
		runtime.WithPipelineName(s.Name),
	}
	if s.stop {
		execOpts = append(execOpts, runtime.WithStopOnFailure())
	}
	s.executor = runtime.NewExecutor(book.Recipes(), execOpts...)

	return s, nil
}

// Run executes every recipe with the given bound inputs and returns the
// report. The report is returned even when err is not nil, unless the
// pipeline lock could not be taken.
func (s *Scheduler) Run(ctx context.Context, bound map[string]any) (*domain.Report, error) {
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, s.lockKey(), s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to lock pipeline %q: %w", s.lockKey(), err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("failed to release pipeline lock", "error", err)
			}
		}()
	}

	report, runErr := s.executor.Run(ctx, bound)

	if s.store != nil {
		if err := s.store.Save(context.WithoutCancel(ctx), report); err != nil {
			return report, errors.Join(runErr, fmt.Errorf("failed to save report %s: %w", report.RunID, err))
		}
	}
	return report, runErr
}

// Report loads a stored run report. It requires WithReportStore.
func (s *Scheduler) Report(ctx context.Context, runID string) (*domain.Report, error) {
	if s.store == nil {
		return nil, domain.ErrReportNotFound
	}
	return s.store.Load(ctx, runID)
}

// Recipes returns the sound execution orders, in enumeration order.
func (s *Scheduler) Recipes() []domain.Recipe {
	return s.book.Recipes()
}

// Steps returns the step descriptors in declaration order.
func (s *Scheduler) Steps() []*domain.Step {
	return s.book.Steps()
}

// Inspect returns the compatibility verdict of every ordered step pair,
// for visualization and tooling.
func (s *Scheduler) Inspect() []domain.Edge {
	return s.book.Edges()
}

// Inputs returns the bound inputs a run expects.
func (s *Scheduler) Inputs() schema.Schema {
	return s.executor.Inputs()
}

func (s *Scheduler) lockKey() string {
	if s.Name == "" {
		return "default"
	}
	return s.Name
}
