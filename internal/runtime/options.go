package runtime

import (
	"log/slog"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the structured logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observer callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Executor) {
		e.hooks = hooks
	}
}

// WithInvoker replaces the default invoker, which calls Step.Body.
func WithInvoker(inv ports.Invoker) Option {
	return func(e *Executor) {
		if inv != nil {
			e.invoker = inv
		}
	}
}

// WithStopOnFailure makes a failing recipe abort the rest of the run.
// By default the remaining recipes still execute.
func WithStopOnFailure() Option {
	return func(e *Executor) {
		e.stopOnFailure = true
	}
}

// WithPipelineName labels reports and log lines.
func WithPipelineName(name string) Option {
	return func(e *Executor) {
		e.name = name
	}
}

// WithRunID overrides how run ids are generated.
func WithRunID(newID func() string) Option {
	return func(e *Executor) {
		if newID != nil {
			e.newID = newID
		}
	}
}

// WithClock overrides the time source used for reports and events.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}
