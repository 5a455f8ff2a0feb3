package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventBuild       EventType = "build"
	EventRecipeStart EventType = "recipe_start"
	EventRecipeEnd   EventType = "recipe_end"
	EventStepStart   EventType = "step_start"
	EventStepEnd     EventType = "step_end"
	EventFailure     EventType = "failure"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
}

// BuildEvent reports the outcome of recipe discovery.
type BuildEvent struct {
	EventBase
	Steps   int   `json:"steps"`
	Recipes int   `json:"recipes"`
	Err     error `json:"-"`
}

// RecipeEvent represents the start or end of one recipe execution.
type RecipeEvent struct {
	EventBase
	Recipe   int           `json:"recipe"`
	Steps    []string      `json:"steps"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// StepEvent represents the start or end of one step within a recipe.
type StepEvent struct {
	EventBase
	Recipe   int           `json:"recipe"`
	Step     string        `json:"step"`
	Async    bool          `json:"async,omitempty"`
	Args     []any         `json:"args,omitempty"`
	Result   any           `json:"result,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for scheduler observability.
// Every hook is optional. Hooks run synchronously on the executing goroutine.
type LifecycleHooks struct {
	OnBuild       func(context.Context, *BuildEvent)
	OnRecipeStart func(context.Context, *RecipeEvent)
	OnRecipeEnd   func(context.Context, *RecipeEvent)
	OnStepStart   func(context.Context, *StepEvent)
	OnStepEnd     func(context.Context, *StepEvent)
	OnFailure     func(context.Context, error)
}

// Merge returns hooks calling h first and then other, for every callback.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnBuild:       chain(h.OnBuild, other.OnBuild),
		OnRecipeStart: chain(h.OnRecipeStart, other.OnRecipeStart),
		OnRecipeEnd:   chain(h.OnRecipeEnd, other.OnRecipeEnd),
		OnStepStart:   chain(h.OnStepStart, other.OnStepStart),
		OnStepEnd:     chain(h.OnStepEnd, other.OnStepEnd),
		OnFailure:     chain(h.OnFailure, other.OnFailure),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
