package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/stepwise/pkg/domain"
)

// LoggingHooks writes one structured line per lifecycle event.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBuild: func(ctx context.Context, e *domain.BuildEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "build", "steps", e.Steps, "error", e.Err)
				return
			}
			logger.InfoContext(ctx, "build", "steps", e.Steps, "recipes", e.Recipes)
		},
		OnRecipeStart: func(ctx context.Context, e *domain.RecipeEvent) {
			logger.InfoContext(ctx, "recipe_start", "run_id", e.RunID, "recipe", e.Recipe, "steps", e.Steps)
		},
		OnRecipeEnd: func(ctx context.Context, e *domain.RecipeEvent) {
			logger.InfoContext(ctx, "recipe_end", "run_id", e.RunID, "recipe", e.Recipe, "duration", e.Duration, "ok", e.Err == nil)
		},
		OnStepStart: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step_start", "run_id", e.RunID, "recipe", e.Recipe, "step", e.Step, "async", e.Async)
		},
		OnStepEnd: func(ctx context.Context, e *domain.StepEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "step_end", "run_id", e.RunID, "recipe", e.Recipe, "step", e.Step, "error", e.Err)
				return
			}
			logger.DebugContext(ctx, "step_end", "run_id", e.RunID, "recipe", e.Recipe, "step", e.Step, "duration", e.Duration)
		},
		OnFailure: func(ctx context.Context, err error) {
			logger.ErrorContext(ctx, "failure", "kind", Kind(err), "error", err)
		},
	}
}
