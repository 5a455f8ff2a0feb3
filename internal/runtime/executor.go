// Package runtime executes recipes, enforcing guards and declarations while
// steps run.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/schema"
	"github.com/google/uuid"
)

// Executor runs a fixed list of recipes. It holds no state between runs,
// so concurrent and repeated calls to Run are independent.
type Executor struct {
	recipes       []domain.Recipe
	inputs        schema.Schema
	invoker       ports.Invoker
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
	stopOnFailure bool
	name          string
	newID         func() string
	now           func() time.Time
}

// NewExecutor creates an executor for recipes, in the order given.
func NewExecutor(recipes []domain.Recipe, opts ...Option) *Executor {
	e := &Executor{
		recipes: recipes,
		inputs:  schema.FromSteps(stepsOf(recipes)),
		invoker: ports.InvokerFunc(callBody),
		logger:  logging.NewNop(),
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Inputs returns the bound inputs a run expects.
func (e *Executor) Inputs() schema.Schema {
	return e.inputs
}

// Run executes every recipe with the given bound inputs.
//
// Bound inputs are checked first: a missing name fails with
// domain.ErrIncompleteBoundInputs and a value of the wrong type with
// domain.ErrInvalidBoundInput, before any step runs. Each recipe then runs
// with a fresh value bag. Recipe failures are joined into the returned error;
// the report always lists what ran.
func (e *Executor) Run(ctx context.Context, bound map[string]any) (*domain.Report, error) {
	runID := e.newID()
	logger := e.logger.With("run_id", runID)
	report := &domain.Report{
		RunID:     runID,
		Pipeline:  e.name,
		StartedAt: e.now(),
	}

	if err := e.checkInputs(bound); err != nil {
		logger.Error("bound inputs rejected", "error", err)
		if e.hooks.OnFailure != nil {
			e.hooks.OnFailure(ctx, err)
		}
		report.Error = err.Error()
		report.FinishedAt = e.now()
		return report, err
	}

	logger.Info("run started", "recipes", len(e.recipes))

	var errs []error
	for i, r := range e.recipes {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res := e.runRecipe(ctx, logger, runID, i, r, bound)
		report.Recipes = append(report.Recipes, res)
		if res.Err != nil {
			errs = append(errs, res.Err)
			if e.stopOnFailure {
				break
			}
		}
	}

	report.FinishedAt = e.now()
	err := errors.Join(errs...)
	if err != nil {
		report.Error = err.Error()
		logger.Warn("run finished with failures", "failed", len(errs))
	} else {
		logger.Info("run finished", "duration", report.FinishedAt.Sub(report.StartedAt))
	}
	return report, err
}

func (e *Executor) checkInputs(bound map[string]any) error {
	err := schema.Validate(e.inputs, bound)
	if err == nil {
		return nil
	}
	if errors.Is(err, schema.ErrRequired) {
		return &domain.StepError{
			Kind:   domain.ErrIncompleteBoundInputs,
			Recipe: domain.NoRecipe,
			Msg:    "missing " + strings.Join(schema.Missing(e.inputs, bound), ", "),
			Err:    err,
		}
	}
	return &domain.StepError{
		Kind:   domain.ErrInvalidBoundInput,
		Recipe: domain.NoRecipe,
		Err:    err,
	}
}

func (e *Executor) runRecipe(ctx context.Context, logger *slog.Logger, runID string, index int, r domain.Recipe, bound map[string]any) domain.RecipeResult {
	logger = logger.With("recipe", index)
	start := e.now()
	res := domain.RecipeResult{Index: index, Steps: r.Names()}

	if e.hooks.OnRecipeStart != nil {
		e.hooks.OnRecipeStart(ctx, &domain.RecipeEvent{
			EventBase: e.base(domain.EventRecipeStart, runID),
			Recipe:    index,
			Steps:     res.Steps,
		})
	}
	logger.Debug("recipe started", "steps", r.String())

	values := &bag{}
	for _, step := range r {
		out, err := e.runStep(ctx, logger, runID, index, step, bound, values)
		if err != nil {
			res.Err = err
			res.Error = err.Error()
			break
		}
		res.Results = append(res.Results, out)
	}

	if e.hooks.OnRecipeEnd != nil {
		e.hooks.OnRecipeEnd(ctx, &domain.RecipeEvent{
			EventBase: e.base(domain.EventRecipeEnd, runID),
			Recipe:    index,
			Steps:     res.Steps,
			Duration:  e.now().Sub(start),
			Err:       res.Err,
		})
	}

	if res.Err != nil {
		logger.Error("recipe failed", "error", res.Err)
		if e.hooks.OnFailure != nil {
			e.hooks.OnFailure(ctx, res.Err)
		}
	} else {
		logger.Info("recipe finished", "steps", len(res.Results))
	}
	return res
}

func (e *Executor) runStep(ctx context.Context, logger *slog.Logger, runID string, recipe int, step *domain.Step, bound map[string]any, values *bag) (domain.StepResult, error) {
	args, err := resolve(recipe, step, bound, values)
	if err != nil {
		return domain.StepResult{}, err
	}

	if e.hooks.OnStepStart != nil {
		e.hooks.OnStepStart(ctx, &domain.StepEvent{
			EventBase: e.base(domain.EventStepStart, runID),
			Recipe:    recipe,
			Step:      step.Name,
			Async:     step.Async,
			Args:      args,
		})
	}
	logger.Debug("step started", "step", step.Name, "async", step.Async)

	start := e.now()
	result, err := e.invoke(ctx, step, args)
	if err == nil {
		err = checkResult(recipe, step, result)
	}
	took := e.now().Sub(start)
	if err != nil {
		var se *domain.StepError
		if !errors.As(err, &se) {
			err = &domain.StepError{Kind: domain.ErrStepFailed, Step: step.Name, Recipe: recipe, Err: err}
		}
	}

	if e.hooks.OnStepEnd != nil {
		e.hooks.OnStepEnd(ctx, &domain.StepEvent{
			EventBase: e.base(domain.EventStepEnd, runID),
			Recipe:    recipe,
			Step:      step.Name,
			Async:     step.Async,
			Result:    result,
			Duration:  took,
			Err:       err,
		})
	}
	if err != nil {
		return domain.StepResult{}, err
	}

	values.push(step.Result, result)
	logger.Debug("step finished", "step", step.Name, "duration", took)

	return domain.StepResult{
		Step:     step.Name,
		Type:     domain.TypeName(step.Result),
		Value:    result,
		Duration: took,
	}, nil
}

// resolve builds the argument list of step, left to right.
func resolve(recipe int, step *domain.Step, bound map[string]any, values *bag) ([]any, error) {
	args := make([]any, len(step.Params))
	for i, p := range step.Params {
		if p.IsBound() {
			args[i] = bound[p.Bound]
			continue
		}
		v, ok := values.find(p)
		if !ok {
			return nil, &domain.StepError{
				Kind:   domain.ErrUnsatisfiableParameter,
				Step:   step.Name,
				Param:  p.Name,
				Recipe: recipe,
				Msg:    fmt.Sprintf("no produced %s satisfies its guards", domain.TypeName(p.Type)),
			}
		}
		args[i] = v
	}
	return args, nil
}

type outcome struct {
	value any
	err   error
}

// invoke calls the body. Async steps run on their own goroutine and the
// caller blocks until they complete or ctx is done.
func (e *Executor) invoke(ctx context.Context, step *domain.Step, args []any) (any, error) {
	if !step.Async {
		return e.call(ctx, step, args)
	}

	done := make(chan outcome, 1)
	go func() {
		v, err := e.call(ctx, step, args)
		done <- outcome{value: v, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Executor) call(ctx context.Context, step *domain.Step, args []any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return e.invoker.Invoke(ctx, step, args)
}

// checkResult verifies the returned value against the step result type and
// every declaration.
func checkResult(recipe int, step *domain.Step, result any) error {
	if !assignable(result, step.Result) {
		return &domain.StepError{
			Kind:   domain.ErrStepFailed,
			Step:   step.Name,
			Recipe: recipe,
			Msg:    fmt.Sprintf("returned %T, want %s", result, domain.TypeName(step.Result)),
		}
	}
	for i := range step.Declarations {
		d := step.Declarations[i]
		if !d.Matches(result) {
			return &domain.StepError{
				Kind:      domain.ErrDeclarationViolated,
				Step:      step.Name,
				Predicate: &d,
				Recipe:    recipe,
			}
		}
	}
	return nil
}

func assignable(v any, typ reflect.Type) bool {
	if v == nil {
		switch typ.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return true
		}
		return false
	}
	return reflect.TypeOf(v).AssignableTo(typ)
}

func callBody(ctx context.Context, step *domain.Step, args []any) (any, error) {
	if step.Body == nil {
		return nil, fmt.Errorf("step %s has no body", step.Name)
	}
	return step.Body(ctx, args)
}

func (e *Executor) base(t domain.EventType, runID string) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, RunID: runID}
}

func stepsOf(recipes []domain.Recipe) []*domain.Step {
	seen := make(map[*domain.Step]bool)
	var steps []*domain.Step
	for _, r := range recipes {
		for _, s := range r {
			if !seen[s] {
				seen[s] = true
				steps = append(steps, s)
			}
		}
	}
	return steps
}
