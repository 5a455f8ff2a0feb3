package stepwise_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/pkg/adapters/memory"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/dsl"
	"github.com/aretw0/stepwise/pkg/persistence/middleware"
	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type A struct{ Name string }
type B struct{ Name string }
type C struct{ Name string }

func demoSteps(t *testing.T) []*domain.Step {
	t.Helper()
	b := dsl.New()

	b.Step("Step1").
		Bound("foo", dsl.Type[string]()).
		Returns(dsl.Type[A]()).
		Declares(dsl.Equal[A]("Name", "amir")).
		Do(dsl.Fn1(func(ctx context.Context, foo string) (A, error) {
			return A{Name: "amir"}, nil
		}))

	b.Step("Step2").
		Param("a", dsl.Type[A](), dsl.Equal[A]("Name", "amir")).
		Returns(dsl.Type[B]()).
		Declares(dsl.Equal[B]("Name", "taha")).
		Async().
		Do(dsl.Fn1(func(ctx context.Context, a A) (B, error) {
			return B{Name: "taha"}, nil
		}))

	b.Step("Step3").
		Param("b", dsl.Type[B](), dsl.Equal[B]("Name", "taha")).
		Returns(dsl.Type[C]()).
		Do(dsl.Fn1(func(ctx context.Context, b B) (C, error) {
			return C{Name: "zack"}, nil
		}))

	steps, err := b.Build()
	require.NoError(t, err)
	return steps
}

func TestScheduler_EndToEnd(t *testing.T) {
	sched, err := stepwise.New(demoSteps(t), stepwise.WithName("demo"))
	require.NoError(t, err)

	recipes := sched.Recipes()
	require.Len(t, recipes, 1)
	assert.Equal(t, []string{"Step1", "Step2", "Step3"}, recipes[0].Names())
	assert.Equal(t, []string{"foo"}, sched.Inputs().Keys())

	report, err := sched.Run(context.Background(), map[string]any{"foo": "bar"})
	require.NoError(t, err)
	final, ok := report.Recipes[0].Final()
	require.True(t, ok)
	assert.Equal(t, C{Name: "zack"}, final)
	assert.Equal(t, "demo", report.Pipeline)
}

func TestScheduler_MissingInput(t *testing.T) {
	sched, err := stepwise.New(demoSteps(t))
	require.NoError(t, err)

	_, err = sched.Run(context.Background(), map[string]any{})
	assert.ErrorIs(t, err, domain.ErrIncompleteBoundInputs)
}

func TestScheduler_RejectsUnsoundSet(t *testing.T) {
	steps := demoSteps(t)
	steps = append(steps, &domain.Step{
		Name:         "Twin",
		Params:       []domain.Param{{Name: "foo", Type: dsl.Type[string](), Bound: "foo"}},
		Result:       dsl.Type[A](),
		Declarations: []domain.Predicate{domain.MustPredicate(domain.Equal, dsl.Type[A](), "Name", "amir")},
	})

	var built *domain.BuildEvent
	_, err := stepwise.New(steps, stepwise.WithLifecycleHooks(domain.LifecycleHooks{
		OnBuild: func(_ context.Context, e *domain.BuildEvent) { built = e },
	}))
	assert.ErrorIs(t, err, domain.ErrAmbiguousDeclaration)
	require.NotNil(t, built)
	assert.Equal(t, 4, built.Steps)
	assert.ErrorIs(t, built.Err, domain.ErrAmbiguousDeclaration)
}

func TestScheduler_StoresReports(t *testing.T) {
	store := memory.NewStore()
	sched, err := stepwise.New(demoSteps(t),
		stepwise.WithReportStore(store),
		stepwise.WithLocker(memory.NewLocker(), 0),
	)
	require.NoError(t, err)

	ctx := context.Background()
	report, err := sched.Run(ctx, map[string]any{"foo": "bar"})
	require.NoError(t, err)

	loaded, err := sched.Report(ctx, report.RunID)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, loaded.RunID)

	// The lock is released after each run.
	_, err = sched.Run(ctx, map[string]any{"foo": "bar"})
	require.NoError(t, err)
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestScheduler_FailedRunIsStored(t *testing.T) {
	store := memory.NewStore()
	sched, err := stepwise.New(demoSteps(t), stepwise.WithReportStore(store))
	require.NoError(t, err)

	ctx := context.Background()
	report, err := sched.Run(ctx, nil)
	require.Error(t, err)

	loaded, err := store.Load(ctx, report.RunID)
	require.NoError(t, err)
	assert.True(t, loaded.Failed())
}

func TestScheduler_RedactedFailureIsNotStored(t *testing.T) {
	redact, err := middleware.NewRedactionMiddleware([]string{"^Step2$"})
	require.NoError(t, err)
	store := memory.NewStore()

	reg := registry.NewRegistry()
	reg.Register("Step2", func(context.Context, []any) (any, error) {
		return B{Name: "s3cr3t"}, nil
	})
	sched, err := stepwise.New(demoSteps(t),
		stepwise.WithInvoker(reg),
		stepwise.WithReportStore(middleware.Chain(store, redact)),
	)
	require.NoError(t, err)

	ctx := context.Background()
	report, err := sched.Run(ctx, map[string]any{"foo": "bar"})
	require.ErrorIs(t, err, domain.ErrDeclarationViolated)

	loaded, err := store.Load(ctx, report.RunID)
	require.NoError(t, err)
	require.Len(t, loaded.Recipes, 1)
	assert.NotContains(t, loaded.Recipes[0].Error, "s3cr3t")
	assert.NotContains(t, loaded.Error, "s3cr3t")
	assert.Contains(t, loaded.Error, "step Step2")
}

func TestScheduler_RegistryInvoker(t *testing.T) {
	steps := demoSteps(t)
	reg := registry.NewRegistry()
	reg.Register("Step3", func(context.Context, []any) (any, error) {
		return C{Name: "overridden"}, nil
	})

	sched, err := stepwise.New(steps, stepwise.WithInvoker(reg))
	require.NoError(t, err)

	report, err := sched.Run(context.Background(), map[string]any{"foo": "bar"})
	require.NoError(t, err)
	final, _ := report.Recipes[0].Final()
	assert.Equal(t, C{Name: "overridden"}, final)
}

func TestScheduler_Inspect(t *testing.T) {
	sched, err := stepwise.New(demoSteps(t))
	require.NoError(t, err)

	var compatible []domain.Edge
	for _, e := range sched.Inspect() {
		if e.Compatible {
			compatible = append(compatible, e)
		}
	}
	assert.Equal(t, []domain.Edge{
		{From: "Step1", To: "Step2", Compatible: true},
		{From: "Step2", To: "Step3", Compatible: true},
	}, compatible)
}

func TestScheduler_ReportWithoutStore(t *testing.T) {
	sched, err := stepwise.New(demoSteps(t))
	require.NoError(t, err)

	_, err = sched.Report(context.Background(), "any")
	assert.True(t, errors.Is(err, domain.ErrReportNotFound))
}
