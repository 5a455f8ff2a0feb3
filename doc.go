/*
Package stepwise is a declarative pipeline scheduler.

Steps are independent units of work with typed inputs and a typed result.
Each step may guard its inputs with preconditions and declare postconditions
on its result. From these descriptors alone, stepwise proves which total
execution orders ("recipes") are sound, then executes them while checking
every declared guarantee at runtime.

# Concept

A guard such as Equal(A.Name, "amir") on a parameter says the step only
accepts an A whose Name is "amir". A declaration with the same shape on a
step says the A it returns always has that Name. A step may run right
before another only when its declarations entail the other's guards. The
scheduler builds a graph over every ordered pair of steps and keeps the
topological orders in which each step feeds the next one.

Construction rejects unsound step sets up front: overlapping guards or
declarations, parameters nobody produces, guards nobody promises, and sets
that admit no causal chain at all.

# Usage

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
		Do(dsl.Fn1(func(ctx context.Context, a A) (B, error) {
			return B{Name: "taha"}, nil
		}))

	steps, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	sched, err := stepwise.New(steps, stepwise.WithName("demo"))
	if err != nil {
		log.Fatal(err)
	}

	report, err := sched.Run(ctx, map[string]any{"foo": "bar"})

Step sets can also be loaded from YAML files with package pipeline, and run
from the command line with cmd/stepwise.

# Failure policy

By default a failing recipe does not prevent the remaining recipes from
running; all failures are joined into the error returned by Run. Use
WithStopOnFailure to abort at the first failing recipe.
*/
package stepwise
