/*
Package dsl provides a fluent Go builder for step descriptors.

It is the programmatic counterpart of package pipeline: hosts describe each
step once (parameters, guards, result type, declarations, body) and hand the
result to stepwise.New. Nothing here inspects code; every descriptor is
spelled out explicitly.

Example usage:

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
		Async()

	steps, err := b.Build()
*/
package dsl
