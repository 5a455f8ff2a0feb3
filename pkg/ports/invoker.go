package ports

import (
	"context"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Invoker calls the body of a step. Arguments are in parameter order and
// the returned value must have the step's result type.
type Invoker interface {
	Invoke(ctx context.Context, step *domain.Step, args []any) (any, error)
}

// InvokerFunc adapts a plain function to an Invoker.
type InvokerFunc func(ctx context.Context, step *domain.Step, args []any) (any, error)

func (f InvokerFunc) Invoke(ctx context.Context, step *domain.Step, args []any) (any, error) {
	return f(ctx, step, args)
}
