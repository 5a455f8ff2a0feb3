package dsl

import (
	"context"
	"fmt"
	"reflect"

	"github.com/aretw0/stepwise/pkg/domain"
)

// StepBuilder describes one step.
type StepBuilder struct {
	step *domain.Step
	errs []error
}

// Param appends a dynamic parameter fed by an earlier step, accepted only
// when every guard holds.
func (sb *StepBuilder) Param(name string, typ reflect.Type, guards ...Cond) *StepBuilder {
	p := domain.Param{Name: name, Type: typ}
	for _, g := range guards {
		if g.err != nil {
			sb.errs = append(sb.errs, fmt.Errorf("guard on %s: %w", name, g.err))
			continue
		}
		p.Guards = append(p.Guards, g.pred)
	}
	sb.step.Params = append(sb.step.Params, p)
	return sb
}

// Bound appends a parameter read from the run inputs under name.
func (sb *StepBuilder) Bound(name string, typ reflect.Type) *StepBuilder {
	sb.step.Params = append(sb.step.Params, domain.Param{Name: name, Type: typ, Bound: name})
	return sb
}

// Returns sets the result type.
func (sb *StepBuilder) Returns(typ reflect.Type) *StepBuilder {
	sb.step.Result = typ
	return sb
}

// Declares adds postconditions on the result.
func (sb *StepBuilder) Declares(conds ...Cond) *StepBuilder {
	for _, c := range conds {
		if c.err != nil {
			sb.errs = append(sb.errs, fmt.Errorf("declaration: %w", c.err))
			continue
		}
		sb.step.Declarations = append(sb.step.Declarations, c.pred)
	}
	return sb
}

// Async runs the body on its own goroutine.
func (sb *StepBuilder) Async() *StepBuilder {
	sb.step.Async = true
	return sb
}

// Do sets the body.
func (sb *StepBuilder) Do(body domain.Body) *StepBuilder {
	sb.step.Body = body
	return sb
}

// Fn0 adapts a typed function without arguments to a Body.
func Fn0[R any](fn func(ctx context.Context) (R, error)) domain.Body {
	return func(ctx context.Context, _ []any) (any, error) {
		return fn(ctx)
	}
}

// Fn1 adapts a typed function of one argument to a Body.
func Fn1[P, R any](fn func(ctx context.Context, p P) (R, error)) domain.Body {
	return func(ctx context.Context, args []any) (any, error) {
		p, err := arg[P](args, 0)
		if err != nil {
			return nil, err
		}
		return fn(ctx, p)
	}
}

// Fn2 adapts a typed function of two arguments to a Body.
func Fn2[P1, P2, R any](fn func(ctx context.Context, p1 P1, p2 P2) (R, error)) domain.Body {
	return func(ctx context.Context, args []any) (any, error) {
		p1, err := arg[P1](args, 0)
		if err != nil {
			return nil, err
		}
		p2, err := arg[P2](args, 1)
		if err != nil {
			return nil, err
		}
		return fn(ctx, p1, p2)
	}
}

func arg[T any](args []any, i int) (T, error) {
	var zero T
	if i >= len(args) {
		return zero, fmt.Errorf("missing argument %d", i)
	}
	if args[i] == nil {
		return zero, nil
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("argument %d is %T, want %s", i, args[i], domain.TypeName(Type[T]()))
	}
	return v, nil
}
