package dsl

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Builder collects step descriptors in declaration order.
type Builder struct {
	steps []*StepBuilder
	index map[string]*StepBuilder
}

// New creates a new step set builder.
func New() *Builder {
	return &Builder{
		index: make(map[string]*StepBuilder),
	}
}

// Step starts a new step, or returns the existing builder for name.
func (b *Builder) Step(name string) *StepBuilder {
	if sb, ok := b.index[name]; ok {
		return sb
	}
	sb := &StepBuilder{step: &domain.Step{Name: name}}
	b.index[name] = sb
	b.steps = append(b.steps, sb)
	return sb
}

// Build returns the descriptors, or every error recorded while describing
// them. Soundness of the set is checked later by stepwise.New.
func (b *Builder) Build() ([]*domain.Step, error) {
	var errs []error
	steps := make([]*domain.Step, 0, len(b.steps))
	for _, sb := range b.steps {
		for _, err := range sb.errs {
			errs = append(errs, fmt.Errorf("step %s: %w", sb.step.Name, err))
		}
		steps = append(steps, sb.step)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return steps, nil
}

// Type returns the reflect.Type of T.
func Type[T any]() reflect.Type {
	return domain.TypeOf[T]()
}

// Cond is a predicate under construction. Errors surface from Build.
type Cond struct {
	pred domain.Predicate
	err  error
}

// Equal targets field of T (the whole value when field is empty).
func Equal[T any](field string, value any) Cond {
	p, err := domain.NewPredicate(domain.Equal, Type[T](), field, value)
	return Cond{pred: p, err: err}
}

// NotEqual targets field of T (the whole value when field is empty).
func NotEqual[T any](field string, value any) Cond {
	p, err := domain.NewPredicate(domain.NotEqual, Type[T](), field, value)
	return Cond{pred: p, err: err}
}

// Predicate returns the built predicate and its construction error.
func (c Cond) Predicate() (domain.Predicate, error) {
	return c.pred, c.err
}
