package domain

import (
	"context"
	"reflect"
	"strings"
)

// Body executes a step with its resolved arguments, in parameter order.
type Body func(ctx context.Context, args []any) (any, error)

// Param is one typed input of a Step.
//
// A bound parameter (Bound != "") is read by name from the inputs given to Run.
// A dynamic parameter is taken from the results of steps that already ran, and
// only accepts values satisfying all of its Guards.
type Param struct {
	Name   string
	Type   reflect.Type
	Bound  string
	Guards []Predicate
}

// IsBound reports whether the parameter is sourced from the bound inputs.
func (p Param) IsBound() bool {
	return p.Bound != ""
}

// Step describes a unit of work. Steps are created once, before the scheduler
// is built, and are never mutated afterwards.
type Step struct {
	Name         string
	Params       []Param
	Result       reflect.Type
	Declarations []Predicate

	// Async steps run their body on a separate goroutine; the executor waits
	// for it before moving on.
	Async bool

	// Body is invoked by the default invoker. Hosts providing their own
	// ports.Invoker may leave it nil.
	Body Body
}

// DynamicParams returns the indexes of the parameters fed by other steps.
func (s *Step) DynamicParams() []int {
	var idx []int
	for i, p := range s.Params {
		if !p.IsBound() {
			idx = append(idx, i)
		}
	}
	return idx
}

// BoundNames returns the bound input names the step reads.
func (s *Step) BoundNames() []string {
	var names []string
	for _, p := range s.Params {
		if p.IsBound() {
			names = append(names, p.Bound)
		}
	}
	return names
}

// Signature renders the step as "Result Name(ParamType,...)".
func (s *Step) Signature() string {
	types := make([]string, len(s.Params))
	for i, p := range s.Params {
		types[i] = TypeName(p.Type)
	}
	return TypeName(s.Result) + " " + s.Name + "(" + strings.Join(types, ",") + ")"
}

func (s *Step) String() string {
	return s.Signature()
}
