// Package analyzer decides whether one step may legally run immediately
// before another.
package analyzer

import (
	"reflect"

	"github.com/aretw0/stepwise/pkg/domain"
)

// CanPrecede reports whether source may run immediately before destination.
//
// The first dynamic parameter of destination whose type is source's result
// type decides: source is compatible when, for every guard on that parameter,
// every declaration of source related to the guard entails it. Destination
// without such a parameter is incompatible.
func CanPrecede(source, destination *domain.Step) bool {
	for _, i := range destination.DynamicParams() {
		param := destination.Params[i]
		if param.Type != source.Result {
			continue
		}
		return satisfies(source.Declarations, param.Guards)
	}
	return false
}

func satisfies(declarations, guards []domain.Predicate) bool {
	for _, g := range guards {
		for _, d := range declarations {
			if !domain.Related(d, g) {
				continue
			}
			if !domain.Entails(d, g) {
				return false
			}
		}
	}
	return true
}

// Producers returns the steps, other than consumer, whose result type is typ.
func Producers(steps []*domain.Step, consumer *domain.Step, typ reflect.Type) []*domain.Step {
	var out []*domain.Step
	for _, s := range steps {
		if s == consumer {
			continue
		}
		if s.Result == typ {
			out = append(out, s)
		}
	}
	return out
}
