// Package validator rejects step sets that cannot be scheduled soundly.
package validator

import (
	"fmt"

	"github.com/aretw0/stepwise/internal/analyzer"
	"github.com/aretw0/stepwise/pkg/domain"
)

// Validate runs every construction-time soundness check over steps, in a fixed
// order, and returns the first failure as a *domain.StepError.
func Validate(steps []*domain.Step) error {
	checks := []func([]*domain.Step) error{
		checkNames,
		checkShapes,
		checkGuardTypes,
		checkDeclarationTypes,
		checkAmbiguousGuards,
		checkAmbiguousDeclarations,
		checkDependencies,
		checkGuards,
	}
	for _, check := range checks {
		if err := check(steps); err != nil {
			return err
		}
	}
	return nil
}

func checkNames(steps []*domain.Step) error {
	seen := make(map[string]bool, len(steps))
	for _, s := range steps {
		if s == nil {
			return domain.NewStepError(domain.ErrInvalidStepShape, "", "nil step descriptor")
		}
		if s.Name == "" {
			return domain.NewStepError(domain.ErrDuplicateStep, "", "step has empty name")
		}
		if seen[s.Name] {
			return domain.NewStepError(domain.ErrDuplicateStep, s.Name, "name declared more than once")
		}
		seen[s.Name] = true
	}
	return nil
}

func checkShapes(steps []*domain.Step) error {
	for _, s := range steps {
		if s.Result == nil {
			return domain.NewStepError(domain.ErrInvalidStepShape, s.Name, "step returns no value")
		}
		if s.Async && len(s.Params) == 0 {
			return domain.NewStepError(domain.ErrInvalidStepShape, s.Name, "async step must take at least one parameter")
		}
		for _, p := range s.Params {
			if p.Type == nil {
				err := domain.NewStepError(domain.ErrInvalidStepShape, s.Name, "parameter has no type")
				err.Param = p.Name
				return err
			}
			if p.IsBound() && len(p.Guards) > 0 {
				err := domain.NewStepError(domain.ErrInvalidStepShape, s.Name, "bound parameter cannot carry guards")
				err.Param = p.Name
				return err
			}
		}
	}
	return nil
}

func checkGuardTypes(steps []*domain.Step) error {
	for _, s := range steps {
		for _, p := range s.Params {
			for i := range p.Guards {
				g := p.Guards[i]
				if g.Type != p.Type {
					return &domain.StepError{
						Kind:      domain.ErrInconsistentGuardType,
						Step:      s.Name,
						Param:     p.Name,
						Predicate: &g,
						Recipe:    domain.NoRecipe,
						Msg:       fmt.Sprintf("parameter is %s", domain.TypeName(p.Type)),
					}
				}
			}
		}
	}
	return nil
}

func checkDeclarationTypes(steps []*domain.Step) error {
	for _, s := range steps {
		for i := range s.Declarations {
			d := s.Declarations[i]
			if d.Type != s.Result {
				return &domain.StepError{
					Kind:      domain.ErrInconsistentDeclarationType,
					Step:      s.Name,
					Predicate: &d,
					Recipe:    domain.NoRecipe,
					Msg:       fmt.Sprintf("result is %s", domain.TypeName(s.Result)),
				}
			}
		}
	}
	return nil
}

func checkAmbiguousGuards(steps []*domain.Step) error {
	for _, s := range steps {
		for _, p := range s.Params {
			for i := 0; i < len(p.Guards); i++ {
				for j := i + 1; j < len(p.Guards); j++ {
					if domain.Overlaps(p.Guards[i], p.Guards[j]) {
						g := p.Guards[i]
						return &domain.StepError{
							Kind:      domain.ErrAmbiguousGuard,
							Step:      s.Name,
							Param:     p.Name,
							Predicate: &g,
							Recipe:    domain.NoRecipe,
							Msg:       fmt.Sprintf("overlaps with [%s]", p.Guards[j]),
						}
					}
				}
			}
		}
	}
	return nil
}

type attached struct {
	step *domain.Step
	pred domain.Predicate
}

func checkAmbiguousDeclarations(steps []*domain.Step) error {
	var all []attached
	for _, s := range steps {
		for _, d := range s.Declarations {
			all = append(all, attached{step: s, pred: d})
		}
	}

	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if domain.Overlaps(all[i].pred, all[j].pred) {
				d := all[i].pred
				return &domain.StepError{
					Kind:      domain.ErrAmbiguousDeclaration,
					Step:      all[i].step.Name,
					Predicate: &d,
					Recipe:    domain.NoRecipe,
					Msg:       fmt.Sprintf("overlaps with [%s] of step %s", all[j].pred, all[j].step.Name),
				}
			}
		}
	}
	return nil
}

func checkDependencies(steps []*domain.Step) error {
	for _, s := range steps {
		for _, i := range s.DynamicParams() {
			p := s.Params[i]
			if len(analyzer.Producers(steps, s, p.Type)) == 0 {
				return &domain.StepError{
					Kind:   domain.ErrUnsatisfiableDependency,
					Step:   s.Name,
					Param:  p.Name,
					Recipe: domain.NoRecipe,
					Msg:    fmt.Sprintf("no other step produces %s", domain.TypeName(p.Type)),
				}
			}
		}
	}
	return nil
}

func checkGuards(steps []*domain.Step) error {
	for _, s := range steps {
		for _, i := range s.DynamicParams() {
			p := s.Params[i]
			for k := range p.Guards {
				g := p.Guards[k]
				if !entailedElsewhere(steps, s, g) {
					return &domain.StepError{
						Kind:      domain.ErrUnsatisfiableGuard,
						Step:      s.Name,
						Param:     p.Name,
						Predicate: &g,
						Recipe:    domain.NoRecipe,
						Msg:       "no declaration of another step entails it",
					}
				}
			}
		}
	}
	return nil
}

func entailedElsewhere(steps []*domain.Step, owner *domain.Step, guard domain.Predicate) bool {
	for _, s := range steps {
		if s == owner {
			continue
		}
		for _, d := range s.Declarations {
			if domain.Related(d, guard) && domain.Entails(d, guard) {
				return true
			}
		}
	}
	return false
}
