package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Construction errors: the step set itself is unsound.
var (
	// ErrInvalidStepShape is returned for steps without a result type, or async steps without parameters.
	ErrInvalidStepShape = errors.New("invalid step shape")

	// ErrDuplicateStep is returned when two steps share a name, or a step has none.
	ErrDuplicateStep = errors.New("duplicate step name")

	// ErrInconsistentGuardType is returned when a guard targets a type other than its parameter's.
	ErrInconsistentGuardType = errors.New("inconsistent guard type")

	// ErrInconsistentDeclarationType is returned when a declaration targets a type other than the step result.
	ErrInconsistentDeclarationType = errors.New("inconsistent declaration type")

	// ErrAmbiguousGuard is returned when two guards of one parameter overlap.
	ErrAmbiguousGuard = errors.New("ambiguous guard")

	// ErrAmbiguousDeclaration is returned when two declarations of the step set overlap.
	ErrAmbiguousDeclaration = errors.New("ambiguous declaration")

	// ErrUnsatisfiableDependency is returned when no other step produces a dynamic parameter's type.
	ErrUnsatisfiableDependency = errors.New("unsatisfiable dependency")

	// ErrUnsatisfiableGuard is returned when no declaration of another step entails a guard.
	ErrUnsatisfiableGuard = errors.New("unsatisfiable guard")

	// ErrNoSoundOrdering is returned when the graph search yields no recipe.
	ErrNoSoundOrdering = errors.New("no sound ordering")

	// ErrInvalidPredicate is returned when a predicate does not fit its target type.
	ErrInvalidPredicate = errors.New("invalid predicate")
)

// Run errors: a contract was broken while executing.
var (
	// ErrIncompleteBoundInputs is returned before any step runs when a bound name is missing.
	ErrIncompleteBoundInputs = errors.New("incomplete bound inputs")

	// ErrInvalidBoundInput is returned before any step runs when a bound value has the wrong type.
	ErrInvalidBoundInput = errors.New("invalid bound input")

	// ErrUnsatisfiableParameter is returned when no produced value fits a dynamic parameter.
	ErrUnsatisfiableParameter = errors.New("unsatisfiable parameter")

	// ErrDeclarationViolated is returned when a step result breaks one of its declarations.
	ErrDeclarationViolated = errors.New("declaration violated")

	// ErrStepFailed is returned when a step body returns an error.
	ErrStepFailed = errors.New("step failed")
)

// NoRecipe marks a StepError raised outside of a recipe execution.
const NoRecipe = -1

// StepError carries the context of a soundness or contract failure.
// It unwraps to both Kind and Err.
type StepError struct {
	Kind      error
	Step      string
	Param     string
	Predicate *Predicate
	Recipe    int
	Msg       string
	Err       error
}

func (e *StepError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Recipe != NoRecipe {
		fmt.Fprintf(&sb, ": recipe %d", e.Recipe)
	}
	if e.Step != "" {
		fmt.Fprintf(&sb, ": step %s", e.Step)
	}
	if e.Param != "" {
		fmt.Fprintf(&sb, ": param %s", e.Param)
	}
	if e.Predicate != nil {
		fmt.Fprintf(&sb, ": [%s]", e.Predicate)
	}
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *StepError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewStepError builds a StepError outside of any recipe.
func NewStepError(kind error, step, msg string) *StepError {
	return &StepError{Kind: kind, Step: step, Recipe: NoRecipe, Msg: msg}
}
