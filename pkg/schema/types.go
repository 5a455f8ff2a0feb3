package schema

import (
	"fmt"
	"reflect"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Type defines the contract for field validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "A").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// ReflectType accepts values whose dynamic type is assignable to a Go type.
type ReflectType struct {
	typ reflect.Type
}

// Of creates a validator for values assignable to typ.
func Of(typ reflect.Type) Type {
	return &ReflectType{typ: typ}
}

func (t *ReflectType) Name() string {
	return domain.TypeName(t.typ)
}

// Type returns the underlying Go type.
func (t *ReflectType) Type() reflect.Type {
	return t.typ
}

func (t *ReflectType) Validate(value any) error {
	if value == nil {
		if nillable(t.typ.Kind()) {
			return nil
		}
		return fmt.Errorf("expected %s, got nil", t.Name())
	}
	vt := reflect.TypeOf(value)
	if !vt.AssignableTo(t.typ) {
		return fmt.Errorf("expected %s, got %s", t.Name(), vt)
	}
	return nil
}

func nillable(k reflect.Kind) bool {
	switch k {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// AllOfType requires a value to satisfy every inner type.
type AllOfType struct {
	types []Type
}

// AllOf combines types that must all accept the value. It is used when
// several steps read the same bound name.
func AllOf(types ...Type) Type {
	return &AllOfType{types: types}
}

// Types returns the combined types.
func (t *AllOfType) Types() []Type {
	return t.types
}

func (t *AllOfType) Name() string {
	name := ""
	for i, inner := range t.types {
		if i > 0 {
			name += "&"
		}
		name += inner.Name()
	}
	return name
}

func (t *AllOfType) Validate(value any) error {
	for _, inner := range t.types {
		if err := inner.Validate(value); err != nil {
			return err
		}
	}
	return nil
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}
