package domain

import (
	"fmt"
	"reflect"
)

// Kind is the comparison a Predicate performs against its literal.
type Kind int

const (
	// Equal holds when the targeted value equals the literal.
	Equal Kind = iota
	// NotEqual holds when the targeted value differs from the literal.
	NotEqual
)

func (k Kind) String() string {
	switch k {
	case Equal:
		return "Equal"
	case NotEqual:
		return "NotEqual"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Predicate compares one field of a typed value (or the whole value when Field
// is empty) against a literal. Guards and declarations are both predicates.
type Predicate struct {
	Kind  Kind
	Type  reflect.Type
	Field string
	Value any
}

// NewPredicate builds a predicate and checks it against its target type.
// The field must be an exported struct field of typ (pointers are followed) and
// the literal must be convertible to the targeted type. The literal is stored
// converted, so that later comparisons are exact.
func NewPredicate(kind Kind, typ reflect.Type, field string, value any) (Predicate, error) {
	if typ == nil {
		return Predicate{}, fmt.Errorf("%w: nil target type", ErrInvalidPredicate)
	}
	if kind != Equal && kind != NotEqual {
		return Predicate{}, fmt.Errorf("%w: unknown kind %d", ErrInvalidPredicate, int(kind))
	}

	target := typ
	if field != "" {
		st := typ
		for st.Kind() == reflect.Pointer {
			st = st.Elem()
		}
		if st.Kind() != reflect.Struct {
			return Predicate{}, fmt.Errorf("%w: %s has no fields, cannot target %q", ErrInvalidPredicate, typ, field)
		}
		sf, ok := st.FieldByName(field)
		if !ok || !sf.IsExported() {
			return Predicate{}, fmt.Errorf("%w: field %q does not exist on %s", ErrInvalidPredicate, field, typ)
		}
		target = sf.Type
	}

	if value == nil {
		return Predicate{}, fmt.Errorf("%w: nil literal for %s", ErrInvalidPredicate, describeTarget(typ, field))
	}
	lit := reflect.ValueOf(value)
	if !target.Comparable() {
		return Predicate{}, fmt.Errorf("%w: %s is not comparable", ErrInvalidPredicate, describeTarget(typ, field))
	}
	switch {
	case lit.Type() == target:
	case lit.Type().ConvertibleTo(target) && sameFamily(lit.Type(), target):
		lit = lit.Convert(target)
	default:
		return Predicate{}, fmt.Errorf("%w: literal %v (%T) does not match %s (%s)",
			ErrInvalidPredicate, value, value, describeTarget(typ, field), target)
	}

	return Predicate{
		Kind:  kind,
		Type:  typ,
		Field: field,
		Value: lit.Interface(),
	}, nil
}

// MustPredicate is like NewPredicate but panics on error.
// Intended for package-level step tables and tests.
func MustPredicate(kind Kind, typ reflect.Type, field string, value any) Predicate {
	p, err := NewPredicate(kind, typ, field, value)
	if err != nil {
		panic(err)
	}
	return p
}

// sameFamily rejects conversions Go allows but that change meaning, such as
// int -> string (rune conversion).
func sameFamily(a, b reflect.Type) bool {
	return family(a.Kind()) == family(b.Kind())
}

func family(k reflect.Kind) int {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return 1
	case reflect.Float32, reflect.Float64:
		return 2
	case reflect.String:
		return 3
	case reflect.Bool:
		return 4
	default:
		return 0
	}
}

// Related reports whether p and q target the same field of the same type.
func Related(p, q Predicate) bool {
	return p.Type == q.Type && p.Field == q.Field
}

// Entails reports whether every value satisfying p also satisfies q.
// Unrelated predicates never entail each other.
//
// NotEqual(v1) entails Equal(v2) when v1 != v2. That is not a real entailment
// without a finite domain, but the soundness checks of the recipe builder are
// derived with it, so it stays.
func Entails(p, q Predicate) bool {
	if !Related(p, q) {
		return false
	}
	same := p.Value == q.Value
	switch {
	case p.Kind == Equal && q.Kind == Equal:
		return same
	case p.Kind == NotEqual && q.Kind == NotEqual:
		return same
	case p.Kind == Equal && q.Kind == NotEqual:
		return !same
	case p.Kind == NotEqual && q.Kind == Equal:
		return !same
	}
	return false
}

// Overlaps reports whether one of p, q entails the other. It flags ambiguity,
// not a proven relation. Callers only compare predicates attached at distinct
// places (two guards of one parameter, declarations of the step set), so two
// identical declarations on two steps do overlap.
func Overlaps(p, q Predicate) bool {
	return Entails(p, q) || Entails(q, p)
}

// Matches evaluates p against a runtime value. The dynamic type of value must
// be exactly p.Type.
func (p Predicate) Matches(value any) bool {
	if value == nil || reflect.TypeOf(value) != p.Type {
		return false
	}
	v := reflect.ValueOf(value)
	if p.Field != "" {
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return false
			}
			v = v.Elem()
		}
		v = v.FieldByName(p.Field)
		if !v.IsValid() {
			return false
		}
	}
	same := v.Interface() == p.Value
	if p.Kind == NotEqual {
		return !same
	}
	return same
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s (%s) %v", describeTarget(p.Type, p.Field), p.Kind, p.Value)
}

func describeTarget(typ reflect.Type, field string) string {
	name := TypeName(typ)
	if field == "" {
		return name
	}
	return name + "." + field
}

// TypeNameTag is the struct tag naming a type built at runtime. It is read
// from the first field of an unnamed struct.
const TypeNameTag = "stepwise"

// TypeName returns the short name used in signatures and diagnostics.
func TypeName(typ reflect.Type) string {
	if typ == nil {
		return "void"
	}
	if typ.Name() != "" {
		return typ.Name()
	}
	if typ.Kind() == reflect.Struct && typ.NumField() > 0 {
		if name := typ.Field(0).Tag.Get(TypeNameTag); name != "" {
			return name
		}
	}
	return typ.String()
}

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
