package pipeline

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// emitBody returns a body producing the emit value, with argument references
// expanded and the result decoded into the step result type.
func emitBody(step *domain.Step, emit any) domain.Body {
	return func(_ context.Context, args []any) (any, error) {
		env := make(map[string]any, len(step.Params))
		for i, p := range step.Params {
			if i < len(args) {
				env[p.Name] = args[i]
			}
		}

		value, err := expand(emit, env)
		if err != nil {
			return nil, err
		}
		return decode(value, step.Result)
	}
}

// expand replaces "$name" and "$name.Field" strings with argument values.
// "$$" escapes a literal dollar sign.
func expand(v any, env map[string]any) (any, error) {
	switch t := v.(type) {
	case string:
		if strings.HasPrefix(t, "$$") {
			return t[1:], nil
		}
		if strings.HasPrefix(t, "$") {
			return lookup(t[1:], env)
		}
		return t, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			x, err := expand(inner, env)
			if err != nil {
				return nil, err
			}
			out[k] = x
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			x, err := expand(inner, env)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	}
	return v, nil
}

func lookup(ref string, env map[string]any) (any, error) {
	name, field, hasField := strings.Cut(ref, ".")
	v, ok := env[name]
	if !ok {
		return nil, fmt.Errorf("unknown reference $%s", name)
	}
	if !hasField {
		return v, nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("reference $%s is nil", ref)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("reference $%s: %s has no fields", ref, rv.Type())
	}
	f := rv.FieldByName(field)
	if !f.IsValid() {
		return nil, fmt.Errorf("reference $%s: no field %s", ref, field)
	}
	return f.Interface(), nil
}

// decode converts v into a value of typ. Values already assignable are
// returned as is.
func decode(v any, typ reflect.Type) (any, error) {
	if v != nil && reflect.TypeOf(v).AssignableTo(typ) {
		return v, nil
	}
	out := reflect.New(typ)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out.Interface(),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", domain.TypeName(typ), err)
	}
	return out.Elem().Interface(), nil
}
