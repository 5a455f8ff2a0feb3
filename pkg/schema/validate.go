package schema

import (
	"sort"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Schema is a map of bound input names to their expected types.
type Schema map[string]Type

// Keys returns the input names in sorted order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromSteps collects the bound inputs read by steps. A name read by more
// than one parameter with different types must satisfy all of them.
func FromSteps(steps []*domain.Step) Schema {
	s := make(Schema)
	seen := make(map[string][]Type)
	for _, step := range steps {
		for _, p := range step.Params {
			if !p.IsBound() || p.Type == nil {
				continue
			}
			dup := false
			for _, t := range seen[p.Bound] {
				if rt, ok := t.(*ReflectType); ok && rt.typ == p.Type {
					dup = true
				}
			}
			if dup {
				continue
			}
			seen[p.Bound] = append(seen[p.Bound], Of(p.Type))
		}
	}
	for name, types := range seen {
		if len(types) == 1 {
			s[name] = types[0]
			continue
		}
		s[name] = AllOf(types...)
	}
	return s
}

// Validate checks if data conforms to the schema.
// Returns an *AggregateError with all validation failures found, in key order.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	var errs []error
	for _, key := range schema.Keys() {
		value, exists := data[key]
		if !exists {
			errs = append(errs, &ValidationError{
				Key:    key,
				Reason: "required",
				Err:    ErrRequired,
			})
			continue
		}

		if err := schema[key].Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    key,
				Reason: err.Error(),
				Value:  value,
				Err:    ErrMismatch,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// Missing returns the schema keys absent from data.
func Missing(schema Schema, data map[string]any) []string {
	var missing []string
	for _, key := range schema.Keys() {
		if _, ok := data[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}
