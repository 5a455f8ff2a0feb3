package pipeline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/schema"
)

// DecodeInputs converts raw bound inputs, as read from YAML or JSON, into
// the types the steps expect. Names no step reads are kept unchanged.
func DecodeInputs(steps []*domain.Step, raw map[string]any) (map[string]any, error) {
	s := schema.FromSteps(steps)
	out := make(map[string]any, len(raw))

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		rt, ok := reflectType(s[k])
		if !ok {
			out[k] = raw[k]
			continue
		}
		v, err := decode(raw[k], rt.Type())
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k, err))
			continue
		}
		out[k] = v
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func reflectType(t schema.Type) (*schema.ReflectType, bool) {
	switch typ := t.(type) {
	case *schema.ReflectType:
		return typ, true
	case *schema.AllOfType:
		for _, inner := range typ.Types() {
			if rt, ok := reflectType(inner); ok {
				return rt, true
			}
		}
	}
	return nil, false
}
