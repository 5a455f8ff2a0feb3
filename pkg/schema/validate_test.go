package schema

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
)

func steps() []*domain.Step {
	str := reflect.TypeOf("")
	return []*domain.Step{
		{
			Name:   "Step1",
			Params: []domain.Param{{Name: "foo", Type: str, Bound: "foo"}},
			Result: reflect.TypeOf(account{}),
		},
		{
			Name: "Step2",
			Params: []domain.Param{
				{Name: "a", Type: reflect.TypeOf(account{})},
				{Name: "foo", Type: str, Bound: "foo"},
				{Name: "retries", Type: reflect.TypeOf(0), Bound: "retries"},
			},
			Result: str,
		},
	}
}

func TestFromSteps(t *testing.T) {
	s := FromSteps(steps())

	keys := s.Keys()
	if len(keys) != 2 || keys[0] != "foo" || keys[1] != "retries" {
		t.Fatalf("Keys() = %v, want [foo retries]", keys)
	}
	if s["foo"].Name() != "string" {
		t.Errorf("foo type = %s, want string", s["foo"].Name())
	}
}

func TestValidate_Success(t *testing.T) {
	err := Validate(FromSteps(steps()), map[string]any{
		"foo":     "bar",
		"retries": 3,
		"extra":   true,
	})
	if err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_MissingField(t *testing.T) {
	err := Validate(FromSteps(steps()), map[string]any{"retries": 3})
	if err == nil {
		t.Fatal("Validate() should return error for missing field")
	}

	if !errors.Is(err, ErrRequired) {
		t.Errorf("errors.Is(err, ErrRequired) = false for %v", err)
	}
	if errors.Is(err, ErrMismatch) {
		t.Errorf("errors.Is(err, ErrMismatch) = true for %v", err)
	}

	errs := ValidationErrors(err)
	if len(errs) != 1 {
		t.Fatalf("ValidationErrors() = %d errors, want 1", len(errs))
	}
	var ve *ValidationError
	if !errors.As(errs[0], &ve) || ve.Key != "foo" {
		t.Errorf("first error = %v, want field foo", errs[0])
	}
}

func TestValidate_Aggregates(t *testing.T) {
	err := Validate(FromSteps(steps()), map[string]any{"retries": "three"})

	errs := ValidationErrors(err)
	if len(errs) != 2 {
		t.Fatalf("ValidationErrors() = %d errors, want 2", len(errs))
	}
	if !errors.Is(err, ErrRequired) || !errors.Is(err, ErrMismatch) {
		t.Errorf("aggregate should unwrap to both kinds, got %v", err)
	}
	if got := Missing(FromSteps(steps()), map[string]any{}); len(got) != 2 {
		t.Errorf("Missing() = %v, want both keys", got)
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	if err := Validate(nil, nil); err != nil {
		t.Errorf("Validate(nil) error = %v", err)
	}
}

func TestSchema_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(FromSteps(steps()))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"foo":"string","retries":"int"}` {
		t.Errorf("Marshal() = %s", data)
	}
}
