package pipeline

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/registry"
	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a pipeline.
type File struct {
	Name   string         `yaml:"name"`
	Types  yaml.Node      `yaml:"types"`
	Inputs map[string]any `yaml:"inputs"`
	Steps  []StepSpec     `yaml:"steps"`
}

// StepSpec describes one step.
type StepSpec struct {
	Name     string          `yaml:"name"`
	Params   []ParamSpec     `yaml:"params"`
	Returns  string          `yaml:"returns"`
	Declares []PredicateSpec `yaml:"declares"`
	Async    bool            `yaml:"async"`
	Emit     any             `yaml:"emit"`
}

// ParamSpec describes one parameter. Bound parameters name an input.
type ParamSpec struct {
	Name   string          `yaml:"name"`
	Type   string          `yaml:"type"`
	Bound  string          `yaml:"bound"`
	Guards []PredicateSpec `yaml:"guards"`
}

// PredicateSpec sets exactly one of Equal and NotEqual. An empty Field
// targets the whole value.
type PredicateSpec struct {
	Field    string `yaml:"field"`
	Equal    any    `yaml:"equal"`
	NotEqual any    `yaml:"not_equal"`
}

// Pipeline is a loaded step set.
type Pipeline struct {
	Name   string
	Steps  []*domain.Step
	Inputs map[string]any
	Types  *registry.Types
}

// Load reads and parses the pipeline file at path.
func Load(path string, types *registry.Types) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline: %w", err)
	}
	p, err := Parse(data, types)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse builds a pipeline from YAML. Types declared by the file are added to
// types; a nil registry starts from the builtin scalars.
func Parse(data []byte, types *registry.Types) (*Pipeline, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline: %w", err)
	}
	if types == nil {
		types = registry.NewTypes()
	}

	if err := defineTypes(&f.Types, types); err != nil {
		return nil, err
	}

	p := &Pipeline{Name: f.Name, Types: types}
	var errs []error
	for i, spec := range f.Steps {
		step, err := buildStep(spec, types)
		if err != nil {
			errs = append(errs, fmt.Errorf("step %d (%s): %w", i, spec.Name, err))
			continue
		}
		p.Steps = append(p.Steps, step)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if len(f.Inputs) > 0 {
		inputs, err := DecodeInputs(p.Steps, f.Inputs)
		if err != nil {
			return nil, fmt.Errorf("inputs: %w", err)
		}
		p.Inputs = inputs
	}
	return p, nil
}

// defineTypes walks the types mapping in document order, so later types may
// use earlier ones as field types.
func defineTypes(node *yaml.Node, types *registry.Types) error {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("types: expected a mapping, line %d", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		fieldsNode := node.Content[i+1]
		if fieldsNode.Kind != yaml.MappingNode || len(fieldsNode.Content) == 0 {
			return fmt.Errorf("type %s: expected a non-empty field mapping, line %d", name, fieldsNode.Line)
		}

		var fields []reflect.StructField
		for j := 0; j+1 < len(fieldsNode.Content); j += 2 {
			fname := fieldsNode.Content[j].Value
			if !exported(fname) {
				return fmt.Errorf("type %s: field %q must start with an upper case letter", name, fname)
			}
			ftyp, err := types.Resolve(fieldsNode.Content[j+1].Value)
			if err != nil {
				return fmt.Errorf("type %s: field %s: %w", name, fname, err)
			}
			fields = append(fields, reflect.StructField{
				Name: fname,
				Type: ftyp,
				Tag:  reflect.StructTag(fmt.Sprintf(`json:%q mapstructure:%q %s:%q`, fname, fname, domain.TypeNameTag, name)),
			})
		}

		if err := types.Register(name, reflect.StructOf(fields)); err != nil {
			return err
		}
	}
	return nil
}

func exported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func buildStep(spec StepSpec, types *registry.Types) (*domain.Step, error) {
	if spec.Name == "" {
		return nil, errors.New("missing name")
	}
	result, err := types.Resolve(spec.Returns)
	if err != nil {
		return nil, fmt.Errorf("returns: %w", err)
	}

	step := &domain.Step{Name: spec.Name, Result: result, Async: spec.Async}
	for _, ps := range spec.Params {
		typ, err := types.Resolve(ps.Type)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", ps.Name, err)
		}
		param := domain.Param{Name: ps.Name, Type: typ, Bound: ps.Bound}
		for _, g := range ps.Guards {
			pred, err := g.predicate(typ)
			if err != nil {
				return nil, fmt.Errorf("param %s: guard: %w", ps.Name, err)
			}
			param.Guards = append(param.Guards, pred)
		}
		step.Params = append(step.Params, param)
	}

	for _, d := range spec.Declares {
		pred, err := d.predicate(result)
		if err != nil {
			return nil, fmt.Errorf("declaration: %w", err)
		}
		step.Declarations = append(step.Declarations, pred)
	}

	if spec.Emit != nil {
		step.Body = emitBody(step, spec.Emit)
	}
	return step, nil
}

func (s PredicateSpec) predicate(typ reflect.Type) (domain.Predicate, error) {
	switch {
	case s.Equal != nil && s.NotEqual != nil:
		return domain.Predicate{}, fmt.Errorf("%w: both equal and not_equal set", domain.ErrInvalidPredicate)
	case s.Equal != nil:
		return domain.NewPredicate(domain.Equal, typ, s.Field, s.Equal)
	case s.NotEqual != nil:
		return domain.NewPredicate(domain.NotEqual, typ, s.Field, s.NotEqual)
	}
	return domain.Predicate{}, fmt.Errorf("%w: equal or not_equal required", domain.ErrInvalidPredicate)
}
