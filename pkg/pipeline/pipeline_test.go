package pipeline_test

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/pipeline"
	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	p, err := pipeline.Load(filepath.Join("testdata", "onboarding.yaml"), nil)
	require.NoError(t, err)

	assert.Equal(t, "onboarding", p.Name)
	require.Len(t, p.Steps, 2)
	assert.Equal(t, "Greeting Greet(User)", p.Steps[0].Signature())
	assert.Equal(t, "User Register(string)", p.Steps[1].Signature())
	assert.True(t, p.Steps[0].Async)
	assert.Equal(t, map[string]any{"name": "amir"}, p.Inputs)

	user, err := p.Types.Resolve("User")
	require.NoError(t, err)
	assert.Equal(t, reflect.Struct, user.Kind())
	assert.Equal(t, "User", domain.TypeName(user))
}

func TestLoad_EndToEnd(t *testing.T) {
	p, err := pipeline.Load(filepath.Join("testdata", "onboarding.yaml"), nil)
	require.NoError(t, err)

	s, err := stepwise.New(p.Steps, stepwise.WithName(p.Name))
	require.NoError(t, err)
	require.Len(t, s.Recipes(), 1)
	assert.Equal(t, []string{"Register", "Greet"}, s.Recipes()[0].Names())

	report, err := s.Run(context.Background(), p.Inputs)
	require.NoError(t, err)

	final, ok := report.Recipes[0].Final()
	require.True(t, ok)
	v := reflect.ValueOf(final)
	assert.Equal(t, "hello", v.FieldByName("Text").String())
	assert.Equal(t, "amir", v.FieldByName("To").FieldByName("Name").String())
	assert.Equal(t, int64(30), v.FieldByName("To").FieldByName("Age").Int())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown result type",
			yaml: "steps:\n  - {name: S, returns: Ghost}\n",
		},
		{
			name: "unexported field",
			yaml: "types:\n  User:\n    name: string\n",
		},
		{
			name: "unknown field type",
			yaml: "types:\n  User:\n    Name: text\n",
		},
		{
			name: "both kinds on a predicate",
			yaml: "steps:\n  - name: S\n    returns: int\n    declares:\n      - {equal: 1, not_equal: 2}\n",
		},
		{
			name: "predicate without a literal",
			yaml: "steps:\n  - name: S\n    returns: int\n    declares:\n      - {field: \"\"}\n",
		},
		{
			name: "guard on a missing field",
			yaml: "steps:\n  - name: S\n    returns: int\n    params:\n      - {name: n, type: string, guards: [{field: Name, equal: x}]}\n",
		},
		{
			name: "missing step name",
			yaml: "steps:\n  - {returns: int}\n",
		},
		{
			name: "malformed yaml",
			yaml: "steps: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pipeline.Parse([]byte(tt.yaml), nil)
			assert.Error(t, err)
		})
	}
}

func TestParse_SharedTypes(t *testing.T) {
	types := registry.NewTypes()
	_, err := pipeline.Parse([]byte("types:\n  User:\n    Name: string\n"), types)
	require.NoError(t, err)

	_, err = pipeline.Parse([]byte("types:\n  User:\n    Name: string\n"), types)
	assert.NoError(t, err, "identical redefinition is allowed")

	_, err = pipeline.Parse([]byte("types:\n  User:\n    Email: string\n"), types)
	assert.Error(t, err)
}

func TestEmit_UnknownReference(t *testing.T) {
	src := `
steps:
  - name: Echo
    params:
      - {name: word, type: string, bound: word}
    returns: string
    emit: $missing
`
	p, err := pipeline.Parse([]byte(src), nil)
	require.NoError(t, err)

	s, err := stepwise.New(p.Steps)
	require.NoError(t, err)

	_, err = s.Run(context.Background(), map[string]any{"word": "hi"})
	assert.ErrorIs(t, err, domain.ErrStepFailed)
	assert.ErrorContains(t, err, "unknown reference $missing")
}

func TestEmit_EscapedDollar(t *testing.T) {
	src := `
steps:
  - name: Price
    params:
      - {name: amount, type: int, bound: amount}
    returns: string
    emit: $$5
`
	p, err := pipeline.Parse([]byte(src), nil)
	require.NoError(t, err)

	s, err := stepwise.New(p.Steps)
	require.NoError(t, err)

	report, err := s.Run(context.Background(), map[string]any{"amount": 5})
	require.NoError(t, err)
	final, _ := report.Recipes[0].Final()
	assert.Equal(t, "$5", final)
}

func TestDecodeInputs(t *testing.T) {
	type Account struct {
		Name  string
		Level int
	}
	steps := []*domain.Step{
		{
			Name: "S",
			Params: []domain.Param{
				{Name: "retries", Type: domain.TypeOf[int](), Bound: "retries"},
				{Name: "account", Type: domain.TypeOf[Account](), Bound: "account"},
			},
			Result: domain.TypeOf[string](),
		},
	}

	got, err := pipeline.DecodeInputs(steps, map[string]any{
		"retries": float64(3),
		"account": map[string]any{"Name": "amir", "Level": "2"},
		"extra":   true,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, got["retries"])
	assert.Equal(t, Account{Name: "amir", Level: 2}, got["account"])
	assert.Equal(t, true, got["extra"])

	_, err = pipeline.DecodeInputs(steps, map[string]any{"account": map[string]any{"Nickname": "x"}})
	assert.ErrorContains(t, err, "account")
}
