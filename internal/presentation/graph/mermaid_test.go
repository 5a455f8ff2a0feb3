package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/stepwise/internal/presentation/graph"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/sebdah/goldie/v2"
)

type A struct{ Name string }
type B struct{ Name string }
type C struct{ Name string }

func pipeline() ([]*domain.Step, []domain.Edge) {
	steps := []*domain.Step{
		{
			Name:   "Step1",
			Params: []domain.Param{{Name: "foo", Type: domain.TypeOf[string](), Bound: "foo"}},
			Result: domain.TypeOf[A](),
		},
		{
			Name:   "Step2",
			Params: []domain.Param{{Name: "a", Type: domain.TypeOf[A]()}},
			Result: domain.TypeOf[B](),
			Async:  true,
		},
		{
			Name:   "Step3",
			Params: []domain.Param{{Name: "b", Type: domain.TypeOf[B]()}},
			Result: domain.TypeOf[C](),
		},
	}
	edges := []domain.Edge{
		{From: "Step1", To: "Step2", Compatible: true},
		{From: "Step1", To: "Step3"},
		{From: "Step2", To: "Step1"},
		{From: "Step2", To: "Step3", Compatible: true},
		{From: "Step3", To: "Step1"},
		{From: "Step3", To: "Step2"},
	}
	return steps, edges
}

func TestGenerateMermaid_Golden(t *testing.T) {
	steps, edges := pipeline()
	g := goldie.New(t)

	t.Run("plain", func(t *testing.T) {
		g.Assert(t, "pipeline", []byte(graph.GenerateMermaid(steps, edges, nil)))
	})

	t.Run("overlay", func(t *testing.T) {
		overlay := &graph.Overlay{Recipe: []string{"Step1", "Step2", "Step3"}, Failed: "Step3"}
		g.Assert(t, "pipeline_overlay", []byte(graph.GenerateMermaid(steps, edges, overlay)))
	})
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		steps    []*domain.Step
		contains []string
	}{
		{
			name: "ID Sanitization",
			steps: []*domain.Step{
				{Name: "load.user-profile", Result: domain.TypeOf[A]()},
			},
			contains: []string{`load_user_profile["load.user-profile"]`},
		},
		{
			name: "Bound Wins Over Async",
			steps: []*domain.Step{
				{
					Name:   "Fetch",
					Params: []domain.Param{{Name: "url", Type: domain.TypeOf[string](), Bound: "url"}},
					Result: domain.TypeOf[A](),
					Async:  true,
				},
			},
			contains: []string{`Fetch[/"Fetch"/]`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.steps, nil, nil)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
		})
	}
}
