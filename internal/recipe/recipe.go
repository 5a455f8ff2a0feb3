// Package recipe discovers the sound execution orders of a step set.
package recipe

import (
	"fmt"

	"github.com/aretw0/stepwise/internal/analyzer"
	"github.com/aretw0/stepwise/internal/graph"
	"github.com/aretw0/stepwise/internal/validator"
	"github.com/aretw0/stepwise/pkg/domain"
)

// Book holds the validated steps and every recipe found for them.
// It is immutable after Build.
type Book struct {
	steps   []*domain.Step
	edges   []domain.Edge
	recipes []domain.Recipe
}

// Build validates steps, classifies every ordered pair with
// analyzer.CanPrecede and keeps the causal chains of the resulting graph,
// deduplicated by step signatures.
func Build(steps []*domain.Step) (*Book, error) {
	if err := validator.Validate(steps); err != nil {
		return nil, err
	}

	g := graph.New(steps...)
	var edges []domain.Edge
	for _, src := range steps {
		for _, dst := range steps {
			if src == dst {
				continue
			}
			ok := analyzer.CanPrecede(src, dst)
			if ok {
				g.AddEdge(src, dst)
			} else {
				g.AddNegativeEdge(src, dst)
			}
			edges = append(edges, domain.Edge{From: src.Name, To: dst.Name, Compatible: ok})
		}
	}

	chains := graph.Dedupe(g.Chains(), (*domain.Step).Signature)
	if len(chains) == 0 {
		return nil, domain.NewStepError(domain.ErrNoSoundOrdering, "",
			fmt.Sprintf("%d steps admit no causal chain", len(steps)))
	}

	recipes := make([]domain.Recipe, len(chains))
	for i, chain := range chains {
		recipes[i] = domain.Recipe(chain)
	}

	return &Book{
		steps:   append([]*domain.Step(nil), steps...),
		edges:   edges,
		recipes: recipes,
	}, nil
}

// Recipes returns the recipes in enumeration order.
func (b *Book) Recipes() []domain.Recipe {
	out := make([]domain.Recipe, len(b.recipes))
	copy(out, b.recipes)
	return out
}

// Steps returns the steps in declaration order.
func (b *Book) Steps() []*domain.Step {
	return append([]*domain.Step(nil), b.steps...)
}

// Edges returns the verdict for every ordered pair of distinct steps.
func (b *Book) Edges() []domain.Edge {
	return append([]domain.Edge(nil), b.edges...)
}
