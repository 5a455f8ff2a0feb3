package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type redactionMiddleware struct {
	next     ports.ReportStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware masks the stored value of every step result whose
// step name or type matches one of the patterns. Reports handed back by Run
// are left untouched.
func NewRedactionMiddleware(patterns []string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled[i] = re
	}
	return func(next ports.ReportStore) ports.ReportStore {
		return &redactionMiddleware{next: next, patterns: compiled}
	}, nil
}

func (m *redactionMiddleware) Save(ctx context.Context, report *domain.Report) error {
	cloned := *report
	cloned.Recipes = make([]domain.RecipeResult, len(report.Recipes))
	for i, rr := range report.Recipes {
		results := make([]domain.StepResult, len(rr.Results))
		for j, res := range rr.Results {
			if m.matches(res.Step) || m.matches(res.Type) {
				res.Value = Mask
			}
			results[j] = res
		}
		rr.Results = results
		cloned.Recipes[i] = rr
	}
	return m.next.Save(ctx, &cloned)
}

func (m *redactionMiddleware) matches(s string) bool {
	for _, p := range m.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func (m *redactionMiddleware) Load(ctx context.Context, runID string) (*domain.Report, error) {
	return m.next.Load(ctx, runID)
}

func (m *redactionMiddleware) Delete(ctx context.Context, runID string) error {
	return m.next.Delete(ctx, runID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
