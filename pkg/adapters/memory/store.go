package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Store implements ports.ReportStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Report
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Report),
	}
}

// Save keeps a copy of the report.
func (s *Store) Save(ctx context.Context, report *domain.Report) error {
	copied := cloneReport(report)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[report.RunID] = copied
	return nil
}

// Load retrieves a copy of the report, so callers cannot mutate the store.
func (s *Store) Load(ctx context.Context, runID string) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.data[runID]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return cloneReport(report), nil
}

// Delete removes the report.
func (s *Store) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, runID)
	return nil
}

// List returns the stored run ids, oldest first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]*domain.Report, 0, len(s.data))
	for _, r := range s.data {
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].StartedAt.Equal(reports[j].StartedAt) {
			return reports[i].RunID < reports[j].RunID
		}
		return reports[i].StartedAt.Before(reports[j].StartedAt)
	})

	ids := make([]string, len(reports))
	for i, r := range reports {
		ids[i] = r.RunID
	}
	return ids, nil
}

func cloneReport(r *domain.Report) *domain.Report {
	out := *r
	out.Sealed = append([]byte(nil), r.Sealed...)
	out.Recipes = make([]domain.RecipeResult, len(r.Recipes))
	for i, rr := range r.Recipes {
		rr.Steps = append([]string(nil), rr.Steps...)
		rr.Results = append([]domain.StepResult(nil), rr.Results...)
		out.Recipes[i] = rr
	}
	return &out
}
