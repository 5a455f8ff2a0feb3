package ports

import (
	"context"

	"github.com/aretw0/stepwise/pkg/domain"
)

// ReportStore persists finished run reports. Partial progress is never
// stored.
type ReportStore interface {
	// Save persists the report under its RunID.
	Save(ctx context.Context, report *domain.Report) error

	// Load retrieves a report by run id.
	// Returns domain.ErrReportNotFound if it does not exist.
	Load(ctx context.Context, runID string) (*domain.Report, error)

	// Delete removes a report.
	Delete(ctx context.Context, runID string) error

	// List returns the run ids of stored reports.
	List(ctx context.Context) ([]string, error)
}
