package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunReportStoreContract runs a suite of tests to verify that a ReportStore
// implementation adheres to the defined interface contract.
func RunReportStoreContract(t *testing.T, store ReportStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	newReport := func(id string) *domain.Report {
		started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		return &domain.Report{
			RunID:      id,
			Pipeline:   "contract",
			StartedAt:  started,
			FinishedAt: started.Add(time.Second),
			Recipes: []domain.RecipeResult{{
				Index: 0,
				Steps: []string{"Step1", "Step2"},
				Results: []domain.StepResult{
					{Step: "Step1", Type: "A", Value: "amir"},
					{Step: "Step2", Type: "B", Value: "taha"},
				},
			}},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		report := newReport(runID)

		err := store.Save(ctx, report)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, report.RunID, loaded.RunID)
		assert.Equal(t, report.Pipeline, loaded.Pipeline)
		assert.True(t, report.StartedAt.Equal(loaded.StartedAt))
		require.Len(t, loaded.Recipes, 1)
		assert.Equal(t, []string{"Step1", "Step2"}, loaded.Recipes[0].Steps)
		// Values may come back through JSON, only their presence is guaranteed.
		assert.NotNil(t, loaded.Recipes[0].Results[1].Value)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrReportNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, newReport(runID))
		require.NoError(t, err)

		err = store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrReportNotFound, "Load after Delete should return ErrReportNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Save(ctx, newReport(id1))
		_ = store.Save(ctx, newReport(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}
