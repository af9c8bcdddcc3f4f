package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/keatontom/salesforce-opportunity-analysis/internal/analysis"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/errors"
	"github.com/keatontom/salesforce-opportunity-analysis/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) ports.ReportStore {
	t.Helper()
	db, err := Connect(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewReportRepository(db)
}

func testReport(id string, at time.Time) *analysis.Report {
	return &analysis.Report{
		ID:                     id,
		GeneratedAt:            at,
		Source:                 "pipeline.csv",
		DateRange:              "ytd",
		RowCount:               4,
		CoreMetrics:            analysis.CoreMetrics{TotalVolume: 29500, WinRate: 50, NumberOfOpportunities: 4},
		ScoreOpenOpportunities: analysis.ScoreResult{Message: analysis.MsgNoOpen},
	}
}

func TestReportRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	at := time.Date(2024, 6, 30, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, testReport("r1", at)))

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "ytd", got.DateRange)
	assert.Equal(t, 29500.0, got.CoreMetrics.TotalVolume)
	assert.False(t, got.ScoreOpenOpportunities.HasData)
	assert.Equal(t, analysis.MsgNoOpen, got.ScoreOpenOpportunities.Message)
	assert.True(t, got.GeneratedAt.Equal(at))
}

func TestReportRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	at := time.Date(2024, 6, 30, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, testReport("r1", at)))
	updated := testReport("r1", at)
	updated.RowCount = 9
	require.NoError(t, store.Save(ctx, updated))

	list, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 9, list[0].RowCount)
}

func TestReportRepositoryListOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	base := time.Date(2024, 6, 30, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, testReport("old", base.Add(-48*time.Hour))))
	require.NoError(t, store.Save(ctx, testReport("new", base)))
	// Non-UTC input must still order chronologically.
	require.NoError(t, store.Save(ctx, testReport("mid", base.Add(-time.Hour).In(time.FixedZone("X", 5*3600)))))

	list, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "mid", list[1].ID)
	assert.Equal(t, "old", list[2].ID)
	assert.True(t, list[1].GeneratedAt.Equal(base.Add(-time.Hour)))

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestReportRepositoryNotFound(t *testing.T) {
	_, err := newTestStore(t).Get(context.Background(), "nope")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestConnectRequiresURL(t *testing.T) {
	_, err := Connect(context.Background(), "sqlite", "")
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
