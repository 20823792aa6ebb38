package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ordersync/internal/ledger"
)

func sampleSummary(id string) ledger.RunSummary {
	return ledger.RunSummary{
		ID:             id,
		OverallSuccess: false,
		Message:        "sync completed with errors: 3 rows written, 1 of 2 tenant(s) failed",
		RunDate:        "2024-05-03",
		Timestamp:      time.Date(2024, 5, 3, 12, 0, 0, 123, time.UTC),
		Duration:       1500 * time.Millisecond,
		TotalRows:      3,
		Results: []ledger.RunResult{
			{TenantName: "acme", Outcome: ledger.OutcomeSuccess, RowsWritten: 3, Strategy: "dedup_append"},
			{TenantName: "globex", Outcome: ledger.OutcomeFailed, Error: "UPSTREAM_UNAVAILABLE: list orders: status 502", ErrorCode: "UPSTREAM_UNAVAILABLE"},
		},
	}
}

func TestRuns_AppendAndList(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want := sampleSummary("run-1")
	require.NoError(t, s.Append(ctx, want))

	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want, got[0])
}

func TestRuns_NewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Same timestamp: insertion order decides.
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Append(ctx, sampleSummary(id)))
	}

	got, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestRuns_KeepsMostRecentCapacity(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i := 1; i <= ledger.Capacity+3; i++ {
		require.NoError(t, s.Append(ctx, sampleSummary(fmt.Sprintf("run-%02d", i))))
	}

	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, ledger.Capacity)
	assert.Equal(t, "run-53", got[0].ID)
	assert.Equal(t, "run-04", got[len(got)-1].ID)

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count))
	assert.Equal(t, ledger.Capacity, count)
}

func TestRuns_EmptyResults(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, ledger.RunSummary{ID: "empty", OverallSuccess: true, Message: "no tenants configured"}))

	got, ok, err := s.GetRun(ctx, "empty")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.OverallSuccess)
	assert.Empty(t, got.Results)
}

func TestRuns_DuplicateIDFails(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, sampleSummary("dup")))
	assert.Error(t, s.Append(ctx, sampleSummary("dup")))

	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRuns_GetMissing(t *testing.T) {
	s := createTestStore(t)
	_, ok, err := s.GetRun(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRuns_ImplementsLedger(t *testing.T) {
	var l ledger.Ledger = createTestStore(t)
	require.NoError(t, l.Append(context.Background(), sampleSummary("x")))
}
