package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_NewestFirst(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()

	require.NoError(t, l.Append(ctx, RunSummary{ID: "a"}))
	require.NoError(t, l.Append(ctx, RunSummary{ID: "b"}))

	got, err := l.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}

func TestMemory_CapacityEvictsOldest(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()

	for i := 1; i <= Capacity+5; i++ {
		require.NoError(t, l.Append(ctx, RunSummary{ID: fmt.Sprintf("run-%02d", i)}))
	}

	got, err := l.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, Capacity)
	assert.Equal(t, "run-55", got[0].ID)
	assert.Equal(t, "run-06", got[Capacity-1].ID)
}

func TestMemory_Limit(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Append(ctx, RunSummary{ID: fmt.Sprint(i)}))
	}

	got, err := l.List(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "3"}, []string{got[0].ID, got[1].ID})

	got, err = l.List(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestMemory_EntriesAreCopies(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()
	results := []RunResult{{TenantName: "acme", Outcome: OutcomeSuccess}}
	require.NoError(t, l.Append(ctx, RunSummary{ID: "a", Results: results}))

	results[0].TenantName = "mutated"
	got, err := l.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "acme", got[0].Results[0].TenantName)
}

func TestMemory_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewMemory()
	assert.Error(t, l.Append(ctx, RunSummary{}))
	_, err := l.List(ctx, 0)
	assert.Error(t, err)
}

func TestRunSummaryFailed(t *testing.T) {
	s := RunSummary{Results: []RunResult{
		{Outcome: OutcomeSuccess},
		{Outcome: OutcomeFailed},
		{Outcome: OutcomeFailed},
	}}
	assert.Equal(t, 2, s.Failed())
}
