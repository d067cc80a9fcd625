package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolsim/internal/model"
)

func initializedMemoryStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	require.NoError(t, store.Init(context.Background()))
	return store
}

func TestMemoryStoreRunSummaryRoundTrip(t *testing.T) {
	store := initializedMemoryStore(t)
	ctx := context.Background()

	summary := model.RunSummary{
		VersionedRecord:      Stamp(),
		RunID:                "run-1",
		CreatedAtUTC:         "2026-08-01T10:00:00Z",
		Scenario:             "baseline",
		Agents:               200,
		Trials:               30,
		Steps:                20,
		FinalMeanDropoutRate: 12.5,
	}
	require.NoError(t, store.SaveRunSummary(ctx, summary))

	got, ok, err := store.GetRunSummary(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, summary, got)

	_, ok, err = store.GetRunSummary(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreListsNewestFirst(t *testing.T) {
	store := initializedMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRunSummary(ctx, model.RunSummary{RunID: "a", CreatedAtUTC: "2026-01-01T00:00:00Z"}))
	require.NoError(t, store.SaveRunSummary(ctx, model.RunSummary{RunID: "b", CreatedAtUTC: "2026-02-01T00:00:00Z"}))
	require.NoError(t, store.SaveRunSummary(ctx, model.RunSummary{RunID: "c", CreatedAtUTC: "2026-02-01T00:00:00Z"}))

	summaries, err := store.ListRunSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "b", summaries[0].RunID)
	assert.Equal(t, "c", summaries[1].RunID)
	assert.Equal(t, "a", summaries[2].RunID)
}

func TestMemoryStoreTrialSeriesCopies(t *testing.T) {
	store := initializedMemoryStore(t)
	ctx := context.Background()

	trials := []model.TrialSeries{
		{VersionedRecord: Stamp(), Scenario: "baseline", Trial: 1, Records: []model.StepRecord{{StepIndex: 0}}},
	}
	require.NoError(t, store.SaveTrialSeries(ctx, "run-1", trials))

	got, ok, err := store.GetTrialSeries(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "baseline", got[0].Scenario)

	got[0].Scenario = "mutated"
	again, ok, err := store.GetTrialSeries(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "baseline", again[0].Scenario)

	_, ok, err = store.GetTrialSeries(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreResetDropsEverything(t *testing.T) {
	store := initializedMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRunSummary(ctx, model.RunSummary{RunID: "run-1", CreatedAtUTC: "2026-01-01T00:00:00Z"}))
	require.NoError(t, store.SaveTrialSeries(ctx, "run-1", []model.TrialSeries{{Scenario: "baseline", Trial: 1}}))

	require.NoError(t, store.Reset(ctx))

	summaries, err := store.ListRunSummaries(ctx)
	require.NoError(t, err)
	assert.Empty(t, summaries)

	_, ok, err := store.GetTrialSeries(ctx, "run-1")
	require.NoError(t, err)
	assert.False(t, ok)

	// The store stays usable after a reset.
	require.NoError(t, store.SaveRunSummary(ctx, model.RunSummary{RunID: "run-2", CreatedAtUTC: "2026-02-01T00:00:00Z"}))
	got, ok, err := store.GetRunSummary(ctx, "run-2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "run-2", got.RunID)
}

func TestNewStoreFactory(t *testing.T) {
	store, err := NewStore("memory", "")
	require.NoError(t, err)
	require.NotNil(t, store)

	store, err = NewStore("", "")
	require.NoError(t, err)
	require.NotNil(t, store)
	require.NoError(t, CloseIfSupported(store))

	_, err = NewStore("unknown", "")
	require.Error(t, err)
}
