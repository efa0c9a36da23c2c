package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/notevec/core"
	"github.com/poiesic/notevec/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRepository_SaveLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := &core.Run{
		Id:        "run-1",
		Stage:     core.StageLabeled,
		Artifact:  "d2v-200",
		Notes:     3,
		Sentences: 9,
		Labeled:   8,
	}
	require.NoError(t, store.Runs.SaveRun(ctx, run))
	assert.False(t, run.StartedAt.IsZero())
	assert.False(t, run.UpdatedAt.IsZero())

	loaded, err := store.Runs.LoadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, core.StageLabeled, loaded.Stage)
	assert.Equal(t, 8, loaded.Labeled)
	assert.True(t, run.StartedAt.Truncate(time.Microsecond).Equal(loaded.StartedAt))

	started := run.StartedAt
	run.Stage = core.StageSaved
	require.NoError(t, store.Runs.SaveRun(ctx, run))
	assert.Equal(t, started, run.StartedAt, "start time is kept across updates")

	loaded, err = store.Runs.LoadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, core.StageSaved, loaded.Stage)
}

func TestRunRepository_LoadRun_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Runs.LoadRun(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRunRepository_SaveRun_EmptyID(t *testing.T) {
	store := newTestStore(t)

	err := store.Runs.SaveRun(context.Background(), &core.Run{})
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestRunRepository_RecentRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		run := &core.Run{Id: id, StartedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, store.Runs.SaveRun(ctx, run))
	}
	// Updating an older run does not move it in the index.
	require.NoError(t, store.Runs.SaveRun(ctx, &core.Run{Id: "a", StartedAt: base, Stage: core.StageReleased}))

	runs, err := store.Runs.RecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].Id)
	assert.Equal(t, "b", runs[1].Id)

	all, err := store.Runs.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[2].Id)
	assert.Equal(t, core.StageReleased, all[2].Stage)
}
