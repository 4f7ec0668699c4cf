package registry

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	r, err := Open(filepath.Join(t.TempDir(), "sub", "runs.db"))
	require.NoError(t, err)
	defer r.Close()

	t0 := time.UnixMilli(1_700_000_000_000)
	save, err := r.Begin(ctx, uuid.New(), KindSaveDatasets, t0)
	require.NoError(t, err)
	save.Samples = 520
	save.Location = "/artifacts/dataset"
	require.NoError(t, r.Finish(ctx, save, t0.Add(time.Second), nil))

	train, err := r.Begin(ctx, uuid.New(), KindTrainModel, t0.Add(2*time.Second))
	require.NoError(t, err)
	acc := 0.75
	train.Accuracy = &acc
	require.NoError(t, r.Finish(ctx, train, t0.Add(3*time.Second), errors.New("boom")))

	pending, err := r.Begin(ctx, uuid.New(), KindTrainModel, t0.Add(4*time.Second))
	require.NoError(t, err)

	runs, err := r.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	assert.Equal(t, pending.ID, runs[0].ID)
	assert.Equal(t, StatusRunning, runs[0].Status)
	assert.True(t, runs[0].FinishedAt.IsZero())
	assert.Nil(t, runs[0].Accuracy)

	assert.Equal(t, StatusFailed, runs[1].Status)
	assert.Equal(t, "boom", runs[1].Error)
	require.NotNil(t, runs[1].Accuracy)
	assert.InDelta(t, 0.75, *runs[1].Accuracy, 1e-9)

	assert.Equal(t, KindSaveDatasets, runs[2].Kind)
	assert.Equal(t, StatusSucceeded, runs[2].Status)
	assert.Equal(t, 520, runs[2].Samples)
	assert.True(t, t0.Equal(runs[2].StartedAt))
	assert.True(t, t0.Add(time.Second).Equal(runs[2].FinishedAt))

	runs, err = r.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
