package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) (*Tracker, *badger.Repositories) {
	t.Helper()

	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	tracker, err := NewTracker(repos.Jobs)
	require.NoError(t, err)
	return tracker, repos
}

func TestNewTracker(t *testing.T) {
	_, err := NewTracker(nil)
	assert.ErrorIs(t, err, ErrJobRepositoryRequired)
}

func TestTrackerBegin(t *testing.T) {
	tracker, _ := newTestTracker(t)

	job, err := tracker.Begin(context.Background(), 1, core.JobTypeIndexing, "Indexation des documents...")
	require.NoError(t, err)

	assert.NotZero(t, job.Id)
	assert.Equal(t, core.JobStatusProcessing, job.Status)
	assert.Zero(t, job.Progress)
	assert.Equal(t, "Indexation des documents...", job.Message)
	assert.False(t, job.StartedAt.IsZero())
	assert.True(t, job.CompletedAt.IsZero())
}

func TestTrackerProgressIsMonotonic(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	job, err := tracker.Begin(ctx, 1, core.JobTypeStructure, "Analyse de la structure...")
	require.NoError(t, err)

	require.NoError(t, tracker.Update(ctx, job, 70, ""))
	assert.Equal(t, 70, job.Progress)

	// A lower value never rolls visible progress back.
	require.NoError(t, tracker.Update(ctx, job, 30, ""))
	assert.Equal(t, 70, job.Progress)

	// And progress is capped at 100.
	require.NoError(t, tracker.Update(ctx, job, 150, ""))
	assert.Equal(t, 100, job.Progress)
}

func TestTrackerUpdateKeepsMessageWhenEmpty(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	job, err := tracker.Begin(ctx, 1, core.JobTypeExtraction, "Extraction des exigences...")
	require.NoError(t, err)

	require.NoError(t, tracker.Update(ctx, job, 50, ""))
	assert.Equal(t, "Extraction des exigences...", job.Message)

	require.NoError(t, tracker.Update(ctx, job, 60, "Extraction: document 2..."))
	assert.Equal(t, "Extraction: document 2...", job.Message)
}

func TestTrackerComplete(t *testing.T) {
	tracker, repos := newTestTracker(t)
	ctx := context.Background()

	job, err := tracker.Begin(ctx, 1, core.JobTypeIndexing, "Indexation...")
	require.NoError(t, err)
	require.NoError(t, tracker.Update(ctx, job, 80, ""))

	require.NoError(t, tracker.Complete(ctx, job, "42 chunks indexés"))
	assert.Equal(t, core.JobStatusCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.False(t, job.CompletedAt.IsZero())

	stored, err := repos.Jobs.GetJob(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, core.JobStatusCompleted, stored.Status)
	assert.Equal(t, 100, stored.Progress)
}

func TestTrackerFail(t *testing.T) {
	tracker, repos := newTestTracker(t)
	ctx := context.Background()

	job, err := tracker.Begin(ctx, 1, core.JobTypeFeedback, "Analyse des retours...")
	require.NoError(t, err)
	require.NoError(t, tracker.Update(ctx, job, 40, ""))

	require.NoError(t, tracker.Fail(ctx, job, errors.New("model timeout")))
	assert.Equal(t, core.JobStatusError, job.Status)
	assert.Equal(t, "model timeout", job.ErrorMessage)
	assert.Equal(t, 40, job.Progress)
	assert.False(t, job.CompletedAt.IsZero())

	stored, err := repos.Jobs.GetJob(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, core.JobStatusError, stored.Status)
}

func TestTrackerTerminalJobsAreFrozen(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	job, err := tracker.Begin(ctx, 1, core.JobTypeDraftAll, "Rédaction automatique...")
	require.NoError(t, err)
	require.NoError(t, tracker.Complete(ctx, job, ""))

	assert.ErrorIs(t, tracker.Update(ctx, job, 10, "late update"), ErrJobTerminal)
	assert.ErrorIs(t, tracker.Complete(ctx, job, ""), ErrJobTerminal)
	assert.ErrorIs(t, tracker.Fail(ctx, job, errors.New("late failure")), ErrJobTerminal)
}

func TestTrackerLatest(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	t.Run("no job yet", func(t *testing.T) {
		job, err := tracker.Latest(ctx, 1, core.JobTypeIndexing)
		require.NoError(t, err)
		assert.Nil(t, job)
	})

	t.Run("returns most recent of the type", func(t *testing.T) {
		first, err := tracker.Begin(ctx, 1, core.JobTypeIndexing, "first run")
		require.NoError(t, err)
		require.NoError(t, tracker.Complete(ctx, first, ""))

		second, err := tracker.Begin(ctx, 1, core.JobTypeIndexing, "second run")
		require.NoError(t, err)

		latest, err := tracker.Latest(ctx, 1, core.JobTypeIndexing)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, second.Id, latest.Id)
	})
}
