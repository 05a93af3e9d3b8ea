package reponsia

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/ai/mock"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestWorkspace(t *testing.T, opts ...WorkspaceOption) *Workspace {
	t.Helper()

	opts = append([]WorkspaceOption{WithProvider(mock.NewMockProvider())}, opts...)
	w, err := Open(filepath.Join(t.TempDir(), "workspace"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestOpen(t *testing.T) {
	t.Run("opens a new workspace", func(t *testing.T) {
		w := openTestWorkspace(t)

		assert.NotNil(t, w.Repositories())
		assert.NotNil(t, w.Provider())
		assert.NotNil(t, w.Tracker())
		assert.NotNil(t, w.Queue())
		assert.NotNil(t, w.Retriever())
		assert.NotNil(t, w.Pipeline())
		assert.NotNil(t, w.Drafting())
		assert.NotNil(t, w.Compliance())
		assert.NotNil(t, w.Chat())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// A regular file where the database directory should go.
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))

		w, err := Open(tmpFile, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, w)
	})
}

func TestWorkspaceClose(t *testing.T) {
	w, err := Open(filepath.Join(t.TempDir(), "workspace"),
		WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)

	assert.NoError(t, w.Close())
}

func TestWorkspaceEnqueue(t *testing.T) {
	ctx := context.Background()
	w := openTestWorkspace(t)

	t.Run("accepts registered kinds", func(t *testing.T) {
		id, err := w.EnqueueSetup(ctx, core.ID(1))
		require.NoError(t, err)
		assert.NotZero(t, id)

		id, err = w.EnqueueDraftAll(ctx, core.ID(1))
		require.NoError(t, err)
		assert.NotZero(t, id)
	})

	t.Run("rejects unknown kinds", func(t *testing.T) {
		_, err := w.Queue().Send(ctx, "export", core.ID(1))
		assert.ErrorIs(t, err, jobs.ErrUnknownKind)
	})
}

func TestWorkspaceQueueSelection(t *testing.T) {
	t.Run("local by default", func(t *testing.T) {
		w := openTestWorkspace(t)

		_, ok := w.Queue().(*jobs.LocalQueue)
		assert.True(t, ok)
		// The local queue needs no consumer loop.
		assert.NoError(t, w.RunQueue(context.Background()))
	})

	t.Run("durable on request", func(t *testing.T) {
		w := openTestWorkspace(t, WithDurableQueue())

		_, ok := w.Queue().(*jobs.DurableQueue)
		assert.True(t, ok)
	})
}

func TestWorkspaceDurableRoundTrip(t *testing.T) {
	ctx := context.Background()
	w := openTestWorkspace(t, WithDurableQueue())

	// An empty project completes every pipeline stage immediately.
	_, err := w.EnqueueSetup(ctx, core.ID(1))
	require.NoError(t, err)

	queue := w.Queue().(*jobs.DurableQueue)
	ranCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- queue.Run(ranCtx) }()

	require.Eventually(t, func() bool {
		job, err := w.Tracker().Latest(ctx, core.ID(1), core.JobTypeStructure)
		return err == nil && job != nil && job.Status == core.JobStatusCompleted
	}, 10*time.Second, 50*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
