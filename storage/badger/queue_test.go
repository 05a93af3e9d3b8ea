package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
)

func TestQueueStore_EnqueueLeaseAck(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	id, err := repos.Queue.Enqueue(ctx, "indexing", []byte(`{"projectId":1}`))
	require.NoError(t, err)
	assert.NotZero(t, id)

	now := time.Now().UTC()
	tasks, err := repos.Queue.Lease(ctx, now, time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0].Id)
	assert.Equal(t, "indexing", tasks[0].Kind)
	assert.Equal(t, []byte(`{"projectId":1}`), tasks[0].Payload)

	// Leased task is invisible to a second consumer
	tasks2, err := repos.Queue.Lease(ctx, now, time.Minute, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks2)

	err = repos.Queue.Ack(ctx, id)
	require.NoError(t, err)

	// Acked task is gone even after lease expiry
	later := now.Add(2 * time.Minute)
	tasks3, err := repos.Queue.Lease(ctx, later, time.Minute, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks3)
}

func TestQueueStore_Redelivery(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	id, err := repos.Queue.Enqueue(ctx, "extraction", []byte("payload"))
	require.NoError(t, err)

	now := time.Now().UTC()
	tasks, err := repos.Queue.Lease(ctx, now, time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 0, tasks[0].Attempts)

	// Consumer crashes; lease expires and the task comes back
	later := now.Add(2 * time.Minute)
	tasks, err = repos.Queue.Lease(ctx, later, time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0].Id)
	assert.Equal(t, 1, tasks[0].Attempts)
}

func TestQueueStore_Retry(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	id, err := repos.Queue.Enqueue(ctx, "feedback", nil)
	require.NoError(t, err)

	now := time.Now().UTC()
	tasks, err := repos.Queue.Lease(ctx, now, time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	// Handler failed; retry with a delay
	notBefore := now.Add(30 * time.Second)
	err = repos.Queue.Retry(ctx, id, notBefore)
	require.NoError(t, err)

	// Not visible before the delay elapses
	tasks, err = repos.Queue.Lease(ctx, now.Add(10*time.Second), time.Minute, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	// Visible afterwards with the attempt recorded
	tasks, err = repos.Queue.Lease(ctx, now.Add(time.Minute), time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 1, tasks[0].Attempts)
}

func TestQueueStore_RetryWithoutLease(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	id, err := repos.Queue.Enqueue(ctx, "structure", nil)
	require.NoError(t, err)

	err = repos.Queue.Retry(ctx, id, time.Now())
	assert.ErrorIs(t, err, storage.ErrTaskNotLeased)

	err = repos.Queue.Ack(ctx, id)
	assert.ErrorIs(t, err, storage.ErrTaskNotLeased)
}

func TestQueueStore_DeadLetter(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	id, err := repos.Queue.Enqueue(ctx, "drafting", []byte("poison"))
	require.NoError(t, err)

	now := time.Now().UTC()
	tasks, err := repos.Queue.Lease(ctx, now, time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	err = repos.Queue.Bury(ctx, id, "max attempts exceeded")
	require.NoError(t, err)

	// Buried task never comes back
	tasks, err = repos.Queue.Lease(ctx, now.Add(time.Hour), time.Minute, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	dead, err := repos.Queue.DeadLetters(ctx)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, id, dead[0].Id)
	assert.Equal(t, []byte("poison"), dead[0].Payload)
}

func TestQueueStore_LeaseLimitAndOrder(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	var ids []uint64
	for i := 0; i < 5; i++ {
		id, err := repos.Queue.Enqueue(ctx, "analysis", nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	now := time.Now().UTC().Add(time.Second)
	tasks, err := repos.Queue.Lease(ctx, now, time.Minute, 3)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	// Oldest tasks first
	assert.Equal(t, ids[0], tasks[0].Id)
	assert.Equal(t, ids[1], tasks[1].Id)
	assert.Equal(t, ids[2], tasks[2].Id)
}
