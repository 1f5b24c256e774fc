package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	seen := make([]string, 0)
	q := NewQueue[string]("test", func(_ context.Context, job Job[string]) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, job.Payload)
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 4})
	q.Start(context.Background())

	id, err := q.Enqueue(context.Background(), "a")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	_, err = q.Enqueue(context.Background(), "b")
	require.NoError(t, err)

	q.Stop()
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var attempts int32
	done := make(chan struct{})
	q := NewQueue[int]("retry", func(_ context.Context, job Job[int]) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("boom")
		}
		close(done)
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 3, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	_, err := q.Enqueue(context.Background(), 1)
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried")
	}
	assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))
}

func TestQueueRejectsWhenNotRunning(t *testing.T) {
	q := NewQueue[int]("idle", func(context.Context, Job[int]) error { return nil }, QueueConfig{})
	_, err := q.TryEnqueue(1)
	require.Error(t, err)

	q.Start(context.Background())
	q.Stop()
	_, err = q.TryEnqueue(1)
	require.Error(t, err)
}

func TestQueueTryEnqueueFull(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue[int]("full", func(context.Context, Job[int]) error {
		<-block
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())

	// first job occupies the worker, second fills the buffer
	_, err := q.TryEnqueue(1)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return q.Len() == 0 }, time.Second, time.Millisecond)
	_, err = q.TryEnqueue(2)
	require.NoError(t, err)

	_, err = q.TryEnqueue(3)
	assert.ErrorIs(t, err, ErrQueueFull)

	close(block)
	q.Stop()
}
