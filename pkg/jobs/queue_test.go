package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsRegisteredHandler(t *testing.T) {
	q := NewQueue("test", QueueConfig{Workers: 2})
	done := make(chan Job, 1)
	q.Handle("sessions.prune", func(_ context.Context, job Job) error {
		done <- job
		return nil
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue("sessions.prune"))
	select {
	case job := <-done:
		assert.Equal(t, "sessions.prune", job.Type)
		assert.NotEmpty(t, job.ID)
		assert.False(t, job.Enqueued.IsZero())
	case <-time.After(time.Second):
		t.Fatal("job was not processed")
	}
}

func TestQueueRejectsUnknownTypeAndUnstarted(t *testing.T) {
	q := NewQueue("test", QueueConfig{})
	q.Handle("known", func(context.Context, Job) error { return nil })

	assert.Error(t, q.Enqueue("known"))

	q.Start(context.Background())
	defer q.Stop()
	assert.Error(t, q.Enqueue("unknown"))
	assert.Error(t, q.Every(0, "known"))
}

func TestQueueRetriesFailures(t *testing.T) {
	q := NewQueue("test", QueueConfig{MaxRetries: 2, RetryDelay: 5 * time.Millisecond})
	var attempts int32
	succeeded := make(chan struct{})
	q.Handle("flaky", func(_ context.Context, job Job) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("database unavailable")
		}
		assert.Equal(t, 2, job.Attempt)
		close(succeeded)
		return nil
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue("flaky"))
	select {
	case <-succeeded:
	case <-time.After(2 * time.Second):
		t.Fatalf("job did not succeed after retries, attempts=%d", atomic.LoadInt32(&attempts))
	}
}

func TestQueueEvery(t *testing.T) {
	q := NewQueue("test", QueueConfig{})
	var runs int32
	q.Handle("tick", func(context.Context, Job) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})
	q.Start(context.Background())

	require.NoError(t, q.Every(10*time.Millisecond, "tick"))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 3 }, time.Second, 5*time.Millisecond)
	q.Stop()
}
