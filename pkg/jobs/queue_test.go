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

func TestQueueProcessesTasks(t *testing.T) {
	done := make(chan string, 2)
	q := New("test", func(_ context.Context, task Task) error {
		done <- task.ID
		return nil
	}, Options{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Submit(Task{ID: "a"}))
	require.NoError(t, q.Submit(Task{ID: "b"}))

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-done:
			seen[id] = true
		case <-time.After(time.Second):
			t.Fatal("task not processed")
		}
	}
	assert.True(t, seen["a"] && seen["b"])
}

func TestQueueRetriesThenDrops(t *testing.T) {
	var calls int32
	dropped := make(chan Task, 1)
	q := New("retry", func(context.Context, Task) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}, Options{MaxRetries: 2, RetryDelay: time.Millisecond, OnDrop: func(task Task, _ error) { dropped <- task }})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Submit(Task{ID: "x"}))

	select {
	case task := <-dropped:
		assert.Equal(t, "x", task.ID)
		assert.Equal(t, 3, task.Attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("task was not dropped")
	}
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestQueueSubmitRequiresStart(t *testing.T) {
	q := New("idle", func(context.Context, Task) error { return nil }, Options{})
	err := q.Submit(Task{ID: "a"})
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestQueueSubmitNeverBlocks(t *testing.T) {
	release := make(chan struct{})
	q := New("full", func(context.Context, Task) error {
		<-release
		return nil
	}, Options{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer func() {
		close(release)
		q.Stop()
	}()

	var err error
	for i := 0; i < 5 && err == nil; i++ {
		err = q.Submit(Task{ID: "t"})
	}
	assert.ErrorIs(t, err, ErrFull)
}

func TestQueueStopDropsBufferedTasks(t *testing.T) {
	started := make(chan struct{})
	var dropped []Task
	var dropErr error
	q := New("drain", func(ctx context.Context, _ Task) error {
		close(started)
		<-ctx.Done()
		return nil
	}, Options{Workers: 1, BufferSize: 4, OnDrop: func(task Task, err error) {
		dropped = append(dropped, task)
		dropErr = err
	}})
	q.Start(context.Background())

	require.NoError(t, q.Submit(Task{ID: "running"}))
	<-started
	require.NoError(t, q.Submit(Task{ID: "b"}))
	require.NoError(t, q.Submit(Task{ID: "c"}))

	q.Stop()

	require.Len(t, dropped, 2)
	assert.Equal(t, "b", dropped[0].ID)
	assert.Equal(t, "c", dropped[1].ID)
	assert.ErrorIs(t, dropErr, ErrStopped)
	assert.ErrorIs(t, q.Submit(Task{ID: "late"}), ErrNotRunning)
}
