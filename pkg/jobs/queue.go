package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNotRunning is returned when submitting to a queue that was never started or is stopped.
	ErrNotRunning = errors.New("queue not running")
	// ErrFull is returned when the buffer has no free slot; Submit never blocks.
	ErrFull = errors.New("queue full")
	// ErrStopped is passed to OnDrop for tasks still buffered when Stop returns.
	ErrStopped = errors.New("queue stopped before task ran")
)

// Task is a unit of background work.
type Task struct {
	ID         string
	Kind       string
	Payload    any
	Attempt    int
	EnqueuedAt time.Time
}

// HandlerFunc processes a task. A non-nil error schedules a retry.
type HandlerFunc func(context.Context, Task) error

// DropFunc observes tasks that are abandoned after retries or rejected.
type DropFunc func(Task, error)

// Options sizes the worker pool.
type Options struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
	OnDrop     DropFunc
}

// Queue is an in-memory worker pool with bounded buffering and delayed retries.
type Queue struct {
	name    string
	handler HandlerFunc
	opts    Options
	logger  *zap.Logger

	tasks   chan Task
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	running bool
}

// New builds a queue; call Start before submitting.
func New(name string, handler HandlerFunc, opts Options) *Queue {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = opts.Workers * 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Queue{
		name:    name,
		handler: handler,
		opts:    opts,
		logger:  opts.Logger.With(zap.String("queue", name)),
		tasks:   make(chan Task, opts.BufferSize),
	}
}

// Start launches the workers. Subsequent calls are no-ops.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.opts.Workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	q.running = true
	q.logger.Info("queue started", zap.Int("workers", q.opts.Workers))
}

// Stop cancels the workers, waits for in-flight tasks, then hands every task
// left in the buffer to OnDrop.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()

	drained := 0
	for {
		select {
		case task := <-q.tasks:
			drained++
			q.drop(task, fmt.Errorf("%s: %w", q.name, ErrStopped))
		default:
			q.logger.Info("queue stopped", zap.Int("dropped", drained))
			return
		}
	}
}

// Submit buffers a task without blocking the caller.
func (q *Queue) Submit(task Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.running {
		return fmt.Errorf("%s: %w", q.name, ErrNotRunning)
	}
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = time.Now().UTC()
	}
	select {
	case q.tasks <- task:
		return nil
	default:
		return fmt.Errorf("%s: %w", q.name, ErrFull)
	}
}

func (q *Queue) work() {
	defer q.wg.Done()
	for {
		// Once stopped, leave buffered tasks for Stop to drain.
		if q.ctx.Err() != nil {
			return
		}
		select {
		case <-q.ctx.Done():
			return
		case task := <-q.tasks:
			if err := q.handler(q.ctx, task); err != nil {
				q.retry(task, err)
			}
		}
	}
}

func (q *Queue) retry(task Task, cause error) {
	task.Attempt++
	fields := []zap.Field{zap.String("task_id", task.ID), zap.String("kind", task.Kind), zap.Int("attempt", task.Attempt), zap.Error(cause)}
	if task.Attempt > q.opts.MaxRetries {
		q.logger.Error("task exceeded retries", fields...)
		q.drop(task, cause)
		return
	}
	q.logger.Warn("task failed, retrying", fields...)

	time.AfterFunc(q.opts.RetryDelay, func() {
		if err := q.Submit(task); err != nil {
			q.logger.Error("failed to requeue task", zap.String("task_id", task.ID), zap.Error(err))
			q.drop(task, err)
		}
	})
}

func (q *Queue) drop(task Task, err error) {
	if q.opts.OnDrop != nil {
		q.opts.OnDrop(task, err)
	}
}
