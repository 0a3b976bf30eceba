package kiosk

import (
	"context"
	"fmt"
	"sync"

	"github.com/soyeahso/boothbot/internal/logging"
)

// Task is a handle on one background job.
type Task struct {
	name string
	done chan struct{}
}

// Name returns the task's label.
func (t *Task) Name() string { return t.name }

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes or ctx ends.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tasks runs jobs off the conversation path, such as mail delivery, and
// lets shutdown wait for them within a bound.
type Tasks struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *logging.Logger

	mu      sync.Mutex
	pending map[*Task]struct{}
	wg      sync.WaitGroup
}

// NewTasks creates a runner. Jobs receive a context that is independent of
// any request and is only canceled by Stop.
func NewTasks(log *logging.Logger) *Tasks {
	ctx, cancel := context.WithCancel(context.Background())
	return &Tasks{
		ctx:     ctx,
		cancel:  cancel,
		log:     log.Sub("tasks"),
		pending: make(map[*Task]struct{}),
	}
}

// Go starts fn in the background and returns its handle.
func (r *Tasks) Go(name string, fn func(ctx context.Context)) *Task {
	t := &Task{name: name, done: make(chan struct{})}

	r.mu.Lock()
	r.pending[t] = struct{}{}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer func() {
			if v := recover(); v != nil {
				r.log.Error().Str("task", name).Str("panic", fmt.Sprint(v)).Msg("background task panicked")
			}
			r.mu.Lock()
			delete(r.pending, t)
			r.mu.Unlock()
			close(t.done)
			r.wg.Done()
		}()
		fn(r.ctx)
	}()
	return t
}

// Pending returns the number of unfinished tasks.
func (r *Tasks) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Drain waits for every task to finish or ctx to end, whichever is first.
func (r *Tasks) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		r.mu.Lock()
		names := make([]string, 0, len(r.pending))
		for t := range r.pending {
			names = append(names, t.name)
		}
		r.mu.Unlock()
		r.log.Warn().Strs("tasks", names).Msg("shutdown window elapsed with tasks still running")
		return ctx.Err()
	}
}

// Stop cancels the context handed to running tasks.
func (r *Tasks) Stop() {
	r.cancel()
}
