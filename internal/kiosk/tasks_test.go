package kiosk

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTasksDrainWaitsForJobs(t *testing.T) {
	r := NewTasks(silentLog())
	var ran atomic.Int32
	for range 3 {
		r.Go("job", func(context.Context) {
			time.Sleep(10 * time.Millisecond)
			ran.Add(1)
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Drain(ctx))
	assert.Equal(t, int32(3), ran.Load())
	assert.Equal(t, 0, r.Pending())
}

func TestTasksDrainTimeout(t *testing.T) {
	r := NewTasks(silentLog())
	release := make(chan struct{})
	task := r.Go("stuck", func(ctx context.Context) {
		select {
		case <-release:
		case <-ctx.Done():
		}
	})
	assert.Equal(t, "stuck", task.Name())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := r.Drain(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, r.Pending())

	r.Stop()
	wctx, wcancel := context.WithTimeout(context.Background(), time.Second)
	defer wcancel()
	require.NoError(t, task.Wait(wctx))
	close(release)
}

func TestTasksRecoversPanic(t *testing.T) {
	r := NewTasks(silentLog())
	task := r.Go("boom", func(context.Context) { panic("kaboom") })

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task never finished")
	}
	assert.Equal(t, 0, r.Pending())
}
