package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/worker"
)

type countingSweeper struct {
	calls chan struct{}
}

func (c *countingSweeper) SweepLapsedStreaks(context.Context) (int64, error) {
	c.calls <- struct{}{}
	return 0, nil
}

func TestWorkerQueue_EnqueueStreakSweep(t *testing.T) {
	pool := worker.NewPool(1, 1)
	sweeper := &countingSweeper{calls: make(chan struct{}, 1)}
	queue := NewWorkerQueue(pool, sweeper)

	require.NoError(t, queue.EnqueueStreakSweep())
	assert.ErrorIs(t, queue.EnqueueStreakSweep(), worker.ErrQueueFull)

	pool.Start(context.Background())
	pool.Stop()
	assert.Len(t, sweeper.calls, 1)

	assert.ErrorIs(t, queue.EnqueueStreakSweep(), worker.ErrPoolStopped)
}
