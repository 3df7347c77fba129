package jobs

import (
	"github.com/vytor/flashdeck/internal/worker"
)

// WorkerQueue implements JobQueue on top of a worker pool
type WorkerQueue struct {
	pool    *worker.Pool
	sweeper worker.StreakSweeper
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, sweeper worker.StreakSweeper) JobQueue {
	return &WorkerQueue{pool: pool, sweeper: sweeper}
}

func (q *WorkerQueue) EnqueueStreakSweep() error {
	return q.pool.Submit(&worker.StreakSweepJob{Sweeper: q.sweeper})
}
