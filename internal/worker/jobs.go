package worker

import (
	"context"

	"github.com/vytor/flashdeck/internal/logger"
)

// StreakSweeper zeroes stored streaks that have lapsed. It is satisfied by
// services.StatsService; the interface keeps worker free of a services import.
type StreakSweeper interface {
	SweepLapsedStreaks(ctx context.Context) (int64, error)
}

// StreakSweepJob brings stored study streaks in line with the calendar.
type StreakSweepJob struct {
	Sweeper StreakSweeper
}

func (j *StreakSweepJob) Name() string { return "streak_sweep" }

func (j *StreakSweepJob) Run(ctx context.Context) error {
	n, err := j.Sweeper.SweepLapsedStreaks(ctx)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("reset %d lapsed streaks", n)
	return nil
}
