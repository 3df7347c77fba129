package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdeck/internal/models"
)

// MockStatsRepository is a mock implementation of repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Get(ctx context.Context, userID string) (*models.UserStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStats), args.Error(1)
}

func (m *MockStatsRepository) Upsert(ctx context.Context, stats models.UserStats, now time.Time) (int64, error) {
	args := m.Called(ctx, stats, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsRepository) Reset(ctx context.Context, userID string, now time.Time) error {
	args := m.Called(ctx, userID, now)
	return args.Error(0)
}

func (m *MockStatsRepository) ResetLapsedStreaks(ctx context.Context, cutoff, now time.Time) (int64, error) {
	args := m.Called(ctx, cutoff, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
