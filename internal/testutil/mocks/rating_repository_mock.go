package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdeck/internal/models"
)

// MockRatingRepository is a mock implementation of repository.RatingRepository
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) Insert(ctx context.Context, event models.RatingEvent) (int64, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRatingRepository) List(ctx context.Context, filter models.RatingFilter) ([]models.RatingEvent, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RatingEvent), args.Error(1)
}

func (m *MockRatingRepository) DeleteAll(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
