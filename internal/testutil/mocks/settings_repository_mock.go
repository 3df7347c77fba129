package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdeck/internal/models"
)

// MockSettingsRepository is a mock implementation of repository.SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context, userID string) (*models.UserSettings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSettings), args.Error(1)
}

func (m *MockSettingsRepository) Insert(ctx context.Context, settings models.UserSettings, now time.Time) error {
	args := m.Called(ctx, settings, now)
	return args.Error(0)
}

func (m *MockSettingsRepository) Update(ctx context.Context, settings models.UserSettings, now time.Time) (int64, error) {
	args := m.Called(ctx, settings, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSettingsRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
