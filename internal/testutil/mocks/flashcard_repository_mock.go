package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdeck/internal/models"
)

// MockFlashcardRepository is a mock implementation of repository.FlashcardRepository
type MockFlashcardRepository struct {
	mock.Mock
}

func (m *MockFlashcardRepository) Insert(ctx context.Context, card models.Flashcard) (int64, error) {
	args := m.Called(ctx, card)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlashcardRepository) Get(ctx context.Context, userID string, id int64) (*models.Flashcard, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Flashcard), args.Error(1)
}

func (m *MockFlashcardRepository) List(ctx context.Context, filter models.FlashcardFilter) ([]models.Flashcard, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Flashcard), args.Error(1)
}

func (m *MockFlashcardRepository) ListWithTopics(ctx context.Context, filter models.FlashcardFilter) ([]models.FlashcardWithTopic, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FlashcardWithTopic), args.Error(1)
}

func (m *MockFlashcardRepository) UpdateSchedule(ctx context.Context, card models.Flashcard) (int64, error) {
	args := m.Called(ctx, card)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlashcardRepository) UpdateContent(ctx context.Context, card models.Flashcard) (int64, error) {
	args := m.Called(ctx, card)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlashcardRepository) ResetAll(ctx context.Context, userID string, schedule models.CardSchedule) (int64, error) {
	args := m.Called(ctx, userID, schedule)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlashcardRepository) Delete(ctx context.Context, userID string, id int64) (bool, error) {
	args := m.Called(ctx, userID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockFlashcardRepository) DeleteAll(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
