package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdeck/internal/models"
)

// MockTopicRepository is a mock implementation of repository.TopicRepository
type MockTopicRepository struct {
	mock.Mock
}

func (m *MockTopicRepository) Insert(ctx context.Context, topic models.Topic) (int64, error) {
	args := m.Called(ctx, topic)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTopicRepository) Get(ctx context.Context, userID string, id int64) (*models.Topic, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Topic), args.Error(1)
}

func (m *MockTopicRepository) List(ctx context.Context, userID string) ([]models.Topic, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Topic), args.Error(1)
}

func (m *MockTopicRepository) Update(ctx context.Context, topic models.Topic) (bool, error) {
	args := m.Called(ctx, topic)
	return args.Bool(0), args.Error(1)
}

func (m *MockTopicRepository) Delete(ctx context.Context, userID string, id int64) (bool, error) {
	args := m.Called(ctx, userID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTopicRepository) DeleteAll(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockTopicRepository) InsertSubtopic(ctx context.Context, subtopic models.Subtopic) (int64, error) {
	args := m.Called(ctx, subtopic)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTopicRepository) GetSubtopic(ctx context.Context, userID string, id int64) (*models.Subtopic, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subtopic), args.Error(1)
}

func (m *MockTopicRepository) ListSubtopics(ctx context.Context, userID string, topicID int64) ([]models.SubtopicWithCount, error) {
	args := m.Called(ctx, userID, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SubtopicWithCount), args.Error(1)
}

func (m *MockTopicRepository) CountSubtopics(ctx context.Context, userID string) (map[int64]int, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int), args.Error(1)
}
