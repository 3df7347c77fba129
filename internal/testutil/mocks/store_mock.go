package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdeck/internal/repository"
)

// MockStore hands out its mock repositories. WithinTx runs fn against the same
// store and counts how many transactions were opened.
type MockStore struct {
	mock.Mock
	FlashcardRepo *MockFlashcardRepository
	TopicRepo     *MockTopicRepository
	RatingRepo    *MockRatingRepository
	StatsRepo     *MockStatsRepository
	SettingsRepo  *MockSettingsRepository
	Transactions  int
}

func NewMockStore() *MockStore {
	return &MockStore{
		FlashcardRepo: &MockFlashcardRepository{},
		TopicRepo:     &MockTopicRepository{},
		RatingRepo:    &MockRatingRepository{},
		StatsRepo:     &MockStatsRepository{},
		SettingsRepo:  &MockSettingsRepository{},
	}
}

func (m *MockStore) Flashcards() repository.FlashcardRepository { return m.FlashcardRepo }
func (m *MockStore) Topics() repository.TopicRepository         { return m.TopicRepo }
func (m *MockStore) Ratings() repository.RatingRepository       { return m.RatingRepo }
func (m *MockStore) Stats() repository.StatsRepository          { return m.StatsRepo }
func (m *MockStore) Settings() repository.SettingsRepository    { return m.SettingsRepo }

func (m *MockStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	m.Transactions++
	return fn(m)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// AssertExpectations checks every repository mock.
func (m *MockStore) AssertExpectations(t mock.TestingT) bool {
	ok := m.FlashcardRepo.AssertExpectations(t)
	ok = m.TopicRepo.AssertExpectations(t) && ok
	ok = m.RatingRepo.AssertExpectations(t) && ok
	ok = m.StatsRepo.AssertExpectations(t) && ok
	ok = m.SettingsRepo.AssertExpectations(t) && ok
	return m.Mock.AssertExpectations(t) && ok
}
