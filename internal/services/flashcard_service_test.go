package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/services"
	"github.com/vytor/flashdeck/internal/testutil/mocks"
)

func int64Ptr(v int64) *int64 { return &v }

func TestCreateFlashcard(t *testing.T) {
	store := mocks.NewMockStore()
	svc := services.NewFlashcardService(store, testSettings())
	ctx := context.Background()

	store.TopicRepo.On("Get", ctx, "u1", int64(1)).Return(&models.Topic{ID: 1, UserID: "u1", Name: "Go"}, nil)
	store.TopicRepo.On("GetSubtopic", ctx, "u1", int64(5)).Return(&models.Subtopic{ID: 5, TopicID: 1, UserID: "u1"}, nil)
	store.FlashcardRepo.On("Insert", ctx, mock.MatchedBy(func(c models.Flashcard) bool {
		return c.FrontText == "What is a goroutine?" && c.IsActive && c.IntervalDays == 1 &&
			c.EaseFactor == flashcard.InitialEaseFactor && c.NextReviewAt.Equal(testNow)
	})).Return(int64(42), nil)

	card, err := svc.CreateFlashcard(ctx, "u1", services.NewFlashcard{
		TopicID:    1,
		SubtopicID: int64Ptr(5),
		FrontText:  "  What is a goroutine?  ",
		BackText:   "A lightweight thread",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), card.ID)
	assert.Equal(t, int64(5), *card.SubtopicID)
	store.AssertExpectations(t)
}

func TestCreateFlashcard_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("empty front", func(t *testing.T) {
		store := mocks.NewMockStore()
		svc := services.NewFlashcardService(store, testSettings())
		_, err := svc.CreateFlashcard(ctx, "u1", services.NewFlashcard{TopicID: 1, FrontText: " ", BackText: "b"})
		requireAppCode(t, err, errors.ErrCodeValidation)
	})

	t.Run("unknown topic", func(t *testing.T) {
		store := mocks.NewMockStore()
		svc := services.NewFlashcardService(store, testSettings())
		store.TopicRepo.On("Get", ctx, "u1", int64(9)).Return(nil, nil)
		_, err := svc.CreateFlashcard(ctx, "u1", services.NewFlashcard{TopicID: 9, FrontText: "f", BackText: "b"})
		requireAppCode(t, err, errors.ErrCodeValidation)
		store.FlashcardRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("subtopic from another topic", func(t *testing.T) {
		store := mocks.NewMockStore()
		svc := services.NewFlashcardService(store, testSettings())
		store.TopicRepo.On("Get", ctx, "u1", int64(1)).Return(&models.Topic{ID: 1}, nil)
		store.TopicRepo.On("GetSubtopic", ctx, "u1", int64(5)).Return(&models.Subtopic{ID: 5, TopicID: 2}, nil)
		_, err := svc.CreateFlashcard(ctx, "u1", services.NewFlashcard{TopicID: 1, SubtopicID: int64Ptr(5), FrontText: "f", BackText: "b"})
		requireAppCode(t, err, errors.ErrCodeValidation)
	})
}

func TestDueFlashcards(t *testing.T) {
	store := mocks.NewMockStore()
	svc := services.NewFlashcardService(store, testSettings())
	ctx := context.Background()

	due := *newCard(1, 1, flashcard.NewSchedule(testNow.Add(-time.Minute)))
	later := *newCard(2, 1, flashcard.NewSchedule(testNow.Add(time.Hour)))
	store.FlashcardRepo.On("List", ctx, mock.MatchedBy(func(f models.FlashcardFilter) bool {
		return f.UserID == "u1" && f.ActiveOnly && f.TopicID == 1 && f.DueBefore != nil && f.DueBefore.Equal(testNow)
	})).Return([]models.Flashcard{due, later}, nil)

	cards, err := svc.DueFlashcards(ctx, "u1", flashcard.DueFilter{TopicID: int64Ptr(1)})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, int64(1), cards[0].ID)
	store.AssertExpectations(t)
}

func TestStudyQueue_CapsBySessionLength(t *testing.T) {
	store := mocks.NewMockStore()
	svc := services.NewFlashcardService(store, testSettings())
	ctx := context.Background()

	var cards []models.FlashcardWithTopic
	for i := int64(1); i <= 5; i++ {
		cards = append(cards, models.FlashcardWithTopic{Flashcard: *newCard(i, 1, flashcard.NewSchedule(testNow)), TopicName: "Go"})
	}
	store.FlashcardRepo.On("ListWithTopics", ctx, mock.Anything).Return(cards, nil)
	store.SettingsRepo.On("Get", ctx, "u1").Return(nil, nil)

	// One minute at 30s a card.
	queue, err := svc.StudyQueue(ctx, "u1", 1)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, int64(1), queue[0].ID)
	assert.Equal(t, int64(2), queue[1].ID)
}

func dueQueueCards(n int) []models.FlashcardWithTopic {
	var cards []models.FlashcardWithTopic
	for i := int64(1); i <= int64(n); i++ {
		cards = append(cards, models.FlashcardWithTopic{Flashcard: *newCard(i, 1, flashcard.NewSchedule(testNow)), TopicName: "Go"})
	}
	return cards
}

func TestStudyQueue_CapsByDailyGoal(t *testing.T) {
	store := mocks.NewMockStore()
	svc := services.NewFlashcardService(store, testSettings())
	ctx := context.Background()

	prefs := services.DefaultUserSettings("u1")
	prefs.DailyGoal = 3
	store.SettingsRepo.On("Get", ctx, "u1").Return(&prefs, nil)
	store.FlashcardRepo.On("ListWithTopics", ctx, mock.Anything).Return(dueQueueCards(10), nil)

	queue, err := svc.StudyQueue(ctx, "u1", 60)
	require.NoError(t, err)
	assert.Len(t, queue, 3)
}

func TestStudyQueue_HugeBudgetIsCappedNotNegative(t *testing.T) {
	store := mocks.NewMockStore()
	svc := services.NewFlashcardService(store, testSettings())
	ctx := context.Background()

	store.SettingsRepo.On("Get", ctx, "u1").Return(nil, nil)
	store.FlashcardRepo.On("ListWithTopics", ctx, mock.Anything).Return(dueQueueCards(30), nil)

	queue, err := svc.StudyQueue(ctx, "u1", 153722867280912931)
	require.NoError(t, err)
	assert.Len(t, queue, services.DefaultDailyGoal)
}

func TestUpdateFlashcard(t *testing.T) {
	store := mocks.NewMockStore()
	svc := services.NewFlashcardService(store, testSettings())
	ctx := context.Background()

	existing := newCard(3, 1, flashcard.NewSchedule(testNow))
	existing.SubtopicID = int64Ptr(5)
	store.FlashcardRepo.On("Get", ctx, "u1", int64(3)).Return(existing, nil)
	store.FlashcardRepo.On("UpdateContent", ctx, mock.MatchedBy(func(c models.Flashcard) bool {
		return c.BackText == "new back" && !c.IsActive && c.SubtopicID == nil
	})).Return(int64(4), nil)

	back := "  new back "
	inactive := false
	card, err := svc.UpdateFlashcard(ctx, "u1", 3, models.FlashcardUpdate{
		BackText:   &back,
		IsActive:   &inactive,
		SubtopicID: int64Ptr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), card.Version)
	assert.Equal(t, "front", card.FrontText)
	store.AssertExpectations(t)
}

func TestUpdateFlashcard_ConflictRetriesThenFails(t *testing.T) {
	store := mocks.NewMockStore()
	svc := services.NewFlashcardService(store, testSettings())
	ctx := context.Background()

	store.FlashcardRepo.On("Get", ctx, "u1", int64(3)).Return(newCard(3, 1, flashcard.NewSchedule(testNow)), nil)
	store.FlashcardRepo.On("UpdateContent", ctx, mock.Anything).Return(int64(0), repository.ErrConcurrentUpdate)

	text := "x"
	_, err := svc.UpdateFlashcard(ctx, "u1", 3, models.FlashcardUpdate{FrontText: &text})
	requireAppCode(t, err, errors.ErrCodeConflict)
	assert.Equal(t, 3, store.Transactions)
}

func TestResetFlashcard(t *testing.T) {
	store := mocks.NewMockStore()
	svc := services.NewFlashcardService(store, testSettings())
	ctx := context.Background()

	studied := newCard(3, 1, models.CardSchedule{
		IntervalDays: 30, EaseFactor: 1.9, NextReviewAt: testNow.AddDate(0, 1, 0), ReviewCount: 8, SuccessCount: 6, SuccessRate: 0.75,
	})
	store.FlashcardRepo.On("Get", ctx, "u1", int64(3)).Return(studied, nil)
	store.FlashcardRepo.On("UpdateSchedule", ctx, mock.MatchedBy(func(c models.Flashcard) bool {
		return c.CardSchedule == flashcard.NewSchedule(testNow)
	})).Return(int64(4), nil)

	card, err := svc.ResetFlashcard(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, 0, card.ReviewCount)
	store.AssertExpectations(t)
}

func TestDeleteFlashcard(t *testing.T) {
	store := mocks.NewMockStore()
	svc := services.NewFlashcardService(store, testSettings())
	ctx := context.Background()

	store.FlashcardRepo.On("Delete", ctx, "u1", int64(3)).Return(true, nil)
	store.FlashcardRepo.On("Delete", ctx, "u1", int64(4)).Return(false, nil)

	require.NoError(t, svc.DeleteFlashcard(ctx, "u1", 3))
	requireAppCode(t, svc.DeleteFlashcard(ctx, "u1", 4), errors.ErrCodeNotFound)
}
