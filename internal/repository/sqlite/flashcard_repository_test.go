package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/repository/sqlite"
	"github.com/vytor/flashdeck/internal/testutil"
)

var now = time.Date(2024, time.March, 10, 14, 30, 0, 0, time.UTC)

type FlashcardRepositorySuite struct {
	suite.Suite
	db     *sql.DB
	repo   repository.FlashcardRepository
	topics repository.TopicRepository
}

func (s *FlashcardRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewFlashcardRepository(s.db)
	s.topics = sqlite.NewTopicRepository(s.db)
}

func (s *FlashcardRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *FlashcardRepositorySuite) createTopic(userID, name string) int64 {
	id, err := s.topics.Insert(context.Background(), models.Topic{UserID: userID, Name: name, Color: "#3366ff"})
	s.Require().NoError(err)
	return id
}

func (s *FlashcardRepositorySuite) createCard(userID string, topicID int64, next time.Time) models.Flashcard {
	c := models.Flashcard{
		UserID:    userID,
		TopicID:   topicID,
		FrontText: "front",
		BackText:  "back",
		IsActive:  true,
		CreatedAt: now,
	}
	c.CardSchedule = flashcard.NewSchedule(next)

	id, err := s.repo.Insert(context.Background(), c)
	s.Require().NoError(err)
	c.ID = id
	c.Version = 1
	return c
}

func (s *FlashcardRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()
	topicID := s.createTopic("u1", "Spanish")
	created := s.createCard("u1", topicID, now)

	got, err := s.repo.Get(ctx, "u1", created.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().Equal("front", got.FrontText)
	s.Assert().Equal(topicID, got.TopicID)
	s.Assert().Nil(got.SubtopicID)
	s.Assert().True(got.IsActive)
	s.Assert().Equal(1, got.IntervalDays)
	s.Assert().Equal(2.5, got.EaseFactor)
	s.Assert().Equal(int64(1), got.Version)
	s.Assert().True(now.Equal(got.NextReviewAt))
}

func (s *FlashcardRepositorySuite) TestGet_OtherUserIsNotFound() {
	topicID := s.createTopic("u1", "Spanish")
	created := s.createCard("u1", topicID, now)

	got, err := s.repo.Get(context.Background(), "u2", created.ID)
	s.Require().NoError(err)
	s.Assert().Nil(got)

	got, err = s.repo.Get(context.Background(), "u1", 9999)
	s.Require().NoError(err)
	s.Assert().Nil(got)
}

func (s *FlashcardRepositorySuite) TestList_DueFilter() {
	ctx := context.Background()
	topicID := s.createTopic("u1", "Spanish")
	otherTopic := s.createTopic("u1", "French")

	overdue := s.createCard("u1", topicID, now.Add(-time.Hour))
	exact := s.createCard("u1", topicID, now)
	s.createCard("u1", topicID, now.Add(time.Hour))
	s.createCard("u1", otherTopic, now.Add(-time.Hour))
	s.createCard("u2", s.createTopic("u2", "Spanish"), now.Add(-time.Hour))

	inactive := s.createCard("u1", topicID, now.Add(-2*time.Hour))
	inactive.IsActive = false
	_, err := s.repo.UpdateContent(ctx, inactive)
	s.Require().NoError(err)

	due, err := s.repo.List(ctx, models.FlashcardFilter{UserID: "u1", TopicID: topicID, ActiveOnly: true, DueBefore: &now})
	s.Require().NoError(err)
	s.Require().Len(due, 2)
	s.Assert().Equal(overdue.ID, due[0].ID)
	s.Assert().Equal(exact.ID, due[1].ID)

	all, err := s.repo.List(ctx, models.FlashcardFilter{UserID: "u1"})
	s.Require().NoError(err)
	s.Assert().Len(all, 5)

	limited, err := s.repo.List(ctx, models.FlashcardFilter{UserID: "u1", Limit: 2})
	s.Require().NoError(err)
	s.Assert().Len(limited, 2)
}

func (s *FlashcardRepositorySuite) TestList_SubtopicFilter() {
	ctx := context.Background()
	topicID := s.createTopic("u1", "Spanish")
	subID, err := s.topics.InsertSubtopic(ctx, models.Subtopic{TopicID: topicID, UserID: "u1", Name: "Verbs", CreatedAt: now})
	s.Require().NoError(err)

	card := s.createCard("u1", topicID, now)
	card.SubtopicID = &subID
	_, err = s.repo.UpdateContent(ctx, card)
	s.Require().NoError(err)
	s.createCard("u1", topicID, now)

	got, err := s.repo.List(ctx, models.FlashcardFilter{UserID: "u1", SubtopicID: subID})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Require().NotNil(got[0].SubtopicID)
	s.Assert().Equal(subID, *got[0].SubtopicID)
}

func (s *FlashcardRepositorySuite) TestListWithTopics() {
	topicID := s.createTopic("u1", "Spanish")
	s.createCard("u1", topicID, now)

	got, err := s.repo.ListWithTopics(context.Background(), models.FlashcardFilter{UserID: "u1"})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Assert().Equal("Spanish", got[0].TopicName)
	s.Assert().Equal("#3366ff", got[0].TopicColor)
}

func (s *FlashcardRepositorySuite) TestUpdateSchedule_VersionCheck() {
	ctx := context.Background()
	topicID := s.createTopic("u1", "Spanish")
	card := s.createCard("u1", topicID, now)

	next, err := flashcard.Next(card.CardSchedule, models.RatingGood, now)
	s.Require().NoError(err)

	stale := card
	card.CardSchedule = next
	version, err := s.repo.UpdateSchedule(ctx, card)
	s.Require().NoError(err)
	s.Assert().Equal(int64(2), version)

	// A writer still holding version 1 loses.
	stale.IntervalDays = 99
	_, err = s.repo.UpdateSchedule(ctx, stale)
	s.Assert().ErrorIs(err, repository.ErrConcurrentUpdate)

	got, err := s.repo.Get(ctx, "u1", card.ID)
	s.Require().NoError(err)
	s.Assert().Equal(6, got.IntervalDays)
	s.Assert().Equal(1, got.ReviewCount)
	s.Assert().Equal(1, got.SuccessCount)
	s.Assert().Equal(int64(2), got.Version)
	s.Assert().True(now.AddDate(0, 0, 6).Equal(got.NextReviewAt))
}

func (s *FlashcardRepositorySuite) TestResetAll() {
	ctx := context.Background()
	topicID := s.createTopic("u1", "Spanish")
	card := s.createCard("u1", topicID, now)
	card.CardSchedule = models.CardSchedule{IntervalDays: 30, EaseFactor: 1.8, NextReviewAt: now.AddDate(0, 1, 0), ReviewCount: 9, SuccessCount: 5, SuccessRate: 5.0 / 9.0, DifficultyLevel: 3}
	_, err := s.repo.UpdateSchedule(ctx, card)
	s.Require().NoError(err)
	s.createCard("u2", s.createTopic("u2", "Other"), now.AddDate(0, 0, 3))

	n, err := s.repo.ResetAll(ctx, "u1", flashcard.NewSchedule(now))
	s.Require().NoError(err)
	s.Assert().Equal(int64(1), n)

	got, err := s.repo.Get(ctx, "u1", card.ID)
	s.Require().NoError(err)
	s.Assert().Equal(1, got.IntervalDays)
	s.Assert().Equal(2.5, got.EaseFactor)
	s.Assert().Zero(got.ReviewCount)
	s.Assert().Zero(got.DifficultyLevel)
	s.Assert().Equal(int64(3), got.Version)
}

func (s *FlashcardRepositorySuite) TestDelete() {
	ctx := context.Background()
	topicID := s.createTopic("u1", "Spanish")
	card := s.createCard("u1", topicID, now)

	ok, err := s.repo.Delete(ctx, "u2", card.ID)
	s.Require().NoError(err)
	s.Assert().False(ok)

	ok, err = s.repo.Delete(ctx, "u1", card.ID)
	s.Require().NoError(err)
	s.Assert().True(ok)

	got, err := s.repo.Get(ctx, "u1", card.ID)
	s.Require().NoError(err)
	s.Assert().Nil(got)
}

func (s *FlashcardRepositorySuite) TestDeletingTopicCascades() {
	ctx := context.Background()
	topicID := s.createTopic("u1", "Spanish")
	card := s.createCard("u1", topicID, now)

	ok, err := s.topics.Delete(ctx, "u1", topicID)
	s.Require().NoError(err)
	s.Assert().True(ok)

	got, err := s.repo.Get(ctx, "u1", card.ID)
	s.Require().NoError(err)
	s.Assert().Nil(got)
}

func TestFlashcardRepositorySuite(t *testing.T) {
	suite.Run(t, new(FlashcardRepositorySuite))
}
