package flashcard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/models"
)

func event(r models.Rating, ms int64, at time.Time) models.RatingEvent {
	return models.RatingEvent{UserID: "u1", CardID: 1, Rating: r, ResponseTimeMs: ms, OccurredAt: at}
}

func TestRecordRating_FirstEver(t *testing.T) {
	sched, stats, err := flashcard.RecordRating(
		event(models.RatingGood, 90_000, now),
		flashcard.NewSchedule(now),
		models.UserStats{UserID: "u1"},
	)
	require.NoError(t, err)

	assert.Equal(t, 6, sched.IntervalDays)
	assert.Equal(t, 1, stats.CardsReviewed)
	assert.Equal(t, 1, stats.CorrectCount)
	assert.Equal(t, 1.0, stats.AverageAccuracy)
	assert.Equal(t, 1, stats.StudyStreak)
	assert.Equal(t, 1, stats.PersonalBestStreak)
	assert.Equal(t, 2, stats.TotalStudyTimeMinutes, "90s rounds to 2 minutes")
	require.NotNil(t, stats.LastStudyDate)
	assert.Equal(t, now, *stats.LastStudyDate)
	assert.Equal(t, "u1", stats.UserID)
}

func TestRecordRating_AccumulatesAcrossCards(t *testing.T) {
	stats := models.UserStats{UserID: "u1"}
	ratings := []models.Rating{models.RatingGood, models.RatingAgain, models.RatingEasy, models.RatingHard}

	for i, r := range ratings {
		var err error
		_, stats, err = flashcard.RecordRating(event(r, 20_000, now.Add(time.Duration(i)*time.Minute)), flashcard.NewSchedule(now), stats)
		require.NoError(t, err)
	}

	assert.Equal(t, 4, stats.CardsReviewed)
	assert.Equal(t, 2, stats.CorrectCount)
	assert.InDelta(t, 0.5, stats.AverageAccuracy, 1e-9)
	assert.Equal(t, 1, stats.StudyStreak, "many cards on one day is one streak day")
	assert.Equal(t, 0, stats.TotalStudyTimeMinutes, "20s responses round down each time")
}

func TestRecordRating_ContinuesStreak(t *testing.T) {
	yesterday := now.AddDate(0, 0, -1)
	prior := models.UserStats{
		UserID:             "u1",
		CardsReviewed:      10,
		CorrectCount:       7,
		StudyStreak:        5,
		PersonalBestStreak: 5,
		LastStudyDate:      &yesterday,
		AverageAccuracy:    0.7,
	}

	_, stats, err := flashcard.RecordRating(event(models.RatingGood, 0, now), flashcard.NewSchedule(now), prior)
	require.NoError(t, err)

	assert.Equal(t, 6, stats.StudyStreak)
	assert.Equal(t, 6, stats.PersonalBestStreak)
	assert.Equal(t, 11, stats.CardsReviewed)
	assert.InDelta(t, 8.0/11.0, stats.AverageAccuracy, 1e-9)
	assert.Equal(t, yesterday, *prior.LastStudyDate, "input stats are untouched")
}

func TestRecordRating_AccuracyFromStoredRate(t *testing.T) {
	prior := models.UserStats{CardsReviewed: 4, AverageAccuracy: 0.5}

	_, stats, err := flashcard.RecordRating(event(models.RatingEasy, 0, now), flashcard.NewSchedule(now), prior)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.CorrectCount)
	assert.InDelta(t, 0.6, stats.AverageAccuracy, 1e-9)
}

func TestRecordRating_InvalidRatingHasNoEffect(t *testing.T) {
	prior := models.UserStats{UserID: "u1", CardsReviewed: 3}

	sched, stats, err := flashcard.RecordRating(event(7, 1000, now), flashcard.NewSchedule(now), prior)
	assert.ErrorIs(t, err, flashcard.ErrInvalidRating)
	assert.Equal(t, models.CardSchedule{}, sched)
	assert.Equal(t, models.UserStats{}, stats)
	assert.Equal(t, 3, prior.CardsReviewed)
}
