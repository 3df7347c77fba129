package flashcard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/models"
)

func withRate(c models.Flashcard, rate float64) models.Flashcard {
	c.SuccessRate = rate
	return c
}

func TestReviewHistogram(t *testing.T) {
	cards := []models.Flashcard{
		card(1, 1, now.AddDate(0, 0, -3)),       // overdue -> today
		card(2, 1, now),                         // today
		card(3, 1, now.Add(2*time.Hour)),        // ceil -> 1
		card(4, 1, now.Add(24*time.Hour)),       // exactly one day
		card(5, 1, now.AddDate(0, 0, 6)),        // 6
		card(6, 1, now.AddDate(0, 0, 30)),       // last bucket
		card(7, 1, now.AddDate(0, 0, 31)),       // beyond the window
		card(8, 1, now.Add(29*24*time.Hour+1)), // ceil -> 30
	}

	got := flashcard.ReviewHistogram(cards, now)
	assert.Equal(t, []models.HistogramBucket{
		{Day: 0, Count: 2},
		{Day: 1, Count: 2},
		{Day: 6, Count: 1},
		{Day: 30, Count: 2},
	}, got)
}

func TestReviewHistogram_Empty(t *testing.T) {
	assert.Empty(t, flashcard.ReviewHistogram(nil, now))
}

func TestPerformanceBreakdown(t *testing.T) {
	events := []models.RatingEvent{
		{Rating: models.RatingAgain},
		{Rating: models.RatingGood},
		{Rating: models.RatingGood},
		{Rating: models.RatingEasy},
	}

	got := flashcard.PerformanceBreakdown(events)
	assert.Len(t, got, 4)
	assert.Equal(t, models.RatingBreakdown{Rating: 1, Label: "Again", Count: 1, Percentage: 25}, got[0])
	assert.Equal(t, models.RatingBreakdown{Rating: 2, Label: "Hard", Count: 0, Percentage: 0}, got[1])
	assert.Equal(t, models.RatingBreakdown{Rating: 3, Label: "Good", Count: 2, Percentage: 50}, got[2])
	assert.Equal(t, models.RatingBreakdown{Rating: 4, Label: "Easy", Count: 1, Percentage: 25}, got[3])
}

func TestPerformanceBreakdown_NoHistory(t *testing.T) {
	got := flashcard.PerformanceBreakdown(nil)
	assert.Len(t, got, 4)
	for _, b := range got {
		assert.Zero(t, b.Count)
		assert.Zero(t, b.Percentage)
	}
}

func TestTopicMastery(t *testing.T) {
	cards := []models.Flashcard{
		withRate(card(1, 1, now), 0.9),
		withRate(card(2, 1, now), 0.8),
		withRate(card(3, 1, now), 1.0),
		withRate(card(4, 1, now), 0.85),
		withRate(card(5, 1, now), 0.5),
	}

	got := flashcard.TopicMastery(cards)
	assert.Equal(t, 4, got.MasteredCards)
	assert.InDelta(t, 80.0, got.MasteryPercentage, 1e-9)
	assert.True(t, got.Mastered)

	got = flashcard.TopicMastery(cards[3:])
	assert.InDelta(t, 50.0, got.MasteryPercentage, 1e-9)
	assert.False(t, got.Mastered)

	empty := flashcard.TopicMastery(nil)
	assert.False(t, empty.Mastered)
	assert.Zero(t, empty.MasteryPercentage)
}

func TestTopicAccuracyAndAlert(t *testing.T) {
	cards := []models.Flashcard{
		withRate(card(1, 1, now), 1.0),
		withRate(card(2, 1, now), 0.4),
	}
	acc := flashcard.TopicAccuracy(cards)
	assert.InDelta(t, 0.7, acc, 1e-9)
	assert.True(t, flashcard.PerformanceAlert(acc))
	assert.False(t, flashcard.PerformanceAlert(0.75))
	assert.Zero(t, flashcard.TopicAccuracy(nil))
}

func TestAccuracyOf(t *testing.T) {
	_, ok := flashcard.AccuracyOf(nil)
	assert.False(t, ok)

	acc, ok := flashcard.AccuracyOf([]models.RatingEvent{{Rating: 4}, {Rating: 2}, {Rating: 3}, {Rating: 1}})
	assert.True(t, ok)
	assert.InDelta(t, 0.5, acc, 1e-9)
}

func TestShouldWarnAboutNewCards(t *testing.T) {
	assert.True(t, flashcard.ShouldWarnAboutNewCards(0.6, 10))
	assert.True(t, flashcard.ShouldWarnAboutNewCards(0.9, 101))
	assert.False(t, flashcard.ShouldWarnAboutNewCards(0.9, 100))
}

func TestIntervalCategoryAndTimeline(t *testing.T) {
	assert.Equal(t, flashcard.CategorySameDay, flashcard.IntervalCategory(0))
	assert.Equal(t, flashcard.CategoryOneWeek, flashcard.IntervalCategory(7))
	assert.Equal(t, flashcard.CategoryOneMonth, flashcard.IntervalCategory(8))
	assert.Equal(t, flashcard.CategoryThreeMonths, flashcard.IntervalCategory(90))
	assert.Equal(t, flashcard.CategorySixMonths, flashcard.IntervalCategory(180))
	assert.Equal(t, flashcard.CategoryOneYear, flashcard.IntervalCategory(181))

	cards := []models.Flashcard{
		card(1, 1, now.Add(-time.Hour)),
		card(2, 1, now.AddDate(0, 0, 3)),
		card(3, 1, now.AddDate(0, 0, 20)),
		card(4, 1, now.AddDate(0, 0, 400)),
	}
	assert.Equal(t, models.ReviewTimeline{SameDay: 1, OneWeek: 1, OneMonth: 1, OneYear: 1}, flashcard.ReviewTimeline(cards, now))
}

func TestDescribeTimeUntil(t *testing.T) {
	assert.Equal(t, "in a few minutes", flashcard.DescribeTimeUntil(now.Add(20*time.Minute), now))
	assert.Equal(t, "in 1 hour", flashcard.DescribeTimeUntil(now.Add(90*time.Minute), now))
	assert.Equal(t, "in 5 hours", flashcard.DescribeTimeUntil(now.Add(5*time.Hour), now))
	assert.Equal(t, "tomorrow", flashcard.DescribeTimeUntil(now.Add(30*time.Hour), now))
	assert.Equal(t, "in 3 days", flashcard.DescribeTimeUntil(now.AddDate(0, 0, 3), now))
	assert.Equal(t, "Mar 20, 2024", flashcard.DescribeTimeUntil(now.AddDate(0, 0, 10), now))
}
