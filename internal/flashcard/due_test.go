package flashcard_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/models"
)

func card(id, topicID int64, next time.Time) models.Flashcard {
	c := models.Flashcard{ID: id, TopicID: topicID, IsActive: true}
	c.CardSchedule = flashcard.NewSchedule(next)
	return c
}

func ids(cards []models.Flashcard) []int64 {
	out := make([]int64, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}

func TestSelectDue_Boundaries(t *testing.T) {
	cards := []models.Flashcard{
		card(1, 1, now.Add(-time.Hour)),
		card(2, 1, now),
		card(3, 1, now.Add(time.Hour)),
	}

	due := flashcard.SelectDue(cards, now, flashcard.DueFilter{})
	assert.Equal(t, []int64{1, 2}, ids(due))
}

func TestSelectDue_ExcludesInactive(t *testing.T) {
	inactive := card(2, 1, now.Add(-48*time.Hour))
	inactive.IsActive = false
	cards := []models.Flashcard{card(1, 1, now.Add(-time.Minute)), inactive}

	due := flashcard.SelectDue(cards, now, flashcard.DueFilter{})
	assert.Equal(t, []int64{1}, ids(due))
}

func TestSelectDue_TopicAndSubtopicFilter(t *testing.T) {
	sub := card(3, 1, now.Add(-time.Hour))
	sub.SubtopicID = ptr(int64(10))
	otherSub := card(4, 1, now.Add(-time.Hour))
	otherSub.SubtopicID = ptr(int64(11))

	cards := []models.Flashcard{
		card(1, 1, now.Add(-time.Hour)),
		card(2, 2, now.Add(-time.Hour)),
		sub,
		otherSub,
	}

	byTopic := flashcard.SelectDue(cards, now, flashcard.DueFilter{TopicID: ptr(int64(1))})
	assert.Equal(t, []int64{1, 3, 4}, ids(byTopic))

	bySubtopic := flashcard.SelectDue(cards, now, flashcard.DueFilter{TopicID: ptr(int64(1)), SubtopicID: ptr(int64(10))})
	assert.Equal(t, []int64{3}, ids(bySubtopic))
}

func TestSelectDue_StableAcrossCalls(t *testing.T) {
	cards := []models.Flashcard{
		card(5, 1, now),
		card(2, 1, now),
		card(9, 1, now),
		card(1, 1, now.Add(time.Second)),
	}

	first := flashcard.SelectDue(cards, now, flashcard.DueFilter{})
	second := flashcard.SelectDue(cards, now, flashcard.DueFilter{})
	assert.Equal(t, []int64{5, 2, 9}, ids(first))
	assert.Equal(t, first, second)
}

func TestSelectDue_Empty(t *testing.T) {
	assert.Empty(t, flashcard.SelectDue(nil, now, flashcard.DueFilter{}))
}

func TestSessionSize(t *testing.T) {
	assert.Equal(t, 20, flashcard.SessionSize(10, 30, 50))
	assert.Equal(t, 50, flashcard.SessionSize(60, 30, 50))
	assert.Equal(t, 20, flashcard.SessionSize(10, 0, 0), "defaults apply")
	assert.Equal(t, 0, flashcard.SessionSize(0, 30, 50))
	assert.Equal(t, 48, flashcard.SessionSize(24, 30, 50))
	assert.Equal(t, 50, flashcard.SessionSize(25, 30, 50))
	assert.Equal(t, 3, flashcard.SessionSize(1, 20, 50))
	assert.Equal(t, 50, flashcard.SessionSize(153722867280912931, 0, 50), "huge budgets saturate")
	assert.Equal(t, 50, flashcard.SessionSize(math.MaxInt, 30, 50))
}
