package flashcard

import (
	"time"

	"github.com/vytor/flashdeck/internal/models"
)

// DueFilter scopes due selection to a topic and, optionally, one of its subtopics.
type DueFilter struct {
	TopicID    *int64
	SubtopicID *int64
}

// IsDue reports whether a card should be shown at now.
func IsDue(card models.Flashcard, now time.Time) bool {
	return card.IsActive && !card.NextReviewAt.After(now)
}

func (f DueFilter) matches(card models.Flashcard) bool {
	if f.TopicID != nil && card.TopicID != *f.TopicID {
		return false
	}
	if f.SubtopicID != nil && (card.SubtopicID == nil || *card.SubtopicID != *f.SubtopicID) {
		return false
	}
	return true
}

// SelectDue returns the due cards in their input order.
func SelectDue(cards []models.Flashcard, now time.Time, filter DueFilter) []models.Flashcard {
	due := make([]models.Flashcard, 0, len(cards))
	for _, c := range cards {
		if IsDue(c, now) && filter.matches(c) {
			due = append(due, c)
		}
	}
	return due
}

// SessionSize caps a study session by the time available.
// avgCardSeconds defaults to 30 and maxCards to 50 when non-positive.
func SessionSize(availableMinutes, avgCardSeconds, maxCards int) int {
	if avgCardSeconds <= 0 {
		avgCardSeconds = 30
	}
	if maxCards <= 0 {
		maxCards = 50
	}
	if availableMinutes <= 0 {
		return 0
	}
	// Compare against the minutes a full session needs before multiplying,
	// so huge inputs cannot overflow.
	if availableMinutes >= (maxCards*avgCardSeconds+59)/60 {
		return maxCards
	}
	return availableMinutes * 60 / avgCardSeconds
}
