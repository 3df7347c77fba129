package models

import "time"

// Rating is the 4-point recall self-assessment.
type Rating int

const (
	RatingAgain Rating = 1
	RatingHard  Rating = 2
	RatingGood  Rating = 3
	RatingEasy  Rating = 4
)

// Ratings lists every valid rating in ascending order.
var Ratings = []Rating{RatingAgain, RatingHard, RatingGood, RatingEasy}

func (r Rating) Valid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// Successful reports whether the rating counts towards accuracy.
func (r Rating) Successful() bool {
	return r >= RatingGood
}

func (r Rating) Label() string {
	switch r {
	case RatingAgain:
		return "Again"
	case RatingHard:
		return "Hard"
	case RatingGood:
		return "Good"
	case RatingEasy:
		return "Easy"
	default:
		return "Unknown"
	}
}

// RatingEvent is one append-only review record.
type RatingEvent struct {
	ID             int64     `json:"id"`
	UserID         string    `json:"user_id"`
	CardID         int64     `json:"card_id"`
	Rating         Rating    `json:"rating"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type RatingFilter struct {
	UserID  string
	CardID  int64
	TopicID int64
	Since   *time.Time
}
