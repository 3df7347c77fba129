package flashcard

import (
	"math"

	"github.com/vytor/flashdeck/internal/models"
)

// RecordRating folds one rating event into a card schedule and the user's
// aggregate stats. Inputs are not modified; on error nothing is returned.
func RecordRating(event models.RatingEvent, schedule models.CardSchedule, stats models.UserStats) (models.CardSchedule, models.UserStats, error) {
	next, err := Next(schedule, event.Rating, event.OccurredAt)
	if err != nil {
		return models.CardSchedule{}, models.UserStats{}, err
	}

	streak := UpdateStreak(stats.LastStudyDate, event.OccurredAt, stats.StudyStreak, stats.PersonalBestStreak)
	lastStudy := streak.LastStudyDate

	updated := stats
	updated.StudyStreak = streak.Streak
	updated.PersonalBestStreak = streak.PersonalBest
	updated.LastStudyDate = &lastStudy
	updated.CardsReviewed = stats.CardsReviewed + 1
	updated.TotalStudyTimeMinutes = stats.TotalStudyTimeMinutes + responseMinutes(event.ResponseTimeMs)

	correct := priorCorrect(stats)
	if event.Rating.Successful() {
		correct++
	}
	updated.CorrectCount = correct
	updated.AverageAccuracy = float64(correct) / float64(updated.CardsReviewed)

	return next, updated, nil
}

func responseMinutes(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int(math.Round(float64(ms) / 60000))
}

func priorCorrect(s models.UserStats) int {
	if s.CardsReviewed <= 0 {
		return 0
	}
	if s.CorrectCount > 0 || s.AverageAccuracy == 0 {
		return clampInt(s.CorrectCount, 0, s.CardsReviewed)
	}
	return clampInt(int(math.Round(s.AverageAccuracy*float64(s.CardsReviewed))), 0, s.CardsReviewed)
}
