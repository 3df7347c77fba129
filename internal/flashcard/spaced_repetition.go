package flashcard

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vytor/flashdeck/internal/models"
)

const (
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 2.5
	InitialEaseFactor = 2.5
	InitialInterval   = 1
	// MaxInterval bounds how far ahead a card can be scheduled.
	MaxInterval = 36500

	MaxDifficultyLevel = 4

	easyEaseBonus    = 0.15
	hardEasePenalty  = 0.15
	againEasePenalty = 0.2

	hardIntervalGrowth = 1.2
	easyIntervalBonus  = 1.3

	// First successful reviews jump straight to these intervals instead of
	// multiplying a 1-day interval by the ease factor.
	goodGraduatingInterval = 6
	easyGraduatingInterval = 4

	day = 24 * time.Hour
)

var ErrInvalidRating = errors.New("invalid rating")

// NewSchedule returns the schedule of a freshly created card: due immediately.
func NewSchedule(now time.Time) models.CardSchedule {
	return models.CardSchedule{
		IntervalDays:    InitialInterval,
		EaseFactor:      InitialEaseFactor,
		NextReviewAt:    now,
		ReviewCount:     0,
		SuccessCount:    0,
		SuccessRate:     0,
		DifficultyLevel: 0,
	}
}

// ValidateRating rejects anything outside the 4-point scale.
func ValidateRating(r models.Rating) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %d (must be 1-4)", ErrInvalidRating, int(r))
	}
	return nil
}

// Next applies one rating to a schedule using an SM-2 variant.
// rating: 1=Again, 2=Hard, 3=Good, 4=Easy
func Next(current models.CardSchedule, rating models.Rating, now time.Time) (models.CardSchedule, error) {
	if err := ValidateRating(rating); err != nil {
		return models.CardSchedule{}, err
	}

	ef := nextEaseFactor(current.EaseFactor, rating)
	interval := nextInterval(current.IntervalDays, ef, rating)

	reviews := current.ReviewCount + 1
	successes := priorSuccesses(current)
	if rating.Successful() {
		successes++
	}

	difficulty := current.DifficultyLevel
	if rating.Successful() {
		difficulty--
	} else {
		difficulty++
	}

	return models.CardSchedule{
		IntervalDays:    interval,
		EaseFactor:      ef,
		NextReviewAt:    now.AddDate(0, 0, interval),
		ReviewCount:     reviews,
		SuccessCount:    successes,
		SuccessRate:     float64(successes) / float64(reviews),
		DifficultyLevel: clampInt(difficulty, 0, MaxDifficultyLevel),
	}, nil
}

func nextEaseFactor(ef float64, rating models.Rating) float64 {
	switch rating {
	case models.RatingAgain:
		ef -= againEasePenalty
	case models.RatingHard:
		ef -= hardEasePenalty
	case models.RatingEasy:
		ef += easyEaseBonus
	}
	return clampFloat(ef, MinEaseFactor, MaxEaseFactor)
}

func nextInterval(interval int, ef float64, rating models.Rating) int {
	var next int
	switch rating {
	case models.RatingAgain:
		next = 1
	case models.RatingHard:
		next = roundDays(float64(interval) * hardIntervalGrowth)
	case models.RatingGood:
		if interval <= 1 {
			next = goodGraduatingInterval
		} else {
			next = roundDays(float64(interval) * ef)
		}
	case models.RatingEasy:
		if interval <= 1 {
			next = easyGraduatingInterval
		} else {
			next = roundDays(float64(interval) * ef * easyIntervalBonus)
		}
	}
	return clampInt(next, 1, MaxInterval)
}

// priorSuccesses prefers the raw counter and falls back to reconstructing it
// from the stored rate for schedules that only carry a rate.
func priorSuccesses(s models.CardSchedule) int {
	if s.ReviewCount <= 0 {
		return 0
	}
	if s.SuccessCount > 0 || s.SuccessRate == 0 {
		return clampInt(s.SuccessCount, 0, s.ReviewCount)
	}
	return clampInt(int(math.Round(s.SuccessRate*float64(s.ReviewCount))), 0, s.ReviewCount)
}

// roundDays saturates at MaxInterval before converting so huge products
// cannot overflow int.
func roundDays(v float64) int {
	if v >= MaxInterval {
		return MaxInterval
	}
	return int(math.Round(v))
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
