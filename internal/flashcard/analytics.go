package flashcard

import (
	"fmt"
	"math"
	"time"

	"github.com/vytor/flashdeck/internal/models"
)

const (
	HistogramDays = 30

	MasteredCardRate        = 0.8
	MasteredTopicPercentage = 80.0

	PerformanceAlertThreshold = 0.75
	MaxComfortableDueCards    = 100
)

// DaysUntil is ceil((t - now) / 1 day); overdue cards give zero or less.
func DaysUntil(t, now time.Time) int {
	return int(math.Ceil(float64(t.Sub(now)) / float64(day)))
}

// ReviewHistogram counts cards due on each of the next 30 days. Overdue cards
// land on day 0 and empty days are omitted.
func ReviewHistogram(cards []models.Flashcard, now time.Time) []models.HistogramBucket {
	var counts [HistogramDays + 1]int
	for _, c := range cards {
		d := DaysUntil(c.NextReviewAt, now)
		if d < 0 {
			d = 0
		}
		if d > HistogramDays {
			continue
		}
		counts[d]++
	}

	buckets := make([]models.HistogramBucket, 0, len(counts))
	for d, n := range counts {
		if n > 0 {
			buckets = append(buckets, models.HistogramBucket{Day: d, Count: n})
		}
	}
	return buckets
}

// PerformanceBreakdown always returns all four rating buckets.
func PerformanceBreakdown(events []models.RatingEvent) []models.RatingBreakdown {
	counts := make(map[models.Rating]int, len(models.Ratings))
	total := 0
	for _, e := range events {
		if !e.Rating.Valid() {
			continue
		}
		counts[e.Rating]++
		total++
	}

	out := make([]models.RatingBreakdown, 0, len(models.Ratings))
	for _, r := range models.Ratings {
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(counts[r]) / float64(total)
		}
		out = append(out, models.RatingBreakdown{
			Rating:     r,
			Label:      r.Label(),
			Count:      counts[r],
			Percentage: pct,
		})
	}
	return out
}

func TopicMastery(cards []models.Flashcard) models.MasteryStat {
	stat := models.MasteryStat{TotalCards: len(cards)}
	for _, c := range cards {
		if c.SuccessRate >= MasteredCardRate {
			stat.MasteredCards++
		}
	}
	if stat.TotalCards > 0 {
		stat.MasteryPercentage = 100 * float64(stat.MasteredCards) / float64(stat.TotalCards)
		stat.Mastered = stat.MasteryPercentage >= MasteredTopicPercentage
	}
	return stat
}

// TopicAccuracy is the mean per-card success rate.
func TopicAccuracy(cards []models.Flashcard) float64 {
	if len(cards) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range cards {
		sum += c.SuccessRate
	}
	return sum / float64(len(cards))
}

func PerformanceAlert(accuracy float64) bool {
	return accuracy < PerformanceAlertThreshold
}

// AccuracyOf is the fraction of successful events; ok is false for no events.
func AccuracyOf(events []models.RatingEvent) (accuracy float64, ok bool) {
	if len(events) == 0 {
		return 0, false
	}
	good := 0
	for _, e := range events {
		if e.Rating.Successful() {
			good++
		}
	}
	return float64(good) / float64(len(events)), true
}

// ShouldWarnAboutNewCards flags users who are struggling or already behind.
func ShouldWarnAboutNewCards(averageAccuracy float64, dueCount int) bool {
	return averageAccuracy < PerformanceAlertThreshold || dueCount > MaxComfortableDueCards
}

const (
	CategorySameDay     = "sameDay"
	CategoryOneWeek     = "oneWeek"
	CategoryOneMonth    = "oneMonth"
	CategoryThreeMonths = "threeMonths"
	CategorySixMonths   = "sixMonths"
	CategoryOneYear     = "oneYear"
)

func IntervalCategory(days int) string {
	switch {
	case days <= 0:
		return CategorySameDay
	case days <= 7:
		return CategoryOneWeek
	case days <= 30:
		return CategoryOneMonth
	case days <= 90:
		return CategoryThreeMonths
	case days <= 180:
		return CategorySixMonths
	default:
		return CategoryOneYear
	}
}

func ReviewTimeline(cards []models.Flashcard, now time.Time) models.ReviewTimeline {
	var tl models.ReviewTimeline
	for _, c := range cards {
		switch IntervalCategory(DaysUntil(c.NextReviewAt, now)) {
		case CategorySameDay:
			tl.SameDay++
		case CategoryOneWeek:
			tl.OneWeek++
		case CategoryOneMonth:
			tl.OneMonth++
		case CategoryThreeMonths:
			tl.ThreeMonths++
		case CategorySixMonths:
			tl.SixMonths++
		default:
			tl.OneYear++
		}
	}
	return tl
}

// DescribeTimeUntil renders a short human label for an upcoming review.
func DescribeTimeUntil(due, now time.Time) string {
	hours := int(due.Sub(now) / time.Hour)
	days := hours / 24
	switch {
	case hours < 1:
		return "in a few minutes"
	case hours < 24:
		if hours == 1 {
			return "in 1 hour"
		}
		return fmt.Sprintf("in %d hours", hours)
	case days == 1:
		return "tomorrow"
	case days < 7:
		return fmt.Sprintf("in %d days", days)
	default:
		return due.In(now.Location()).Format("Jan 2, 2006")
	}
}
