package models

import "time"

// UserStats is the per-user aggregate folded from every rating event.
type UserStats struct {
	UserID                string     `json:"user_id"`
	CardsReviewed         int        `json:"cards_reviewed"`
	CorrectCount          int        `json:"correct_count"`
	StudyStreak           int        `json:"study_streak"`
	PersonalBestStreak    int        `json:"personal_best_streak"`
	LastStudyDate         *time.Time `json:"last_study_date"`
	TotalStudyTimeMinutes int        `json:"total_study_time_minutes"`
	AverageAccuracy       float64    `json:"average_accuracy"`
	// Version is the optimistic-concurrency token; zero means no row exists yet.
	Version int64 `json:"-"`
}

type HistogramBucket struct {
	Day   int `json:"day"`
	Count int `json:"count"`
}

type RatingBreakdown struct {
	Rating     Rating  `json:"rating"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type MasteryStat struct {
	TotalCards        int     `json:"total_cards"`
	MasteredCards     int     `json:"mastered_cards"`
	MasteryPercentage float64 `json:"mastery_percentage"`
	Mastered          bool    `json:"mastered"`
}

// ReviewTimeline counts cards by how far away their next review is.
type ReviewTimeline struct {
	SameDay     int `json:"same_day"`
	OneWeek     int `json:"one_week"`
	OneMonth    int `json:"one_month"`
	ThreeMonths int `json:"three_months"`
	SixMonths   int `json:"six_months"`
	OneYear     int `json:"one_year"`
}

type TopicStatistics struct {
	TotalReviews          int                 `json:"total_reviews"`
	AverageResponseTimeMs float64             `json:"average_response_time_ms"`
	StreakDays            int                 `json:"streak_days"`
	LastReviewDate        *time.Time          `json:"last_review_date"`
	ReviewHistogram       []HistogramBucket   `json:"review_histogram"`
	PerformanceBreakdown  []RatingBreakdown   `json:"performance_breakdown"`
	Subtopics             []SubtopicWithCount `json:"subtopics"`
}

type DashboardStats struct {
	UserStats
	CardsReviewedToday int `json:"cards_reviewed_today"`
	TopicsMastered     int `json:"topics_mastered"`
}

type Dashboard struct {
	Stats                   DashboardStats   `json:"stats"`
	DueToday                int              `json:"due_today"`
	TotalCards              int              `json:"total_cards"`
	CardsAddedThisWeek      int              `json:"cards_added_this_week"`
	AccuracyChangeThisMonth float64          `json:"accuracy_change_this_month"`
	Topics                  []TopicWithStats `json:"topics"`
	Timeline                ReviewTimeline   `json:"timeline"`
	PerformanceAlert        *TopicWithStats  `json:"performance_alert"`
	NewCardWarning          bool             `json:"new_card_warning"`
	DailyGoal               int              `json:"daily_goal"`
}

type UpcomingReview struct {
	CardID          int64     `json:"card_id"`
	TopicID         int64     `json:"topic_id"`
	TopicName       string    `json:"topic_name"`
	FrontText       string    `json:"front_text"`
	NextReviewAt    time.Time `json:"next_review_at"`
	TimeUntilDue    string    `json:"time_until_due"`
	DifficultyLevel int       `json:"difficulty_level"`
}

// RatingResult is returned after a rating has been applied and persisted.
type RatingResult struct {
	Event    RatingEvent  `json:"event"`
	Schedule CardSchedule `json:"schedule"`
	Stats    UserStats    `json:"stats"`
}
