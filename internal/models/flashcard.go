package models

import "time"

// CardSchedule is the spaced-repetition state attached to one flashcard.
type CardSchedule struct {
	IntervalDays    int       `json:"interval_days"`
	EaseFactor      float64   `json:"ease_factor"`
	NextReviewAt    time.Time `json:"next_review_at"`
	ReviewCount     int       `json:"review_count"`
	SuccessCount    int       `json:"success_count"`
	SuccessRate     float64   `json:"success_rate"`
	DifficultyLevel int       `json:"difficulty_level"`
}

type Flashcard struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	TopicID    int64     `json:"topic_id"`
	SubtopicID *int64    `json:"subtopic_id,omitempty"`
	FrontText  string    `json:"front_text"`
	BackText   string    `json:"back_text"`
	FrontImage string    `json:"front_image,omitempty"`
	BackImage  string    `json:"back_image,omitempty"`
	IsActive   bool      `json:"is_active"`
	Version    int64     `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	CardSchedule
}

type FlashcardWithTopic struct {
	Flashcard
	TopicName  string `json:"topic_name"`
	TopicColor string `json:"topic_color"`
}

// FlashcardFilter narrows repository listings. Zero values mean "any".
type FlashcardFilter struct {
	UserID     string
	TopicID    int64
	SubtopicID int64
	ActiveOnly bool
	DueBefore  *time.Time
	Limit      int
}

// FlashcardUpdate carries user-editable card content.
type FlashcardUpdate struct {
	FrontText  *string `json:"front_text"`
	BackText   *string `json:"back_text"`
	FrontImage *string `json:"front_image"`
	BackImage  *string `json:"back_image"`
	SubtopicID *int64  `json:"subtopic_id"`
	IsActive   *bool   `json:"is_active"`
}
