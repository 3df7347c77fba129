package models

import "time"

type Topic struct {
	ID          int64  `json:"id"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

type Subtopic struct {
	ID        int64     `json:"id"`
	TopicID   int64     `json:"topic_id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type SubtopicWithCount struct {
	Subtopic
	CardCount int `json:"card_count"`
}

type TopicWithStats struct {
	Topic
	CardCount         int     `json:"card_count"`
	DueCount          int     `json:"due_count"`
	Accuracy          float64 `json:"accuracy"`
	MasteryPercentage float64 `json:"mastery_percentage"`
	Mastered          bool    `json:"mastered"`
	SubtopicCount     int     `json:"subtopic_count"`
}
