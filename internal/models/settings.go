package models

import "time"

// UserSettings holds per-user study and display preferences.
type UserSettings struct {
	UserID                string    `json:"user_id"`
	DisplayName           *string   `json:"display_name"`
	DailyGoal             int       `json:"daily_goal"`
	AutoAdvance           bool      `json:"auto_advance"`
	ShowAnswerImmediately bool      `json:"show_answer_immediately"`
	Algorithm             string    `json:"algorithm"`
	NotificationsEnabled  bool      `json:"notifications_enabled"`
	StudyReminders        bool      `json:"study_reminders"`
	DailyStreakReminder   bool      `json:"daily_streak_reminder"`
	PerformanceAlerts     bool      `json:"performance_alerts"`
	ReminderTime          string    `json:"reminder_time"`
	Theme                 string    `json:"theme"`
	CardAnimations        bool      `json:"card_animations"`
	Version               int64     `json:"-"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// UserSettingsUpdate is a partial update; nil fields are left unchanged.
type UserSettingsUpdate struct {
	DisplayName           *string `json:"display_name"`
	DailyGoal             *int    `json:"daily_goal"`
	AutoAdvance           *bool   `json:"auto_advance"`
	ShowAnswerImmediately *bool   `json:"show_answer_immediately"`
	Algorithm             *string `json:"algorithm"`
	NotificationsEnabled  *bool   `json:"notifications_enabled"`
	StudyReminders        *bool   `json:"study_reminders"`
	DailyStreakReminder   *bool   `json:"daily_streak_reminder"`
	PerformanceAlerts     *bool   `json:"performance_alerts"`
	ReminderTime          *string `json:"reminder_time"`
	Theme                 *string `json:"theme"`
	CardAnimations        *bool   `json:"card_animations"`
}
