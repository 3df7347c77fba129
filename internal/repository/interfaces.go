package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vytor/flashdeck/internal/models"
)

// ErrConcurrentUpdate is returned when a versioned write finds the row changed
// (or already created) by someone else since it was read.
var ErrConcurrentUpdate = errors.New("concurrent update")

// ErrDuplicate is returned when a unique name is already taken.
var ErrDuplicate = errors.New("duplicate")

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Lookups return (nil, nil) when the row does not exist or belongs to another user.

// FlashcardRepository handles flashcard data access
type FlashcardRepository interface {
	Insert(ctx context.Context, card models.Flashcard) (int64, error)
	Get(ctx context.Context, userID string, id int64) (*models.Flashcard, error)
	List(ctx context.Context, filter models.FlashcardFilter) ([]models.Flashcard, error)
	ListWithTopics(ctx context.Context, filter models.FlashcardFilter) ([]models.FlashcardWithTopic, error)
	// UpdateSchedule writes card's schedule if its stored version still equals
	// card.Version and returns the new version.
	UpdateSchedule(ctx context.Context, card models.Flashcard) (int64, error)
	UpdateContent(ctx context.Context, card models.Flashcard) (int64, error)
	ResetAll(ctx context.Context, userID string, schedule models.CardSchedule) (int64, error)
	Delete(ctx context.Context, userID string, id int64) (bool, error)
	DeleteAll(ctx context.Context, userID string) error
}

// TopicRepository handles topic and subtopic data access
type TopicRepository interface {
	Insert(ctx context.Context, topic models.Topic) (int64, error)
	Get(ctx context.Context, userID string, id int64) (*models.Topic, error)
	List(ctx context.Context, userID string) ([]models.Topic, error)
	Update(ctx context.Context, topic models.Topic) (bool, error)
	Delete(ctx context.Context, userID string, id int64) (bool, error)
	DeleteAll(ctx context.Context, userID string) error
	InsertSubtopic(ctx context.Context, subtopic models.Subtopic) (int64, error)
	GetSubtopic(ctx context.Context, userID string, id int64) (*models.Subtopic, error)
	ListSubtopics(ctx context.Context, userID string, topicID int64) ([]models.SubtopicWithCount, error)
	CountSubtopics(ctx context.Context, userID string) (map[int64]int, error)
}

// RatingRepository handles the append-only rating log
type RatingRepository interface {
	Insert(ctx context.Context, event models.RatingEvent) (int64, error)
	List(ctx context.Context, filter models.RatingFilter) ([]models.RatingEvent, error)
	DeleteAll(ctx context.Context, userID string) error
}

// StatsRepository handles per-user aggregate statistics
type StatsRepository interface {
	Get(ctx context.Context, userID string) (*models.UserStats, error)
	// Upsert inserts when stats.Version is zero, otherwise updates the row
	// with that version. Either way it returns the new version.
	Upsert(ctx context.Context, stats models.UserStats, now time.Time) (int64, error)
	// Reset zeroes progress counters while keeping the personal best.
	Reset(ctx context.Context, userID string, now time.Time) error
	// ResetLapsedStreaks zeroes streaks whose last study date is before cutoff.
	ResetLapsedStreaks(ctx context.Context, cutoff, now time.Time) (int64, error)
	Delete(ctx context.Context, userID string) error
}

// SettingsRepository handles per-user preferences
type SettingsRepository interface {
	Get(ctx context.Context, userID string) (*models.UserSettings, error)
	// Insert creates the row and does nothing if it already exists.
	Insert(ctx context.Context, settings models.UserSettings, now time.Time) error
	// Update writes settings if the stored version still equals settings.Version
	// and returns the new version.
	Update(ctx context.Context, settings models.UserSettings, now time.Time) (int64, error)
	Delete(ctx context.Context, userID string) error
}

// Store groups the repositories over one connection or one transaction.
type Store interface {
	Flashcards() FlashcardRepository
	Topics() TopicRepository
	Ratings() RatingRepository
	Stats() StatsRepository
	Settings() SettingsRepository
	// WithinTx runs fn with a Store bound to a single transaction, committing
	// when fn returns nil. Nested calls reuse the outer transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
