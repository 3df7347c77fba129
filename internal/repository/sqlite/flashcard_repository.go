package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

var flashcardColumns = []string{
	"id", "user_id", "topic_id", "subtopic_id", "front_text", "back_text", "front_image", "back_image",
	"is_active", "interval_days", "ease_factor", "next_review_at", "review_count", "success_count",
	"success_rate", "difficulty_level", "version", "created_at",
}

func prefixed(prefix string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = prefix + "." + c
	}
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlashcard(sc rowScanner, extra ...any) (models.Flashcard, error) {
	var c models.Flashcard
	var subtopicID sql.NullInt64
	dest := []any{
		&c.ID, &c.UserID, &c.TopicID, &subtopicID, &c.FrontText, &c.BackText, &c.FrontImage, &c.BackImage,
		&c.IsActive, &c.IntervalDays, &c.EaseFactor, &c.NextReviewAt, &c.ReviewCount, &c.SuccessCount,
		&c.SuccessRate, &c.DifficultyLevel, &c.Version, &c.CreatedAt,
	}
	if err := sc.Scan(append(dest, extra...)...); err != nil {
		return c, err
	}
	if subtopicID.Valid {
		id := subtopicID.Int64
		c.SubtopicID = &id
	}
	return c, nil
}

type flashcardRepository struct {
	db repository.DBTX
}

// NewFlashcardRepository creates a new FlashcardRepository implementation
func NewFlashcardRepository(db repository.DBTX) repository.FlashcardRepository {
	return &flashcardRepository{db: db}
}

func (r *flashcardRepository) Insert(ctx context.Context, c models.Flashcard) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("inserting flashcard: user_id=%s, topic_id=%d", c.UserID, c.TopicID)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO flashcards (user_id, topic_id, subtopic_id, front_text, back_text, front_image, back_image, is_active,
    interval_days, ease_factor, next_review_at, review_count, success_count, success_rate, difficulty_level, version, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
`, c.UserID, c.TopicID, nullInt64(c.SubtopicID), c.FrontText, c.BackText, c.FrontImage, c.BackImage, c.IsActive,
		c.IntervalDays, c.EaseFactor, utc(c.NextReviewAt), c.ReviewCount, c.SuccessCount, c.SuccessRate, c.DifficultyLevel, utc(c.CreatedAt))
	if err != nil {
		log.Error("failed to insert flashcard: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get flashcard id: %v", err)
		return 0, err
	}
	log.Debug("flashcard inserted: id=%d", id)
	return id, nil
}

func (r *flashcardRepository) Get(ctx context.Context, userID string, id int64) (*models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("getting flashcard: id=%d", id)

	query := `SELECT ` + strings.Join(flashcardColumns, ", ") + ` FROM flashcards WHERE id = ? AND user_id = ?`
	c, err := scanFlashcard(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("flashcard not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get flashcard: %v", err)
		return nil, err
	}
	return &c, nil
}

func applyFlashcardFilter(q squirrel.SelectBuilder, table string, f models.FlashcardFilter) squirrel.SelectBuilder {
	col := func(name string) string {
		if table == "" {
			return name
		}
		return table + "." + name
	}
	if f.UserID != "" {
		q = q.Where(squirrel.Eq{col("user_id"): f.UserID})
	}
	if f.TopicID != 0 {
		q = q.Where(squirrel.Eq{col("topic_id"): f.TopicID})
	}
	if f.SubtopicID != 0 {
		q = q.Where(squirrel.Eq{col("subtopic_id"): f.SubtopicID})
	}
	if f.ActiveOnly {
		q = q.Where(squirrel.Eq{col("is_active"): true})
	}
	if f.DueBefore != nil {
		q = q.Where(squirrel.LtOrEq{col("next_review_at"): utc(*f.DueBefore)})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	return q.OrderBy(col("next_review_at")+" ASC", col("id")+" ASC")
}

func (r *flashcardRepository) List(ctx context.Context, filter models.FlashcardFilter) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("listing flashcards: user_id=%s, topic_id=%d, subtopic_id=%d, active_only=%t",
		filter.UserID, filter.TopicID, filter.SubtopicID, filter.ActiveOnly)

	query, args, err := applyFlashcardFilter(sqlBuilder.Select(flashcardColumns...).From("flashcards"), "", filter).ToSql()
	if err != nil {
		log.Error("failed to build flashcard query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query flashcards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var cards []models.Flashcard
	for rows.Next() {
		c, err := scanFlashcard(rows)
		if err != nil {
			log.Error("failed to scan flashcard row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	log.Debug("found %d flashcards", len(cards))
	return cards, rows.Err()
}

func (r *flashcardRepository) ListWithTopics(ctx context.Context, filter models.FlashcardFilter) ([]models.FlashcardWithTopic, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("listing flashcards with topics: user_id=%s", filter.UserID)

	cols := append(prefixed("f", flashcardColumns), "t.name", "t.color")
	base := sqlBuilder.Select(cols...).From("flashcards f").Join("topics t ON t.id = f.topic_id")
	query, args, err := applyFlashcardFilter(base, "f", filter).ToSql()
	if err != nil {
		log.Error("failed to build flashcard query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query flashcards with topics: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.FlashcardWithTopic
	for rows.Next() {
		var ft models.FlashcardWithTopic
		c, err := scanFlashcard(rows, &ft.TopicName, &ft.TopicColor)
		if err != nil {
			log.Error("failed to scan flashcard row: %v", err)
			return nil, err
		}
		ft.Flashcard = c
		out = append(out, ft)
	}
	return out, rows.Err()
}

func (r *flashcardRepository) UpdateSchedule(ctx context.Context, c models.Flashcard) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("updating schedule: id=%d, version=%d, interval=%d, ease=%.2f", c.ID, c.Version, c.IntervalDays, c.EaseFactor)

	res, err := r.db.ExecContext(ctx, `
UPDATE flashcards
SET interval_days = ?, ease_factor = ?, next_review_at = ?, review_count = ?, success_count = ?,
    success_rate = ?, difficulty_level = ?, version = version + 1
WHERE id = ? AND user_id = ? AND version = ?
`, c.IntervalDays, c.EaseFactor, utc(c.NextReviewAt), c.ReviewCount, c.SuccessCount,
		c.SuccessRate, c.DifficultyLevel, c.ID, c.UserID, c.Version)
	if err != nil {
		log.Error("failed to update flashcard schedule: %v", err)
		return 0, err
	}
	return versionBump(res, c.Version)
}

func (r *flashcardRepository) UpdateContent(ctx context.Context, c models.Flashcard) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("updating content: id=%d, version=%d", c.ID, c.Version)

	res, err := r.db.ExecContext(ctx, `
UPDATE flashcards
SET subtopic_id = ?, front_text = ?, back_text = ?, front_image = ?, back_image = ?, is_active = ?, version = version + 1
WHERE id = ? AND user_id = ? AND version = ?
`, nullInt64(c.SubtopicID), c.FrontText, c.BackText, c.FrontImage, c.BackImage, c.IsActive, c.ID, c.UserID, c.Version)
	if err != nil {
		log.Error("failed to update flashcard content: %v", err)
		return 0, err
	}
	return versionBump(res, c.Version)
}

func versionBump(res sql.Result, version int64) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, repository.ErrConcurrentUpdate
	}
	return version + 1, nil
}

func (r *flashcardRepository) ResetAll(ctx context.Context, userID string, s models.CardSchedule) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Info("resetting all flashcards: user_id=%s", userID)

	res, err := r.db.ExecContext(ctx, `
UPDATE flashcards
SET interval_days = ?, ease_factor = ?, next_review_at = ?, review_count = ?, success_count = ?,
    success_rate = ?, difficulty_level = ?, version = version + 1
WHERE user_id = ?
`, s.IntervalDays, s.EaseFactor, utc(s.NextReviewAt), s.ReviewCount, s.SuccessCount, s.SuccessRate, s.DifficultyLevel, userID)
	if err != nil {
		log.Error("failed to reset flashcards: %v", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (r *flashcardRepository) Delete(ctx context.Context, userID string, id int64) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("deleting flashcard: id=%d", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM flashcards WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		log.Error("failed to delete flashcard: %v", err)
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *flashcardRepository) DeleteAll(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM flashcards WHERE user_id = ?`, userID)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("flashcard_repo").Error("failed to delete flashcards: %v", err)
	}
	return err
}
