package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

type topicRepository struct {
	db repository.DBTX
}

// NewTopicRepository creates a new TopicRepository implementation
func NewTopicRepository(db repository.DBTX) repository.TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) Insert(ctx context.Context, t models.Topic) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")
	log.Debug("inserting topic: user_id=%s, name=%s", t.UserID, t.Name)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO topics (user_id, name, description, color, icon, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`, t.UserID, t.Name, t.Description, t.Color, t.Icon, time.Now().UTC())
	if err != nil {
		log.Error("failed to insert topic: %v", err)
		return 0, translateConstraint(err)
	}
	return res.LastInsertId()
}

func (r *topicRepository) Get(ctx context.Context, userID string, id int64) (*models.Topic, error) {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")

	var t models.Topic
	err := r.db.QueryRowContext(ctx, `
SELECT id, user_id, name, description, color, icon FROM topics WHERE id = ? AND user_id = ?
`, id, userID).Scan(&t.ID, &t.UserID, &t.Name, &t.Description, &t.Color, &t.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("topic not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get topic: %v", err)
		return nil, err
	}
	return &t, nil
}

func (r *topicRepository) List(ctx context.Context, userID string) ([]models.Topic, error) {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, name, description, color, icon FROM topics WHERE user_id = ? ORDER BY name, id
`, userID)
	if err != nil {
		log.Error("failed to list topics: %v", err)
		return nil, err
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		var t models.Topic
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Description, &t.Color, &t.Icon); err != nil {
			log.Error("failed to scan topic row: %v", err)
			return nil, err
		}
		topics = append(topics, t)
	}
	log.Debug("found %d topics", len(topics))
	return topics, rows.Err()
}

func (r *topicRepository) Update(ctx context.Context, t models.Topic) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")
	log.Debug("updating topic: id=%d", t.ID)

	res, err := r.db.ExecContext(ctx, `
UPDATE topics SET name = ?, description = ?, color = ?, icon = ? WHERE id = ? AND user_id = ?
`, t.Name, t.Description, t.Color, t.Icon, t.ID, t.UserID)
	if err != nil {
		log.Error("failed to update topic: %v", err)
		return false, translateConstraint(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *topicRepository) Delete(ctx context.Context, userID string, id int64) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")
	log.Info("deleting topic: id=%d", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM topics WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		log.Error("failed to delete topic: %v", err)
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *topicRepository) DeleteAll(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM topics WHERE user_id = ?`, userID)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("topic_repo").Error("failed to delete topics: %v", err)
	}
	return err
}

func (r *topicRepository) InsertSubtopic(ctx context.Context, s models.Subtopic) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")
	log.Debug("inserting subtopic: topic_id=%d, name=%s", s.TopicID, s.Name)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO subtopics (topic_id, user_id, name, created_at) VALUES (?, ?, ?, ?)
`, s.TopicID, s.UserID, s.Name, utc(s.CreatedAt))
	if err != nil {
		log.Error("failed to insert subtopic: %v", err)
		return 0, translateConstraint(err)
	}
	return res.LastInsertId()
}

func (r *topicRepository) GetSubtopic(ctx context.Context, userID string, id int64) (*models.Subtopic, error) {
	var s models.Subtopic
	err := r.db.QueryRowContext(ctx, `
SELECT id, topic_id, user_id, name, created_at FROM subtopics WHERE id = ? AND user_id = ?
`, id, userID).Scan(&s.ID, &s.TopicID, &s.UserID, &s.Name, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("topic_repo").Error("failed to get subtopic: %v", err)
		return nil, err
	}
	return &s, nil
}

func (r *topicRepository) ListSubtopics(ctx context.Context, userID string, topicID int64) ([]models.SubtopicWithCount, error) {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT s.id, s.topic_id, s.user_id, s.name, s.created_at, COUNT(f.id)
FROM subtopics s
LEFT JOIN flashcards f ON f.subtopic_id = s.id
WHERE s.topic_id = ? AND s.user_id = ?
GROUP BY s.id
ORDER BY s.name, s.id
`, topicID, userID)
	if err != nil {
		log.Error("failed to list subtopics: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.SubtopicWithCount
	for rows.Next() {
		var s models.SubtopicWithCount
		if err := rows.Scan(&s.ID, &s.TopicID, &s.UserID, &s.Name, &s.CreatedAt, &s.CardCount); err != nil {
			log.Error("failed to scan subtopic row: %v", err)
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *topicRepository) CountSubtopics(ctx context.Context, userID string) (map[int64]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT topic_id, COUNT(*) FROM subtopics WHERE user_id = ? GROUP BY topic_id`, userID)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("topic_repo").Error("failed to count subtopics: %v", err)
		return nil, err
	}
	defer rows.Close()

	counts := map[int64]int{}
	for rows.Next() {
		var topicID int64
		var n int
		if err := rows.Scan(&topicID, &n); err != nil {
			return nil, err
		}
		counts[topicID] = n
	}
	return counts, rows.Err()
}
