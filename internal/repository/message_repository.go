package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-portal-api/internal/models"
)

// MessageRepository persists bulletin-board messages.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository constructs the repository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Insert stores a message and fills in the generated id.
func (r *MessageRepository) Insert(ctx context.Context, message *models.Message) error {
	if message.PostDate.IsZero() {
		message.PostDate = time.Now().UTC()
	}
	const query = `INSERT INTO messages (student_id, content, post_date, approval_status)
	VALUES ($1, $2, $3, $4) RETURNING message_id`
	if err := r.db.QueryRowxContext(ctx, query, message.StudentID, message.Content, message.PostDate, message.Status).Scan(&message.MessageID); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListPending returns the admin review queue, oldest post first.
func (r *MessageRepository) ListPending(ctx context.Context) ([]models.PendingMessage, error) {
	const query = `SELECT m.message_id, m.content, m.post_date, m.student_id, s.name AS student_name
	FROM messages m
	JOIN students s ON m.student_id = s.student_id
	WHERE m.approval_status = 'pending'
	ORDER BY m.post_date ASC, m.message_id ASC`
	messages := make([]models.PendingMessage, 0)
	if err := r.db.SelectContext(ctx, &messages, query); err != nil {
		return nil, fmt.Errorf("list pending messages: %w", err)
	}
	return messages, nil
}

// ListByStudent returns a student's messages, newest first.
func (r *MessageRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Message, error) {
	const query = `SELECT message_id, student_id, content, post_date, approval_status, approved_by_admin_id, approval_timestamp
	FROM messages
	WHERE student_id = $1
	ORDER BY post_date DESC, message_id DESC`
	messages := make([]models.Message, 0)
	if err := r.db.SelectContext(ctx, &messages, query, studentID); err != nil {
		return nil, fmt.Errorf("list student messages: %w", err)
	}
	return messages, nil
}
