package models

import "time"

// Message is a bulletin-board post awaiting or past admin review.
type Message struct {
	MessageID int64     `db:"message_id" json:"message_id"`
	StudentID string    `db:"student_id" json:"student_id" validate:"required,max=64"`
	Content   string    `db:"content" json:"content" validate:"required,max=2000"`
	PostDate  time.Time `db:"post_date" json:"post_date"`
	Approval
}

// ApprovalKind implements Submittable.
func (*Message) ApprovalKind() ApprovalKind { return ApprovalKindMessage }

// SubmitMessageRequest is the body a student posts.
type SubmitMessageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// PendingMessage is a message in the admin review queue.
type PendingMessage struct {
	MessageID   int64     `db:"message_id" json:"message_id"`
	Content     string    `db:"content" json:"content"`
	PostDate    time.Time `db:"post_date" json:"post_date"`
	StudentID   string    `db:"student_id" json:"student_id"`
	StudentName string    `db:"student_name" json:"student_name"`
}
