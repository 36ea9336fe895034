package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-portal-api/internal/models"
	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
)

type messageRepository interface {
	submissionStore[*models.Message, models.PendingMessage]
	ListByStudent(ctx context.Context, studentID string) ([]models.Message, error)
}

// MessageService runs the bulletin board.
type MessageService struct {
	repo     messageRepository
	workflow *ApprovalWorkflow[*models.Message, models.PendingMessage]
}

// NewMessageService constructs the service.
func NewMessageService(repo messageRepository, approvals approvalTransitioner, audit auditRecorder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *MessageService {
	return &MessageService{
		repo:     repo,
		workflow: NewApprovalWorkflow[*models.Message, models.PendingMessage](models.ApprovalKindMessage, repo, approvals, audit, metrics, validate, logger),
	}
}

// Submit posts a message for review. Blank content is rejected.
func (s *MessageService) Submit(ctx context.Context, studentID string, req models.SubmitMessageRequest) (*models.Message, error) {
	message := &models.Message{
		StudentID: studentID,
		Content:   strings.TrimSpace(req.Content),
	}
	if err := s.workflow.Submit(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// ListByStudent returns a student's messages, newest first.
func (s *MessageService) ListByStudent(ctx context.Context, studentID string) ([]models.Message, error) {
	messages, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeFailure(err, "failed to list messages")
	}
	return messages, nil
}

// ListPending returns messages awaiting review, oldest first.
func (s *MessageService) ListPending(ctx context.Context) ([]models.PendingMessage, error) {
	return s.workflow.ListPending(ctx)
}

// Approve approves a pending message.
func (s *MessageService) Approve(ctx context.Context, messageID, adminID string) (*models.Decision, error) {
	key, err := parseMessageID(messageID)
	if err != nil {
		return nil, err
	}
	return s.workflow.Approve(ctx, key, adminID)
}

// Reject rejects a pending message.
func (s *MessageService) Reject(ctx context.Context, messageID, adminID string) (*models.Decision, error) {
	key, err := parseMessageID(messageID)
	if err != nil {
		return nil, err
	}
	return s.workflow.Reject(ctx, key, adminID)
}

// parseMessageID accepts positive integers only and returns their canonical form.
func parseMessageID(raw string) (string, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "message id must be a positive integer")
	}
	return strconv.FormatInt(id, 10), nil
}
