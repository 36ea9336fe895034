package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/pkg/response"
)

type messageService interface {
	Submit(ctx context.Context, studentID string, req models.SubmitMessageRequest) (*models.Message, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Message, error)
	ListPending(ctx context.Context) ([]models.PendingMessage, error)
	Approve(ctx context.Context, messageID, adminID string) (*models.Decision, error)
	Reject(ctx context.Context, messageID, adminID string) (*models.Decision, error)
}

// MessageHandler exposes the bulletin board.
type MessageHandler struct {
	messages messageService
}

// NewMessageHandler constructs MessageHandler.
func NewMessageHandler(messages messageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// Submit godoc
// @Summary Post a message for review
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.SubmitMessageRequest true "Message"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /messages [post]
func (h *MessageHandler) Submit(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req models.SubmitMessageRequest
	if !bindJSON(c, &req, "invalid message payload") {
		return
	}
	message, err := h.messages.Submit(c.Request.Context(), claims.PrincipalID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}

// ListMine godoc
// @Summary List the student's own messages
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /messages/my [get]
func (h *MessageHandler) ListMine(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	messages, err := h.messages.ListByStudent(c.Request.Context(), claims.PrincipalID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, messages)
}

// ListPending godoc
// @Summary List messages awaiting review
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /messages/pending [get]
func (h *MessageHandler) ListPending(c *gin.Context) {
	messages, err := h.messages.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, messages)
}

// Approve godoc
// @Summary Approve a pending message
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /messages/{id}/approve [put]
func (h *MessageHandler) Approve(c *gin.Context) {
	decide(c, h.messages.Approve)
}

// Reject godoc
// @Summary Reject a pending message
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /messages/{id}/reject [put]
func (h *MessageHandler) Reject(c *gin.Context) {
	decide(c, h.messages.Reject)
}
