package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/pkg/export"
	"github.com/noah-isme/course-portal-api/pkg/response"
)

type enrollmentService interface {
	Select(ctx context.Context, studentID, courseID string) error
	Withdraw(ctx context.Context, studentID, courseID string) error
	ListByStudent(ctx context.Context, studentID string) ([]models.SelectionDetail, error)
	ExportTranscript(ctx context.Context, studentID, studentName, format string) (*export.Document, error)
}

// EnrollmentHandler exposes the student's course selections.
type EnrollmentHandler struct {
	enrollments enrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Select godoc
// @Summary Select an approved course
// @Tags Selections
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/{id}/select [post]
func (h *EnrollmentHandler) Select(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	courseID := c.Param("id")
	if err := h.enrollments.Select(c.Request.Context(), claims.PrincipalID, courseID); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"student_id": claims.PrincipalID, "course_id": courseID})
}

// Withdraw godoc
// @Summary Withdraw from a course
// @Tags Selections
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /selections/{id} [delete]
func (h *EnrollmentHandler) Withdraw(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if err := h.enrollments.Withdraw(c.Request.Context(), claims.PrincipalID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListMine godoc
// @Summary List the student's selections
// @Tags Selections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /selections/my [get]
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	selections, err := h.enrollments.ListByStudent(c.Request.Context(), claims.PrincipalID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, selections)
}

// Export godoc
// @Summary Download the student's selections
// @Tags Selections
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /selections/my/export [get]
func (h *EnrollmentHandler) Export(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	doc, err := h.enrollments.ExportTranscript(c.Request.Context(), claims.PrincipalID, claims.Name, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}
