package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/pkg/response"
)

type courseService interface {
	Submit(ctx context.Context, teacherID string, req models.CreateCourseRequest) (*models.Course, error)
	ListApproved(ctx context.Context) ([]models.CatalogCourse, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error)
	ListPending(ctx context.Context) ([]models.PendingCourse, error)
	Approve(ctx context.Context, courseID, adminID string) (*models.Decision, error)
	Reject(ctx context.Context, courseID, adminID string) (*models.Decision, error)
}

// CourseHandler exposes catalog and course review endpoints.
type CourseHandler struct {
	courses courseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses courseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// ListApproved godoc
// @Summary List approved courses
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) ListApproved(c *gin.Context) {
	courses, err := h.courses.ListApproved(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, courses)
}

// Submit godoc
// @Summary Submit a course for review
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateCourseRequest true "Course"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Submit(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req models.CreateCourseRequest
	if !bindJSON(c, &req, "invalid course payload") {
		return
	}
	course, err := h.courses.Submit(c.Request.Context(), claims.PrincipalID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// ListMine godoc
// @Summary List the teacher's own courses
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /courses/my [get]
func (h *CourseHandler) ListMine(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	courses, err := h.courses.ListByTeacher(c.Request.Context(), claims.PrincipalID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, courses)
}

// ListPending godoc
// @Summary List courses awaiting review
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /courses/pending [get]
func (h *CourseHandler) ListPending(c *gin.Context) {
	courses, err := h.courses.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, courses)
}

// Approve godoc
// @Summary Approve a pending course
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/{id}/approve [put]
func (h *CourseHandler) Approve(c *gin.Context) {
	decide(c, h.courses.Approve)
}

// Reject godoc
// @Summary Reject a pending course
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses/{id}/reject [put]
func (h *CourseHandler) Reject(c *gin.Context) {
	decide(c, h.courses.Reject)
}
