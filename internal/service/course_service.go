package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-portal-api/internal/models"
	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
)

type courseRepository interface {
	submissionStore[*models.Course, models.PendingCourse]
	ListApproved(ctx context.Context) ([]models.CatalogCourse, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error)
}

// CourseService handles course submission, review and catalog reads.
type CourseService struct {
	repo     courseRepository
	workflow *ApprovalWorkflow[*models.Course, models.PendingCourse]
	logger   *zap.Logger
}

// NewCourseService constructs the service.
func NewCourseService(repo courseRepository, approvals approvalTransitioner, audit auditRecorder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		repo:     repo,
		workflow: NewApprovalWorkflow[*models.Course, models.PendingCourse](models.ApprovalKindCourse, repo, approvals, audit, metrics, validate, logger),
		logger:   logger,
	}
}

// Submit stores a new course for teacherID in the pending state.
func (s *CourseService) Submit(ctx context.Context, teacherID string, req models.CreateCourseRequest) (*models.Course, error) {
	if req.Credits != nil && !models.HasCentPrecision(*req.Credits) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "credits must have at most two decimal places")
	}
	course := &models.Course{
		CourseID:  strings.TrimSpace(req.CourseID),
		Name:      strings.TrimSpace(req.CourseName),
		Hours:     req.Hours,
		Credits:   req.Credits,
		TeacherID: teacherID,
	}
	if err := s.workflow.Submit(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// ListApproved returns every approved course ordered by id.
func (s *CourseService) ListApproved(ctx context.Context) ([]models.CatalogCourse, error) {
	courses, err := s.repo.ListApproved(ctx)
	if err != nil {
		return nil, storeFailure(err, "failed to list courses")
	}
	return courses, nil
}

// ListByTeacher returns a teacher's own courses in all states, newest first.
func (s *CourseService) ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error) {
	courses, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, storeFailure(err, "failed to list teacher courses")
	}
	return courses, nil
}

// ListPending returns courses awaiting review, oldest first.
func (s *CourseService) ListPending(ctx context.Context) ([]models.PendingCourse, error) {
	return s.workflow.ListPending(ctx)
}

// Approve approves a pending course.
func (s *CourseService) Approve(ctx context.Context, courseID, adminID string) (*models.Decision, error) {
	return s.workflow.Approve(ctx, courseID, adminID)
}

// Reject rejects a pending course.
func (s *CourseService) Reject(ctx context.Context, courseID, adminID string) (*models.Decision, error) {
	return s.workflow.Reject(ctx, courseID, adminID)
}
