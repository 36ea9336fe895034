package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/internal/repository"
	"github.com/noah-isme/course-portal-api/pkg/database"
	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
	"github.com/noah-isme/course-portal-api/pkg/export"
)

// Enrollment change labels used for metrics.
const (
	enrollmentActionSelect   = "select"
	enrollmentActionWithdraw = "withdraw"
	enrollmentActionGrade    = "grade"
)

type enrollmentRepository interface {
	Select(ctx context.Context, studentID, courseID string, at time.Time) error
	Withdraw(ctx context.Context, studentID, courseID string) error
	ListByStudent(ctx context.Context, studentID string) ([]models.SelectionDetail, error)
	SetGrade(ctx context.Context, studentID, courseID string, grade float64) error
}

// EnrollmentService manages the student course ledger.
type EnrollmentService struct {
	repo      enrollmentRepository
	audit     auditRecorder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(repo enrollmentRepository, audit auditRecorder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EnrollmentService{
		repo:      repo,
		audit:     audit,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Select enrolls studentID in an approved course.
func (s *EnrollmentService) Select(ctx context.Context, studentID, courseID string) error {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "course id is required")
	}
	if err := s.repo.Select(ctx, studentID, courseID, s.now().UTC()); err != nil {
		return s.mapLedgerError(err, "failed to select course")
	}
	s.metrics.RecordEnrollment(enrollmentActionSelect)
	s.logger.Info("course selected", zap.String("student_id", studentID), zap.String("course_id", courseID))
	return nil
}

// Withdraw removes studentID from a course.
func (s *EnrollmentService) Withdraw(ctx context.Context, studentID, courseID string) error {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "course id is required")
	}
	if err := s.repo.Withdraw(ctx, studentID, courseID); err != nil {
		return s.mapLedgerError(err, "failed to withdraw from course")
	}
	s.metrics.RecordEnrollment(enrollmentActionWithdraw)
	s.logger.Info("course withdrawn", zap.String("student_id", studentID), zap.String("course_id", courseID))
	return nil
}

// ListByStudent returns the student's selections, most recent first.
func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID string) ([]models.SelectionDetail, error) {
	selections, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeFailure(err, "failed to list selections")
	}
	return selections, nil
}

// SetGrade records a grade on an existing selection on behalf of actorID.
func (s *EnrollmentService) SetGrade(ctx context.Context, req models.SetGradeRequest, actorID string) error {
	if err := s.validator.Struct(req); err != nil {
		return validationFailure(err, "invalid grade payload")
	}
	if !models.HasCentPrecision(req.Grade) {
		return appErrors.Clone(appErrors.ErrValidation, "grade must have at most two decimal places")
	}
	if err := s.repo.SetGrade(ctx, req.StudentID, req.CourseID, req.Grade); err != nil {
		return s.mapLedgerError(err, "failed to set grade")
	}
	s.metrics.RecordEnrollment(enrollmentActionGrade)

	if s.audit != nil {
		resourceID := req.StudentID + "/" + req.CourseID
		details := []byte(fmt.Sprintf(`{"grade":%s}`, models.NewGrade(req.Grade).String()))
		entry := &models.AuditLog{
			ActorRole:  roleRef(models.RoleAdmin),
			Action:     models.AuditActionGrade,
			Resource:   "selection",
			ResourceID: &resourceID,
			Details:    details,
		}
		if actorID != "" {
			entry.ActorID = &actorID
		}
		if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
			s.logger.Warn("failed to record grade audit log", zap.Error(err))
		}
	}
	return nil
}

// ExportTranscript renders the student's selections as csv or pdf.
func (s *EnrollmentService) ExportTranscript(ctx context.Context, studentID, studentName, rawFormat string) (*export.Document, error) {
	format, err := export.ParseFormat(strings.ToLower(strings.TrimSpace(rawFormat)))
	if err != nil {
		return nil, validationFailure(err, "format must be csv or pdf")
	}
	selections, err := s.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title:    "Course Selections",
		Subtitle: fmt.Sprintf("%s (%s)", studentName, studentID),
		Headers:  []string{"Course ID", "Course Name", "Hours", "Credits", "Teacher", "Selected At", "Grade"},
		Rows:     make([]map[string]string, 0, len(selections)),
	}
	for _, sel := range selections {
		teacher := models.NotAvailable
		if sel.TeacherName != nil {
			teacher = *sel.TeacherName
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Course ID":   sel.CourseID,
			"Course Name": sel.CourseName,
			"Hours":       models.FormatOptionalInt(sel.Hours),
			"Credits":     models.FormatOptionalDecimal(sel.Credits),
			"Teacher":     teacher,
			"Selected At": sel.SelectedAt.UTC().Format(time.RFC3339),
			"Grade":       sel.Grade.String(),
		})
	}

	doc, err := export.Render(format, dataset, "selections-"+studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return doc, nil
}

func (s *EnrollmentService) mapLedgerError(err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrCourseNotFound):
		return appErrors.ErrCourseNotFound
	case errors.Is(err, repository.ErrCourseNotApproved):
		return appErrors.Clone(appErrors.ErrInvalidState, "course is not approved")
	case errors.Is(err, repository.ErrAlreadyEnrolled):
		return appErrors.ErrAlreadyEnrolled
	case errors.Is(err, repository.ErrEnrollmentNotFound):
		return appErrors.ErrEnrollmentNotFound
	case database.IsForeignKeyViolation(err):
		return validationFailure(err, "unknown student")
	default:
		return storeFailure(err, message)
	}
}
