package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-portal-api/internal/models"
)

// CourseRepository persists course submissions and serves catalog reads.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Insert stores a new course. A taken course_id surfaces as a unique violation and
// an unknown teacher as a foreign key violation.
func (r *CourseRepository) Insert(ctx context.Context, course *models.Course) error {
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO courses (course_id, course_name, hours, credits, teacher_id, approval_status, created_at)
	VALUES (:course_id, :course_name, :hours, :credits, :teacher_id, :approval_status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

// ListApproved returns the public catalog ordered by course id.
func (r *CourseRepository) ListApproved(ctx context.Context) ([]models.CatalogCourse, error) {
	const query = `SELECT c.course_id, c.course_name, c.hours, c.credits, t.name AS teacher_name
	FROM courses c
	JOIN teachers t ON c.teacher_id = t.teacher_id
	WHERE c.approval_status = 'approved'
	ORDER BY c.course_id`
	courses := make([]models.CatalogCourse, 0)
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list approved courses: %w", err)
	}
	return courses, nil
}

// ListPending returns the admin review queue, oldest submission first.
func (r *CourseRepository) ListPending(ctx context.Context) ([]models.PendingCourse, error) {
	const query = `SELECT c.course_id, c.course_name, c.hours, c.credits, c.teacher_id, t.name AS teacher_name, c.created_at
	FROM courses c
	JOIN teachers t ON c.teacher_id = t.teacher_id
	WHERE c.approval_status = 'pending'
	ORDER BY c.created_at ASC, c.course_id ASC`
	courses := make([]models.PendingCourse, 0)
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list pending courses: %w", err)
	}
	return courses, nil
}

// ListByTeacher returns every course a teacher submitted, newest first.
func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error) {
	const query = `SELECT course_id, course_name, hours, credits, teacher_id, approval_status, approved_by_admin_id, created_at, approval_timestamp
	FROM courses
	WHERE teacher_id = $1
	ORDER BY created_at DESC, course_id ASC`
	courses := make([]models.Course, 0)
	if err := r.db.SelectContext(ctx, &courses, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher courses: %w", err)
	}
	return courses, nil
}
