package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-portal-api/internal/models"
)

// EnrollmentRepository handles persistence of course selections.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Select enrolls a student in an approved course. It returns ErrCourseNotFound,
// ErrCourseNotApproved or ErrAlreadyEnrolled when the precondition fails; dangling
// student ids surface as a foreign key violation.
func (r *EnrollmentRepository) Select(ctx context.Context, studentID, courseID string, at time.Time) error {
	const lockQuery = `SELECT approval_status FROM courses WHERE course_id = $1 FOR SHARE`
	const insertQuery = `INSERT INTO course_selections (student_id, course_id, selection_timestamp)
VALUES ($1, $2, $3)
ON CONFLICT (student_id, course_id) DO NOTHING`

	return withTx(ctx, r.db, "course selection", func(tx *sqlx.Tx) error {
		var status models.ApprovalStatus
		if err := tx.GetContext(ctx, &status, lockQuery, courseID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCourseNotFound
			}
			return fmt.Errorf("lock course for selection: %w", err)
		}
		if status != models.ApprovalApproved {
			return ErrCourseNotApproved
		}

		result, err := tx.ExecContext(ctx, insertQuery, studentID, courseID, at)
		if err != nil {
			return fmt.Errorf("insert selection: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("check selection rows: %w", err)
		}
		if rows == 0 {
			return ErrAlreadyEnrolled
		}
		return nil
	})
}

// Withdraw removes a selection, distinguishing a missing course from a missing enrollment.
func (r *EnrollmentRepository) Withdraw(ctx context.Context, studentID, courseID string) error {
	const deleteQuery = `DELETE FROM course_selections WHERE student_id = $1 AND course_id = $2`
	const courseQuery = `SELECT 1 FROM courses WHERE course_id = $1`

	return withTx(ctx, r.db, "course withdrawal", func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, deleteQuery, studentID, courseID)
		if err != nil {
			return fmt.Errorf("delete selection: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("check withdrawal rows: %w", err)
		}
		if rows > 0 {
			return nil
		}

		var exists int
		if err := tx.GetContext(ctx, &exists, courseQuery, courseID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCourseNotFound
			}
			return fmt.Errorf("lookup course for withdrawal: %w", err)
		}
		return ErrEnrollmentNotFound
	})
}

// ListByStudent returns a student's selections with course and teacher names, newest first.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.SelectionDetail, error) {
	const query = `SELECT cs.course_id, c.course_name, c.hours, c.credits, t.name AS teacher_name,
       cs.selection_timestamp AS selection_time, cs.grade
FROM course_selections cs
JOIN courses c ON cs.course_id = c.course_id
LEFT JOIN teachers t ON c.teacher_id = t.teacher_id
WHERE cs.student_id = $1
ORDER BY cs.selection_timestamp DESC, cs.course_id ASC`
	selections := make([]models.SelectionDetail, 0)
	if err := r.db.SelectContext(ctx, &selections, query, studentID); err != nil {
		return nil, fmt.Errorf("list student selections: %w", err)
	}
	return selections, nil
}

// SetGrade attaches a grade to an existing selection.
func (r *EnrollmentRepository) SetGrade(ctx context.Context, studentID, courseID string, grade float64) error {
	const query = `UPDATE course_selections SET grade = $3 WHERE student_id = $1 AND course_id = $2`
	result, err := r.db.ExecContext(ctx, query, studentID, courseID, grade)
	if err != nil {
		return fmt.Errorf("set grade: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check grade rows: %w", err)
	}
	if rows == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}
