package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/pkg/database"
)

func TestInsertCourse(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	hours, credits := 40, 3.0
	course := &models.Course{CourseID: "CS101", Name: "Intro", Hours: &hours, Credits: &credits, TeacherID: "T1"}
	course.ResetApproval()

	mock.ExpectExec("INSERT INTO courses").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), course))
	assert.False(t, course.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertCourseDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("INSERT INTO courses").WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Insert(context.Background(), &models.Course{CourseID: "CS101", Name: "Intro", TeacherID: "T1"})
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
}

func TestListApprovedCourses(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"course_id", "course_name", "hours", "credits", "teacher_name"}).
		AddRow("CS101", "Intro", 40, 3.0, "Turing").
		AddRow("MA201", "Algebra", nil, nil, "Noether")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.approval_status = 'approved'")).WillReturnRows(rows)

	courses, err := repo.ListApproved(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Turing", courses[0].TeacherName)
	require.NotNil(t, courses[0].Credits)
	assert.Equal(t, 3.0, *courses[0].Credits)
	assert.Nil(t, courses[1].Hours)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPendingCoursesOldestFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"course_id", "course_name", "hours", "credits", "teacher_id", "teacher_name", "created_at"}).
		AddRow("CS101", "Intro", 40, 3.0, "T1", "Turing", now.Add(-time.Hour)).
		AddRow("CS102", "Data", 32, 2.0, "T1", "Turing", now)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY c.created_at ASC")).WillReturnRows(rows)

	courses, err := repo.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "CS101", courses[0].CourseID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCoursesByTeacher(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"course_id", "course_name", "hours", "credits", "teacher_id", "approval_status", "approved_by_admin_id", "created_at", "approval_timestamp"}).
		AddRow("CS102", "Data", 32, 2.0, "T1", "pending", nil, now, nil).
		AddRow("CS101", "Intro", 40, 3.0, "T1", "approved", "A1", now.Add(-time.Hour), now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE teacher_id = $1")).
		WithArgs("T1").
		WillReturnRows(rows)

	courses, err := repo.ListByTeacher(context.Background(), "T1")
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, models.ApprovalPending, courses[0].Status)
	assert.False(t, courses[0].DecidedAt.Valid)
	assert.Equal(t, models.ApprovalApproved, courses[1].Status)
	require.NotNil(t, courses[1].ApprovedBy)
	assert.Equal(t, "A1", *courses[1].ApprovedBy)
	assert.True(t, courses[1].DecidedAt.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}
