package models

import (
	"math"
	"strconv"
	"time"
)

// Course is a teacher-submitted course moving through the approval workflow.
type Course struct {
	CourseID  string    `db:"course_id" json:"course_id" validate:"required,max=64"`
	Name      string    `db:"course_name" json:"course_name" validate:"required,max=255"`
	Hours     *int      `db:"hours" json:"hours" validate:"omitempty,gte=0,lte=2147483647"`
	Credits   *float64  `db:"credits" json:"credits" validate:"omitempty,gte=0,lte=999.99"`
	TeacherID string    `db:"teacher_id" json:"teacher_id" validate:"required,max=64"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Approval
}

// ApprovalKind implements Submittable.
func (*Course) ApprovalKind() ApprovalKind { return ApprovalKindCourse }

// CreateCourseRequest is the body a teacher submits. The owner comes from the session.
type CreateCourseRequest struct {
	CourseID   string   `json:"course_id" validate:"required,max=64"`
	CourseName string   `json:"course_name" validate:"required,max=255"`
	Hours      *int     `json:"hours" validate:"omitempty,gte=0,lte=2147483647"`
	Credits    *float64 `json:"credits" validate:"omitempty,gte=0,lte=999.99"`
}

// CatalogCourse is an approved course as listed to every role.
type CatalogCourse struct {
	CourseID    string   `db:"course_id" json:"course_id"`
	CourseName  string   `db:"course_name" json:"course_name"`
	Hours       *int     `db:"hours" json:"hours"`
	Credits     *float64 `db:"credits" json:"credits"`
	TeacherName string   `db:"teacher_name" json:"teacher_name"`
}

// PendingCourse is a course awaiting review in the admin queue.
type PendingCourse struct {
	CourseID    string    `db:"course_id" json:"course_id"`
	CourseName  string    `db:"course_name" json:"course_name"`
	Hours       *int      `db:"hours" json:"hours"`
	Credits     *float64  `db:"credits" json:"credits"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	TeacherName string    `db:"teacher_name" json:"teacher_name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// HasCentPrecision reports whether v carries at most two decimal places, the
// scale of the credits and grade columns.
func HasCentPrecision(v float64) bool {
	return math.Round(v*100)/100 == v
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatOptionalInt renders nil as an empty string.
func FormatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// FormatOptionalDecimal renders nil as an empty string and values with two decimals.
func FormatOptionalDecimal(v *float64) string {
	if v == nil {
		return ""
	}
	return formatDecimal(*v)
}
