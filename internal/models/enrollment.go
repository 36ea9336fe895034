package models

import "time"

// SelectionDetail enriches a selection with course and teacher info.
type SelectionDetail struct {
	CourseID    string    `db:"course_id" json:"course_id"`
	CourseName  string    `db:"course_name" json:"course_name"`
	Hours       *int      `db:"hours" json:"hours"`
	Credits     *float64  `db:"credits" json:"credits"`
	TeacherName *string   `db:"teacher_name" json:"teacher_name"`
	SelectedAt  time.Time `db:"selection_time" json:"selection_time"`
	Grade       Grade     `db:"grade" json:"grade"`
}

// SetGradeRequest attaches a grade to an existing selection.
type SetGradeRequest struct {
	StudentID string  `validate:"required,max=64"`
	CourseID  string  `validate:"required,max=64"`
	Grade     float64 `validate:"gte=0,lte=100"`
}
