package service

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/internal/repository"
)

// fakeLedger is an in-memory stand-in for the course, message, approval and
// selection tables. It enforces the same guards the SQL does.
type fakeLedger struct {
	mu            sync.Mutex
	teachers      map[string]string
	students      map[string]string
	courses       map[string]*models.Course
	messages      map[int64]*models.Message
	selections    map[string]*models.SelectionDetail
	selectionKeys map[string][2]string
	nextMessageID int64
	clock         time.Time
	err           error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		teachers:      map[string]string{"T001": "Dr. Lee"},
		students:      map[string]string{"S001": "Alice", "S002": "Bob"},
		courses:       make(map[string]*models.Course),
		messages:      make(map[int64]*models.Message),
		selections:    make(map[string]*models.SelectionDetail),
		selectionKeys: make(map[string][2]string),
		clock:         time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (l *fakeLedger) tick() time.Time {
	l.clock = l.clock.Add(time.Minute)
	return l.clock
}

func (l *fakeLedger) courseStore() *fakeCourseStore   { return &fakeCourseStore{l} }
func (l *fakeLedger) messageStore() *fakeMessageStore { return &fakeMessageStore{l} }

func (l *fakeLedger) Transition(ctx context.Context, kind models.ApprovalKind, key string, to models.ApprovalStatus, adminID string, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}

	var approval *models.Approval
	switch kind {
	case models.ApprovalKindCourse:
		if c, ok := l.courses[key]; ok {
			approval = &c.Approval
		}
	case models.ApprovalKindMessage:
		id, _ := strconv.ParseInt(key, 10, 64)
		if m, ok := l.messages[id]; ok {
			approval = &m.Approval
		}
	}
	if approval == nil {
		return sql.ErrNoRows
	}
	if approval.Status != models.ApprovalPending {
		return repository.ErrAlreadyDecided
	}
	approval.Status = to
	approval.ApprovedBy = &adminID
	approval.DecidedAt = models.NewDecisionTime(at)
	return nil
}

func selectionKey(studentID, courseID string) string {
	return studentID + "|" + courseID
}

func (l *fakeLedger) Select(ctx context.Context, studentID, courseID string, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	course, ok := l.courses[courseID]
	if !ok {
		return repository.ErrCourseNotFound
	}
	if course.Status != models.ApprovalApproved {
		return repository.ErrCourseNotApproved
	}
	if _, ok := l.students[studentID]; !ok {
		return &pq.Error{Code: "23503"}
	}
	key := selectionKey(studentID, courseID)
	if _, ok := l.selections[key]; ok {
		return repository.ErrAlreadyEnrolled
	}
	var teacher *string
	if name, ok := l.teachers[course.TeacherID]; ok {
		teacher = &name
	}
	l.selections[key] = &models.SelectionDetail{
		CourseID:    course.CourseID,
		CourseName:  course.Name,
		Hours:       course.Hours,
		Credits:     course.Credits,
		TeacherName: teacher,
		SelectedAt:  at,
	}
	l.selectionKeys[key] = [2]string{studentID, courseID}
	return nil
}

func (l *fakeLedger) Withdraw(ctx context.Context, studentID, courseID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	key := selectionKey(studentID, courseID)
	if _, ok := l.selections[key]; ok {
		delete(l.selections, key)
		delete(l.selectionKeys, key)
		return nil
	}
	if _, ok := l.courses[courseID]; !ok {
		return repository.ErrCourseNotFound
	}
	return repository.ErrEnrollmentNotFound
}

func (l *fakeLedger) ListByStudent(ctx context.Context, studentID string) ([]models.SelectionDetail, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	result := make([]models.SelectionDetail, 0)
	for key, owner := range l.selectionKeys {
		if owner[0] == studentID {
			result = append(result, *l.selections[key])
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SelectedAt.After(result[j].SelectedAt) })
	return result, nil
}

func (l *fakeLedger) SetGrade(ctx context.Context, studentID, courseID string, grade float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	sel, ok := l.selections[selectionKey(studentID, courseID)]
	if !ok {
		return repository.ErrEnrollmentNotFound
	}
	sel.Grade = models.NewGrade(grade)
	return nil
}

type fakeCourseStore struct{ *fakeLedger }

func (s *fakeCourseStore) Insert(ctx context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.courses[course.CourseID]; ok {
		return &pq.Error{Code: "23505"}
	}
	if _, ok := s.teachers[course.TeacherID]; !ok {
		return &pq.Error{Code: "23503"}
	}
	course.CreatedAt = s.tick()
	stored := *course
	s.courses[course.CourseID] = &stored
	return nil
}

func (s *fakeCourseStore) ListPending(ctx context.Context) ([]models.PendingCourse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	result := make([]models.PendingCourse, 0)
	for _, c := range s.courses {
		if c.Status == models.ApprovalPending {
			result = append(result, models.PendingCourse{
				CourseID:    c.CourseID,
				CourseName:  c.Name,
				Hours:       c.Hours,
				Credits:     c.Credits,
				TeacherID:   c.TeacherID,
				TeacherName: s.teachers[c.TeacherID],
				CreatedAt:   c.CreatedAt,
			})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *fakeCourseStore) ListApproved(ctx context.Context) ([]models.CatalogCourse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	result := make([]models.CatalogCourse, 0)
	for _, c := range s.courses {
		if c.Status == models.ApprovalApproved {
			result = append(result, models.CatalogCourse{
				CourseID:    c.CourseID,
				CourseName:  c.Name,
				Hours:       c.Hours,
				Credits:     c.Credits,
				TeacherName: s.teachers[c.TeacherID],
			})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CourseID < result[j].CourseID })
	return result, nil
}

func (s *fakeCourseStore) ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]models.Course, 0)
	for _, c := range s.courses {
		if c.TeacherID == teacherID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

type fakeMessageStore struct{ *fakeLedger }

func (s *fakeMessageStore) Insert(ctx context.Context, message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.students[message.StudentID]; !ok {
		return &pq.Error{Code: "23503"}
	}
	s.nextMessageID++
	message.MessageID = s.nextMessageID
	message.PostDate = s.tick()
	stored := *message
	s.messages[message.MessageID] = &stored
	return nil
}

func (s *fakeMessageStore) ListPending(ctx context.Context) ([]models.PendingMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	result := make([]models.PendingMessage, 0)
	for _, m := range s.messages {
		if m.Status == models.ApprovalPending {
			result = append(result, models.PendingMessage{
				MessageID:   m.MessageID,
				Content:     m.Content,
				PostDate:    m.PostDate,
				StudentID:   m.StudentID,
				StudentName: s.students[m.StudentID],
			})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PostDate.Before(result[j].PostDate) })
	return result, nil
}

func (s *fakeMessageStore) ListByStudent(ctx context.Context, studentID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]models.Message, 0)
	for _, m := range s.messages {
		if m.StudentID == studentID {
			result = append(result, *m)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PostDate.After(result[j].PostDate) })
	return result, nil
}
