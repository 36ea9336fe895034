package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-portal-api/internal/models"
	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
)

func newCourseWorkflow(ledger *fakeLedger, audit auditRecorder) *ApprovalWorkflow[*models.Course, models.PendingCourse] {
	return NewApprovalWorkflow[*models.Course, models.PendingCourse](models.ApprovalKindCourse, ledger.courseStore(), ledger, audit, nil, nil, nil)
}

func submitCourse(t *testing.T, wf *ApprovalWorkflow[*models.Course, models.PendingCourse], id string) {
	t.Helper()
	require.NoError(t, wf.Submit(context.Background(), &models.Course{CourseID: id, Name: "Course " + id, TeacherID: "T001"}))
}

func TestApprovalWorkflowSubmitForcesPending(t *testing.T) {
	ledger := newFakeLedger()
	wf := newCourseWorkflow(ledger, nil)

	approvedBy := "A001"
	course := &models.Course{CourseID: "CS101", Name: "Intro", TeacherID: "T001"}
	course.Status = models.ApprovalApproved
	course.ApprovedBy = &approvedBy

	require.NoError(t, wf.Submit(context.Background(), course))
	assert.Equal(t, models.ApprovalPending, course.Status)
	assert.Nil(t, course.ApprovedBy)
	assert.False(t, course.DecidedAt.Valid)

	pending, err := wf.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "CS101", pending[0].CourseID)
	assert.Equal(t, "Dr. Lee", pending[0].TeacherName)
}

func TestApprovalWorkflowSubmitErrors(t *testing.T) {
	ledger := newFakeLedger()
	wf := newCourseWorkflow(ledger, nil)
	submitCourse(t, wf, "CS101")

	err := wf.Submit(context.Background(), &models.Course{CourseID: "CS101", Name: "Again", TeacherID: "T001"})
	assert.ErrorIs(t, err, appErrors.ErrDuplicateID)

	err = wf.Submit(context.Background(), &models.Course{CourseID: "CS102", Name: "Orphan", TeacherID: "T999"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	err = wf.Submit(context.Background(), &models.Course{CourseID: "", Name: "No id", TeacherID: "T001"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	ledger.err = context.DeadlineExceeded
	err = wf.Submit(context.Background(), &models.Course{CourseID: "CS103", Name: "Down", TeacherID: "T001"})
	assert.ErrorIs(t, err, appErrors.ErrStoreUnavailable)
}

func TestApprovalWorkflowDecisionsAreTerminal(t *testing.T) {
	ledger := newFakeLedger()
	audit := &mockAuditRecorder{}
	wf := newCourseWorkflow(ledger, audit)
	fixed := time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)
	wf.now = func() time.Time { return fixed }
	submitCourse(t, wf, "CS101")

	decision, err := wf.Approve(context.Background(), "CS101", "A001")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, decision.Status)
	assert.Equal(t, "A001", decision.DecidedBy)
	assert.Equal(t, fixed, decision.DecidedAt)

	stored := ledger.courses["CS101"]
	assert.Equal(t, models.ApprovalApproved, stored.Status)
	require.NotNil(t, stored.ApprovedBy)
	assert.Equal(t, "A001", *stored.ApprovedBy)
	assert.True(t, stored.DecidedAt.Valid)

	_, err = wf.Reject(context.Background(), "CS101", "A002")
	assert.ErrorIs(t, err, appErrors.ErrAlreadyDecided)
	_, err = wf.Approve(context.Background(), "CS101", "A002")
	assert.ErrorIs(t, err, appErrors.ErrAlreadyDecided)

	assert.Equal(t, "A001", *ledger.courses["CS101"].ApprovedBy)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionApprove, audit.logs[0].Action)
	assert.Equal(t, "course", audit.logs[0].Resource)
}

func TestApprovalWorkflowDecideErrors(t *testing.T) {
	ledger := newFakeLedger()
	wf := newCourseWorkflow(ledger, nil)

	_, err := wf.Approve(context.Background(), "NOPE", "A001")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = wf.Reject(context.Background(), "", "A001")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = wf.Approve(context.Background(), "CS101", "")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	ledger.err = errors.New("boom")
	_, err = wf.Approve(context.Background(), "CS101", "A001")
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestApprovalWorkflowAuditFailureDoesNotFailDecision(t *testing.T) {
	ledger := newFakeLedger()
	wf := newCourseWorkflow(ledger, &mockAuditRecorder{err: errors.New("audit down")})
	submitCourse(t, wf, "CS101")

	decision, err := wf.Reject(context.Background(), "CS101", "A001")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, decision.Status)
}

func TestApprovalWorkflowConcurrentDecisionsHaveOneWinner(t *testing.T) {
	ledger := newFakeLedger()
	wf := newCourseWorkflow(ledger, nil)
	submitCourse(t, wf, "CS101")

	const workers = 16
	var (
		wg        sync.WaitGroup
		successes int32
		decided   int32
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			var err error
			if i%2 == 0 {
				_, err = wf.Approve(context.Background(), "CS101", "A001")
			} else {
				_, err = wf.Reject(context.Background(), "CS101", "A002")
			}
			switch {
			case err == nil:
				atomic.AddInt32(&successes, 1)
			case errors.Is(err, appErrors.ErrAlreadyDecided):
				atomic.AddInt32(&decided, 1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes)
	assert.Equal(t, int32(workers-1), decided)
	assert.True(t, ledger.courses["CS101"].Status.Terminal())
}
