package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-portal-api/internal/models"
	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
)

func newTestMessageService(ledger *fakeLedger) *MessageService {
	return NewMessageService(ledger.messageStore(), ledger, nil, nil, nil, nil)
}

func TestMessageServiceReviewQueue(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestMessageService(ledger)
	ctx := context.Background()

	first, err := svc.Submit(ctx, "S001", models.SubmitMessageRequest{Content: "  Library opens late on Friday  "})
	require.NoError(t, err)
	assert.Equal(t, "Library opens late on Friday", first.Content)
	second, err := svc.Submit(ctx, "S002", models.SubmitMessageRequest{Content: "Study group at 5"})
	require.NoError(t, err)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.MessageID, pending[0].MessageID)
	assert.Equal(t, "Alice", pending[0].StudentName)

	decision, err := svc.Approve(ctx, strconv.FormatInt(first.MessageID, 10), "A001")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, decision.Status)

	_, err = svc.Reject(ctx, strconv.FormatInt(first.MessageID, 10), "A001")
	assert.ErrorIs(t, err, appErrors.ErrAlreadyDecided)

	pending, err = svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.MessageID, pending[0].MessageID)

	mine, err := svc.ListByStudent(ctx, "S001")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.ApprovalApproved, mine[0].Status)
}

func TestMessageServiceRejectsBlankContent(t *testing.T) {
	svc := newTestMessageService(newFakeLedger())

	_, err := svc.Submit(context.Background(), "S001", models.SubmitMessageRequest{Content: " \t\n "})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestMessageServiceValidatesIDs(t *testing.T) {
	svc := newTestMessageService(newFakeLedger())

	for _, raw := range []string{"", "abc", "0", "-3", "1.5"} {
		_, err := svc.Approve(context.Background(), raw, "A001")
		assert.ErrorIs(t, err, appErrors.ErrValidation, raw)
	}

	_, err := svc.Reject(context.Background(), "42", "A001")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
