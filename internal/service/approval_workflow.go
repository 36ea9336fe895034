package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/internal/repository"
	"github.com/noah-isme/course-portal-api/pkg/database"
	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
)

type submissionStore[T models.Submittable, V any] interface {
	Insert(ctx context.Context, entity T) error
	ListPending(ctx context.Context) ([]V, error)
}

type approvalTransitioner interface {
	Transition(ctx context.Context, kind models.ApprovalKind, key string, to models.ApprovalStatus, adminID string, at time.Time) error
}

// ApprovalWorkflow drives pending -> approved | rejected for one entity kind.
// T is the submitted entity, V the row type of the pending queue.
type ApprovalWorkflow[T models.Submittable, V any] struct {
	kind      models.ApprovalKind
	store     submissionStore[T, V]
	approvals approvalTransitioner
	audit     auditRecorder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewApprovalWorkflow wires a workflow for kind.
func NewApprovalWorkflow[T models.Submittable, V any](kind models.ApprovalKind, store submissionStore[T, V], approvals approvalTransitioner, audit auditRecorder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ApprovalWorkflow[T, V] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ApprovalWorkflow[T, V]{
		kind:      kind,
		store:     store,
		approvals: approvals,
		audit:     audit,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit validates entity, resets it to pending and stores it.
func (w *ApprovalWorkflow[T, V]) Submit(ctx context.Context, entity T) error {
	if err := w.validator.Struct(entity); err != nil {
		return validationFailure(err, fmt.Sprintf("invalid %s payload", w.kind))
	}
	entity.ResetApproval()

	if err := w.store.Insert(ctx, entity); err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return appErrors.Clone(appErrors.ErrDuplicateID, fmt.Sprintf("%s id already in use", w.kind))
		case database.IsForeignKeyViolation(err):
			return validationFailure(err, fmt.Sprintf("%s references an unknown owner", w.kind))
		case database.IsOutOfRange(err):
			return validationFailure(err, fmt.Sprintf("%s field value out of range", w.kind))
		default:
			return storeFailure(err, fmt.Sprintf("failed to submit %s", w.kind))
		}
	}

	w.logger.Info("submission received", zap.String("kind", string(w.kind)))
	return nil
}

// ListPending returns the review queue, oldest first.
func (w *ApprovalWorkflow[T, V]) ListPending(ctx context.Context) ([]V, error) {
	items, err := w.store.ListPending(ctx)
	if err != nil {
		return nil, storeFailure(err, fmt.Sprintf("failed to list pending %ss", w.kind))
	}
	return items, nil
}

// Approve marks a pending entity approved.
func (w *ApprovalWorkflow[T, V]) Approve(ctx context.Context, key, adminID string) (*models.Decision, error) {
	return w.decide(ctx, key, adminID, models.ApprovalApproved)
}

// Reject marks a pending entity rejected.
func (w *ApprovalWorkflow[T, V]) Reject(ctx context.Context, key, adminID string) (*models.Decision, error) {
	return w.decide(ctx, key, adminID, models.ApprovalRejected)
}

func (w *ApprovalWorkflow[T, V]) decide(ctx context.Context, key, adminID string, to models.ApprovalStatus) (*models.Decision, error) {
	if key == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s id is required", w.kind))
	}
	if adminID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing reviewer identity")
	}

	at := w.now().UTC()
	if err := w.approvals.Transition(ctx, w.kind, key, to, adminID, at); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", w.kind))
		case errors.Is(err, repository.ErrAlreadyDecided):
			return nil, appErrors.Clone(appErrors.ErrAlreadyDecided, fmt.Sprintf("%s already decided", w.kind))
		default:
			return nil, storeFailure(err, fmt.Sprintf("failed to update %s", w.kind))
		}
	}

	w.metrics.RecordDecision(w.kind, to)
	w.logger.Info("approval decided",
		zap.String("kind", string(w.kind)),
		zap.String("id", key),
		zap.String("status", string(to)),
		zap.String("admin_id", adminID),
	)

	if w.audit != nil {
		action := models.AuditActionApprove
		if to == models.ApprovalRejected {
			action = models.AuditActionReject
		}
		if err := w.audit.CreateAuditLog(ctx, &models.AuditLog{
			ActorID:    &adminID,
			ActorRole:  roleRef(models.RoleAdmin),
			Action:     action,
			Resource:   string(w.kind),
			ResourceID: &key,
		}); err != nil {
			w.logger.Warn("failed to record decision audit log", zap.Error(err))
		}
	}

	return &models.Decision{Kind: w.kind, Key: key, Status: to, DecidedBy: adminID, DecidedAt: at}, nil
}
