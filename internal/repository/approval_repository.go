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

type approvalTable struct {
	table string
	key   string
}

var approvalTables = map[models.ApprovalKind]approvalTable{
	models.ApprovalKindCourse:  {table: "courses", key: "course_id"},
	models.ApprovalKindMessage: {table: "messages", key: "message_id"},
}

// ApprovalRepository applies approve/reject transitions for every approvable kind.
type ApprovalRepository struct {
	db *sqlx.DB
}

// NewApprovalRepository constructs the repository.
func NewApprovalRepository(db *sqlx.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

// Transition moves a pending entity to the given status. The status guard lives in
// the UPDATE itself so concurrent reviewers cannot both succeed. When nothing is
// updated it returns sql.ErrNoRows for a missing entity or ErrAlreadyDecided.
func (r *ApprovalRepository) Transition(ctx context.Context, kind models.ApprovalKind, key string, to models.ApprovalStatus, adminID string, at time.Time) error {
	t, ok := approvalTables[kind]
	if !ok {
		return fmt.Errorf("unknown approval kind %q", kind)
	}
	if !to.Terminal() {
		return fmt.Errorf("invalid target status %q", to)
	}

	update := fmt.Sprintf(`UPDATE %s SET approval_status = $1, approved_by_admin_id = $2, approval_timestamp = $3 WHERE %s = $4 AND approval_status = '%s'`,
		t.table, t.key, models.ApprovalPending)
	lookup := fmt.Sprintf(`SELECT approval_status FROM %s WHERE %s = $1`, t.table, t.key)

	return withTx(ctx, r.db, "approval transition", func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, update, to, adminID, at, key)
		if err != nil {
			return fmt.Errorf("update %s status: %w", kind, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("check %s update rows: %w", kind, err)
		}
		if rows == 1 {
			return nil
		}

		var current models.ApprovalStatus
		if err := tx.GetContext(ctx, &current, lookup, key); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sql.ErrNoRows
			}
			return fmt.Errorf("lookup %s status: %w", kind, err)
		}
		if current.Terminal() {
			return ErrAlreadyDecided
		}
		return fmt.Errorf("%s %s still %s after guarded update", kind, key, current)
	})
}
