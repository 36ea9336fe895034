package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// NotAvailable is rendered in place of unset grades and undecided timestamps.
const NotAvailable = "N/A"

// ApprovalStatus captures workflow states for submitted courses and messages.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s ApprovalStatus) Terminal() bool {
	return s == ApprovalApproved || s == ApprovalRejected
}

// ApprovalKind names an entity type governed by the approval workflow.
type ApprovalKind string

const (
	ApprovalKindCourse  ApprovalKind = "course"
	ApprovalKindMessage ApprovalKind = "message"
)

// Approval holds the audit fields shared by every approvable entity.
type Approval struct {
	Status     ApprovalStatus `db:"approval_status" json:"approval_status"`
	ApprovedBy *string        `db:"approved_by_admin_id" json:"approved_by_admin_id,omitempty"`
	DecidedAt  DecisionTime   `db:"approval_timestamp" json:"approval_timestamp"`
}

// ResetApproval puts a fresh submission into the pending state.
func (a *Approval) ResetApproval() {
	*a = Approval{Status: ApprovalPending}
}

// Submittable is implemented by entities that enter the approval workflow.
type Submittable interface {
	ApprovalKind() ApprovalKind
	ResetApproval()
}

// Decision is the outcome of a successful approve or reject.
type Decision struct {
	Kind      ApprovalKind   `json:"kind"`
	Key       string         `json:"id"`
	Status    ApprovalStatus `json:"approval_status"`
	DecidedBy string         `json:"approved_by_admin_id"`
	DecidedAt time.Time      `json:"approval_timestamp"`
}

// DecisionTime is a nullable timestamp rendered as "N/A" until a decision exists.
type DecisionTime struct {
	sql.NullTime
}

// NewDecisionTime wraps a set timestamp.
func NewDecisionTime(t time.Time) DecisionTime {
	return DecisionTime{sql.NullTime{Time: t, Valid: true}}
}

func (d DecisionTime) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return json.Marshal(NotAvailable)
	}
	return json.Marshal(d.Time)
}

// Grade is a nullable score rendered as "N/A" until graded.
type Grade struct {
	sql.NullFloat64
}

// NewGrade wraps a set grade.
func NewGrade(v float64) Grade {
	return Grade{sql.NullFloat64{Float64: v, Valid: true}}
}

func (g Grade) MarshalJSON() ([]byte, error) {
	if !g.Valid {
		return json.Marshal(NotAvailable)
	}
	return json.Marshal(g.Float64)
}

// String formats the grade for exports.
func (g Grade) String() string {
	if !g.Valid {
		return NotAvailable
	}
	return formatDecimal(g.Float64)
}
