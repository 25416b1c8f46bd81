package domain

import (
	"strings"
	"time"

	"github.com/SscSPs/expenseflow/internal/apperrors"
)

// ApprovalStatus indicates the decision state of an approval.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// IsValid reports whether s is a known approval status.
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// Approval is the decision record linking a submitted expense to its approver.
type Approval struct {
	ApprovalID string         `json:"approvalID"` // Primary Key (UUID)
	ExpenseID  string         `json:"expenseID"`  // FK -> expenses.expense_id
	ApproverID string         `json:"approverID"` // FK -> users.user_id
	Status     ApprovalStatus `json:"status"`
	Comments   *string        `json:"comments,omitempty"`
	DecidedAt  *time.Time     `json:"decidedAt,omitempty"`
	AuditFields
}

// NewPendingApproval creates the approval record created on submission.
func NewPendingApproval(approvalID, expenseID, approverID, submitterID string, now time.Time) Approval {
	return Approval{
		ApprovalID:  approvalID,
		ExpenseID:   expenseID,
		ApproverID:  approverID,
		Status:      ApprovalPending,
		AuditFields: NewAuditFields(submitterID, now),
	}
}

func (a *Approval) checkDecidable(approverID string) error {
	if a.ApproverID != approverID {
		return apperrors.NewForbiddenError("only the designated approver may decide this approval")
	}
	if a.Status != ApprovalPending {
		return apperrors.NewInvalidStateError("approval already processed")
	}
	return nil
}

// Approve records a positive decision. Comments are optional.
func (a *Approval) Approve(approverID string, comments *string, now time.Time) error {
	if err := a.checkDecidable(approverID); err != nil {
		return err
	}
	if comments != nil && strings.TrimSpace(*comments) == "" {
		comments = nil
	}
	a.Status = ApprovalApproved
	a.Comments = comments
	a.DecidedAt = &now
	a.Touch(approverID, now)
	return nil
}

// Reject records a negative decision. Comments are mandatory.
func (a *Approval) Reject(approverID string, comments string, now time.Time) error {
	if err := ValidateRejectionComments(comments); err != nil {
		return err
	}
	if err := a.checkDecidable(approverID); err != nil {
		return err
	}
	a.Status = ApprovalRejected
	a.Comments = &comments
	a.DecidedAt = &now
	a.Touch(approverID, now)
	return nil
}

// ValidateRejectionComments enforces that a rejection explains itself.
func ValidateRejectionComments(comments string) error {
	if strings.TrimSpace(comments) == "" {
		return apperrors.NewValidationFailedError("comments are required when rejecting an expense")
	}
	return nil
}
