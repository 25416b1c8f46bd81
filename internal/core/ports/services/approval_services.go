package services

import (
	"context"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// ApprovalReaderSvc defines read operations for approvals
type ApprovalReaderSvc interface {
	// ListPendingApprovals retrieves the expenses awaiting a decision by approverID, with their approvals.
	ListPendingApprovals(ctx context.Context, approverID string) ([]domain.Expense, error)
}

// ApprovalDecisionSvc defines the approver-side transitions
type ApprovalDecisionSvc interface {
	// ApproveExpense approves a pending approval and its expense atomically. Comments are optional.
	ApproveExpense(ctx context.Context, approvalID string, approverID string, comments *string) (*domain.Approval, error)

	// RejectExpense rejects a pending approval and its expense atomically. Comments are mandatory.
	RejectExpense(ctx context.Context, approvalID string, approverID string, comments string) (*domain.Approval, error)
}

// ApprovalSvcFacade combines all approval-related service interfaces
type ApprovalSvcFacade interface {
	ApprovalReaderSvc
	ApprovalDecisionSvc
}
