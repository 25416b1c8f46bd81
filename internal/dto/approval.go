package dto

import (
	"time"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// DecisionRequest carries the approver's optional comments on an approval.
type DecisionRequest struct {
	Comments *string `json:"comments" form:"comments" binding:"omitempty,max=1000"`
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ApprovalResponse defines the data returned for an approval.
type ApprovalResponse struct {
	ApprovalID string                `json:"approvalID"`
	ExpenseID  string                `json:"expenseID"`
	ApproverID string                `json:"approverID"`
	Status     domain.ApprovalStatus `json:"status"`
	Comments   *string               `json:"comments,omitempty"`
	DecidedAt  *time.Time            `json:"decidedAt,omitempty"`
	CreatedAt  time.Time             `json:"createdAt"`
	UpdatedAt  time.Time             `json:"updatedAt"`
}

// ToApprovalResponse converts a domain.Approval to ApprovalResponse DTO
func ToApprovalResponse(a *domain.Approval) ApprovalResponse {
	return ApprovalResponse{
		ApprovalID: a.ApprovalID,
		ExpenseID:  a.ExpenseID,
		ApproverID: a.ApproverID,
		Status:     a.Status,
		Comments:   a.Comments,
		DecidedAt:  a.DecidedAt,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.LastUpdatedAt,
	}
}

// ToListApprovalResponse converts a slice of domain.Approval to a slice of ApprovalResponse DTOs
func ToListApprovalResponse(approvals []domain.Approval) []ApprovalResponse {
	res := make([]ApprovalResponse, len(approvals))
	for i := range approvals {
		res[i] = ToApprovalResponse(&approvals[i])
	}
	return res
}
