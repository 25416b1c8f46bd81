package mapping

import (
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/models"
)

// ToModelExpense converts a domain Expense to a model Expense
func ToModelExpense(d domain.Expense) models.Expense {
	return models.Expense{
		ExpenseID:       d.ExpenseID,
		EmployeeID:      d.EmployeeID,
		CategoryID:      d.CategoryID,
		Amount:          d.Amount,
		CurrencyCode:    d.CurrencyCode,
		Description:     d.Description,
		ExpenseDate:     d.ExpenseDate,
		ProjectCode:     toNullString(d.ProjectCode),
		BusinessPurpose: toNullString(d.BusinessPurpose),
		Status:          string(d.Status),
		SubmittedAt:     toNullTime(d.SubmittedAt),
		ApprovedAt:      toNullTime(d.ApprovedAt),
		RejectedAt:      toNullTime(d.RejectedAt),
		RejectionReason: toNullString(d.RejectionReason),
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainExpense converts a model Expense to a domain Expense
func ToDomainExpense(m models.Expense) domain.Expense {
	return domain.Expense{
		ExpenseID:       m.ExpenseID,
		EmployeeID:      m.EmployeeID,
		CategoryID:      m.CategoryID,
		Amount:          m.Amount,
		CurrencyCode:    m.CurrencyCode,
		Description:     m.Description,
		ExpenseDate:     m.ExpenseDate,
		ProjectCode:     fromNullString(m.ProjectCode),
		BusinessPurpose: fromNullString(m.BusinessPurpose),
		Status:          domain.ExpenseStatus(m.Status),
		SubmittedAt:     fromNullTime(m.SubmittedAt),
		ApprovedAt:      fromNullTime(m.ApprovedAt),
		RejectedAt:      fromNullTime(m.RejectedAt),
		RejectionReason: fromNullString(m.RejectionReason),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainExpenseSlice converts a slice of model Expenses to a slice of domain Expenses
func ToDomainExpenseSlice(ms []models.Expense) []domain.Expense {
	ds := make([]domain.Expense, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainExpense(m)
	}
	return ds
}

// ToModelApproval converts a domain Approval to a model Approval
func ToModelApproval(d domain.Approval) models.Approval {
	return models.Approval{
		ApprovalID:  d.ApprovalID,
		ExpenseID:   d.ExpenseID,
		ApproverID:  d.ApproverID,
		Status:      string(d.Status),
		Comments:    toNullString(d.Comments),
		DecidedAt:   toNullTime(d.DecidedAt),
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainApproval converts a model Approval to a domain Approval
func ToDomainApproval(m models.Approval) domain.Approval {
	return domain.Approval{
		ApprovalID:  m.ApprovalID,
		ExpenseID:   m.ExpenseID,
		ApproverID:  m.ApproverID,
		Status:      domain.ApprovalStatus(m.Status),
		Comments:    fromNullString(m.Comments),
		DecidedAt:   fromNullTime(m.DecidedAt),
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainApprovalSlice converts a slice of model Approvals to a slice of domain Approvals
func ToDomainApprovalSlice(ms []models.Approval) []domain.Approval {
	ds := make([]domain.Approval, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainApproval(m)
	}
	return ds
}
