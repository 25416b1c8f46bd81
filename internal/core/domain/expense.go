package domain

import (
	"strings"
	"time"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ExpenseStatus indicates where an expense is in the approval workflow.
type ExpenseStatus string

const (
	ExpenseDraft     ExpenseStatus = "draft"
	ExpenseSubmitted ExpenseStatus = "submitted"
	ExpenseApproved  ExpenseStatus = "approved"
	ExpenseRejected  ExpenseStatus = "rejected"
)

// IsValid reports whether s is a known expense status.
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case ExpenseDraft, ExpenseSubmitted, ExpenseApproved, ExpenseRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible from s.
func (s ExpenseStatus) IsTerminal() bool {
	return s == ExpenseApproved || s == ExpenseRejected
}

// MaxExpenseAmount is the largest amount the store can hold: twelve integer digits.
var MaxExpenseAmount = decimal.RequireFromString("999999999999.99999999")

// Expense is a single reimbursable cost owned by the employee who created it.
type Expense struct {
	ExpenseID       string          `json:"expenseID"`  // Primary Key (UUID)
	EmployeeID      string          `json:"employeeID"` // FK -> users.user_id, the owner
	CategoryID      string          `json:"categoryID"` // FK -> categories.category_id
	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currencyCode"`
	Description     string          `json:"description"`
	ExpenseDate     time.Time       `json:"expenseDate"`
	ProjectCode     *string         `json:"projectCode,omitempty"`
	BusinessPurpose *string         `json:"businessPurpose,omitempty"`
	Status          ExpenseStatus   `json:"status"`
	SubmittedAt     *time.Time      `json:"submittedAt,omitempty"`
	ApprovedAt      *time.Time      `json:"approvedAt,omitempty"`
	RejectedAt      *time.Time      `json:"rejectedAt,omitempty"`
	RejectionReason *string         `json:"rejectionReason,omitempty"`
	AuditFields

	// Populated on reads only.
	Category  *Category  `json:"category,omitempty"`
	Approvals []Approval `json:"approvals,omitempty"`
}

// ExpenseUpdate holds a partial update. Nil fields keep their current value.
type ExpenseUpdate struct {
	Amount          *decimal.Decimal
	CurrencyCode    *string
	Description     *string
	ExpenseDate     *time.Time
	CategoryID      *string
	ProjectCode     *string
	BusinessPurpose *string
}

// IsEmpty reports whether the update carries no field changes.
func (u ExpenseUpdate) IsEmpty() bool {
	return u.Amount == nil && u.CurrencyCode == nil && u.Description == nil &&
		u.ExpenseDate == nil && u.CategoryID == nil && u.ProjectCode == nil && u.BusinessPurpose == nil
}

// Validate checks the business fields of an expense.
func (e *Expense) Validate() error {
	if e.Amount.IsNegative() {
		return apperrors.NewValidationFailedError("amount must not be negative")
	}
	if e.Amount.GreaterThan(MaxExpenseAmount) {
		return apperrors.NewValidationFailedError("amount is too large")
	}
	if strings.TrimSpace(e.Description) == "" {
		return apperrors.NewValidationFailedError("description is required")
	}
	if e.CategoryID == "" {
		return apperrors.NewValidationFailedError("category is required")
	}
	if e.CurrencyCode == "" {
		return apperrors.NewValidationFailedError("currency is required")
	}
	if e.ExpenseDate.IsZero() {
		return apperrors.NewValidationFailedError("expense date is required")
	}
	return nil
}

// CanEdit reports whether business fields may still change.
func (e *Expense) CanEdit() bool {
	return e.Status == ExpenseDraft
}

// ApplyUpdate applies the non-nil fields of u. The expense is left untouched on error.
func (e *Expense) ApplyUpdate(u ExpenseUpdate, userID string, now time.Time) error {
	if !e.CanEdit() {
		return apperrors.NewInvalidStateError("can only update draft expenses")
	}

	updated := *e
	if u.Amount != nil {
		updated.Amount = *u.Amount
	}
	if u.CurrencyCode != nil {
		updated.CurrencyCode = *u.CurrencyCode
	}
	if u.Description != nil {
		updated.Description = *u.Description
	}
	if u.ExpenseDate != nil {
		updated.ExpenseDate = *u.ExpenseDate
	}
	if u.CategoryID != nil {
		updated.CategoryID = *u.CategoryID
	}
	if u.ProjectCode != nil {
		updated.ProjectCode = u.ProjectCode
	}
	if u.BusinessPurpose != nil {
		updated.BusinessPurpose = u.BusinessPurpose
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	updated.Touch(userID, now)
	*e = updated
	return nil
}

// Submit moves a draft expense to submitted.
func (e *Expense) Submit(userID string, now time.Time) error {
	if e.Status != ExpenseDraft {
		return apperrors.NewInvalidStateError("can only submit draft expenses")
	}
	e.Status = ExpenseSubmitted
	e.SubmittedAt = &now
	e.Touch(userID, now)
	return nil
}

// MarkApproved records the approval decision on a submitted expense.
func (e *Expense) MarkApproved(userID string, now time.Time) error {
	if e.Status != ExpenseSubmitted {
		return apperrors.NewInvalidStateError("expense is not awaiting a decision")
	}
	e.Status = ExpenseApproved
	e.ApprovedAt = &now
	e.Touch(userID, now)
	return nil
}

// MarkRejected records the rejection decision and reason on a submitted expense.
func (e *Expense) MarkRejected(reason string, userID string, now time.Time) error {
	if e.Status != ExpenseSubmitted {
		return apperrors.NewInvalidStateError("expense is not awaiting a decision")
	}
	e.Status = ExpenseRejected
	e.RejectedAt = &now
	e.RejectionReason = &reason
	e.Touch(userID, now)
	return nil
}
