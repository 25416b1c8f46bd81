package dto

import (
	"time"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExpenseDateLayout is the wire format of expense dates.
const ExpenseDateLayout = "2006-01-02"

// CreateExpenseRequest defines the data needed to create a new draft expense.
type CreateExpenseRequest struct {
	Amount          *decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode    string           `json:"currencyCode" binding:"omitempty,currency_code"` // Defaults to the configured currency
	Description     string           `json:"description" binding:"required,notblank,max=500"`
	ExpenseDate     string           `json:"expenseDate" binding:"required,datetime=2006-01-02"`
	CategoryID      string           `json:"categoryID" binding:"required,uuid"`
	ProjectCode     *string          `json:"projectCode" binding:"omitempty,max=50"`
	BusinessPurpose *string          `json:"businessPurpose" binding:"omitempty,max=500"`
}

// ParsedExpenseDate returns the expense date as a UTC midnight time.
func (r CreateExpenseRequest) ParsedExpenseDate() (time.Time, error) {
	return parseExpenseDate(r.ExpenseDate)
}

// UpdateExpenseRequest defines the data allowed for updating a draft expense.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateExpenseRequest struct {
	Amount          *decimal.Decimal `json:"amount"`
	CurrencyCode    *string          `json:"currencyCode" binding:"omitempty,currency_code"`
	Description     *string          `json:"description" binding:"omitempty,notblank,max=500"`
	ExpenseDate     *string          `json:"expenseDate" binding:"omitempty,datetime=2006-01-02"`
	CategoryID      *string          `json:"categoryID" binding:"omitempty,uuid"`
	ProjectCode     *string          `json:"projectCode" binding:"omitempty,max=50"`
	BusinessPurpose *string          `json:"businessPurpose" binding:"omitempty,max=500"`
}

// ToExpenseUpdate converts the request into a domain partial update.
func (r UpdateExpenseRequest) ToExpenseUpdate() (domain.ExpenseUpdate, error) {
	u := domain.ExpenseUpdate{
		Amount:          r.Amount,
		CurrencyCode:    r.CurrencyCode,
		Description:     r.Description,
		CategoryID:      r.CategoryID,
		ProjectCode:     r.ProjectCode,
		BusinessPurpose: r.BusinessPurpose,
	}
	if r.ExpenseDate != nil {
		d, err := parseExpenseDate(*r.ExpenseDate)
		if err != nil {
			return domain.ExpenseUpdate{}, err
		}
		u.ExpenseDate = &d
	}
	return u, nil
}

func parseExpenseDate(s string) (time.Time, error) {
	d, err := time.Parse(ExpenseDateLayout, s)
	if err != nil {
		return time.Time{}, apperrors.NewValidationFailedError("expenseDate must be formatted as YYYY-MM-DD")
	}
	return d.UTC(), nil
}

// ListExpensesParams defines query parameters for listing the caller's expenses.
type ListExpensesParams struct {
	Status string `form:"status" binding:"omitempty,oneof=draft submitted approved rejected"`
	Skip   int    `form:"skip,default=0" binding:"min=0"`
	Limit  int    `form:"limit" binding:"min=0"`
}

// StatusFilter returns the status filter or nil when none was given.
func (p ListExpensesParams) StatusFilter() *domain.ExpenseStatus {
	if p.Status == "" {
		return nil
	}
	s := domain.ExpenseStatus(p.Status)
	return &s
}

// ExpenseResponse defines the data returned for an expense.
type ExpenseResponse struct {
	ExpenseID       string               `json:"expenseID"`
	EmployeeID      string               `json:"employeeID"`
	Amount          decimal.Decimal      `json:"amount"`
	CurrencyCode    string               `json:"currencyCode"`
	Description     string               `json:"description"`
	ExpenseDate     string               `json:"expenseDate"`
	CategoryID      string               `json:"categoryID"`
	Category        *CategoryResponse    `json:"category,omitempty"`
	ProjectCode     *string              `json:"projectCode,omitempty"`
	BusinessPurpose *string              `json:"businessPurpose,omitempty"`
	Status          domain.ExpenseStatus `json:"status"`
	SubmittedAt     *time.Time           `json:"submittedAt,omitempty"`
	ApprovedAt      *time.Time           `json:"approvedAt,omitempty"`
	RejectedAt      *time.Time           `json:"rejectedAt,omitempty"`
	RejectionReason *string              `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// ExpenseWithApprovalsResponse is an expense together with its approval history.
type ExpenseWithApprovalsResponse struct {
	ExpenseResponse
	Approvals []ApprovalResponse `json:"approvals"`
}

// ToExpenseResponse converts a domain.Expense to ExpenseResponse DTO
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	res := ExpenseResponse{
		ExpenseID:       e.ExpenseID,
		EmployeeID:      e.EmployeeID,
		Amount:          e.Amount,
		CurrencyCode:    e.CurrencyCode,
		Description:     e.Description,
		ExpenseDate:     e.ExpenseDate.Format(ExpenseDateLayout),
		CategoryID:      e.CategoryID,
		ProjectCode:     e.ProjectCode,
		BusinessPurpose: e.BusinessPurpose,
		Status:          e.Status,
		SubmittedAt:     e.SubmittedAt,
		ApprovedAt:      e.ApprovedAt,
		RejectedAt:      e.RejectedAt,
		RejectionReason: e.RejectionReason,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.LastUpdatedAt,
	}
	if e.Category != nil {
		c := ToCategoryResponse(e.Category)
		res.Category = &c
	}
	return res
}

// ToListExpenseResponse converts a slice of domain.Expense to a slice of ExpenseResponse DTOs
func ToListExpenseResponse(expenses []domain.Expense) []ExpenseResponse {
	res := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		res[i] = ToExpenseResponse(&expenses[i])
	}
	return res
}

// ToExpenseWithApprovalsResponse converts an expense and its loaded approvals.
func ToExpenseWithApprovalsResponse(e *domain.Expense) ExpenseWithApprovalsResponse {
	return ExpenseWithApprovalsResponse{
		ExpenseResponse: ToExpenseResponse(e),
		Approvals:       ToListApprovalResponse(e.Approvals),
	}
}

// ToListExpenseWithApprovalsResponse converts a slice of expenses with approvals.
func ToListExpenseWithApprovalsResponse(expenses []domain.Expense) []ExpenseWithApprovalsResponse {
	res := make([]ExpenseWithApprovalsResponse, len(expenses))
	for i := range expenses {
		res[i] = ToExpenseWithApprovalsResponse(&expenses[i])
	}
	return res
}
