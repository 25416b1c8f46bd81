package services

import (
	"context"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/dto"
)

// ExpenseReaderSvc defines read operations for expense data
type ExpenseReaderSvc interface {
	// ListExpenses retrieves the caller's own expenses with an optional status filter.
	ListExpenses(ctx context.Context, employeeID string, params dto.ListExpensesParams) ([]domain.Expense, error)

	// GetExpense retrieves an expense with its category and approval history.
	// Expenses the caller may not see are reported as not found.
	GetExpense(ctx context.Context, expenseID string, requestingUserID string) (*domain.Expense, error)
}

// ExpenseWriterSvc defines the employee-side transitions of an expense
type ExpenseWriterSvc interface {
	// CreateExpense creates a new draft expense owned by employeeID.
	CreateExpense(ctx context.Context, req dto.CreateExpenseRequest, employeeID string) (*domain.Expense, error)

	// UpdateExpense applies a partial update to a draft expense owned by employeeID.
	UpdateExpense(ctx context.Context, expenseID string, req dto.UpdateExpenseRequest, employeeID string) (*domain.Expense, error)

	// SubmitExpense moves a draft expense to submitted and opens an approval for the employee's manager.
	SubmitExpense(ctx context.Context, expenseID string, employeeID string) (*domain.Expense, error)
}

// ExpenseSvcFacade combines all expense-related service interfaces
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
}
