package repositories

import (
	"context"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// ExpenseReader defines read operations for expense data
type ExpenseReader interface {
	// FindExpenseWithApprovals retrieves an expense with its approval history, oldest first.
	// Both are read from one snapshot so their statuses always agree.
	FindExpenseWithApprovals(ctx context.Context, expenseID string) (*domain.Expense, error)

	// ListExpensesByEmployee retrieves the expenses owned by employeeID, newest first.
	// A nil status returns all statuses.
	ListExpensesByEmployee(ctx context.Context, employeeID string, status *domain.ExpenseStatus, skip, limit int) ([]domain.Expense, error)

	// ListExpensesAwaitingApprover retrieves expenses that have a pending approval assigned to approverID,
	// with their approvals attached from the same snapshot.
	ListExpensesAwaitingApprover(ctx context.Context, approverID string) ([]domain.Expense, error)
}

// ExpenseWriter defines write operations for expense data
type ExpenseWriter interface {
	// SaveExpense persists a new expense.
	SaveExpense(ctx context.Context, expense domain.Expense) error
}

// ExpenseTxWriter defines expense operations that run inside a caller-owned transaction.
type ExpenseTxWriter interface {
	// FindExpenseByIDForUpdate retrieves an expense and locks its row until tx ends.
	FindExpenseByIDForUpdate(ctx context.Context, tx pgx.Tx, expenseID string) (*domain.Expense, error)

	// UpdateExpenseInTx writes business fields, status and decision metadata of an expense.
	UpdateExpenseInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense) error
}

// ApprovalTxWriter defines approval operations that run inside a caller-owned transaction.
type ApprovalTxWriter interface {
	// FindApprovalByIDForUpdate retrieves an approval and locks its row until tx ends.
	FindApprovalByIDForUpdate(ctx context.Context, tx pgx.Tx, approvalID string) (*domain.Approval, error)

	// SaveApprovalInTx persists a new approval.
	SaveApprovalInTx(ctx context.Context, tx pgx.Tx, approval domain.Approval) error

	// UpdateApprovalDecisionInTx records the decision on a pending approval.
	// It returns apperrors.ErrInvalidState if the approval was already decided.
	UpdateApprovalDecisionInTx(ctx context.Context, tx pgx.Tx, approval domain.Approval) error
}

// ExpenseRepositoryFacade combines all expense and approval repository interfaces
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
	ExpenseTxWriter
	ApprovalTxWriter
}

// ExpenseRepositoryWithTx extends ExpenseRepositoryFacade with transaction capabilities
type ExpenseRepositoryWithTx interface {
	ExpenseRepositoryFacade
	TransactionManager
}
