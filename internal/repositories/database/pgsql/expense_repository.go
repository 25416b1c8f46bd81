package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	"github.com/SscSPs/expenseflow/internal/models"
	"github.com/SscSPs/expenseflow/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var expenseColumnNames = []string{
	"expense_id", "employee_id", "category_id", "amount", "currency_code", "description",
	"expense_date", "project_code", "business_purpose", "status", "submitted_at", "approved_at",
	"rejected_at", "rejection_reason", "created_at", "created_by", "last_updated_at", "last_updated_by", "version",
}

const approvalColumns = `approval_id, expense_id, approver_id, status, comments, decided_at,
		created_at, created_by, last_updated_at, last_updated_by, version`

// expenseColumns renders the expense column list, optionally qualified by a table alias.
func expenseColumns(alias string) string {
	if alias == "" {
		return strings.Join(expenseColumnNames, ", ")
	}
	qualified := make([]string, len(expenseColumnNames))
	for i, c := range expenseColumnNames {
		qualified[i] = alias + "." + c
	}
	return strings.Join(qualified, ", ")
}

// PgxExpenseRepository stores expenses and the approvals recorded against them.
type PgxExpenseRepository struct {
	BaseRepository
}

func newPgxExpenseRepository(pool *pgxpool.Pool) portsrepo.ExpenseRepositoryWithTx {
	return &PgxExpenseRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ExpenseRepositoryWithTx = (*PgxExpenseRepository)(nil)

func scanExpense(row pgx.Row) (models.Expense, error) {
	var m models.Expense
	err := row.Scan(
		&m.ExpenseID,
		&m.EmployeeID,
		&m.CategoryID,
		&m.Amount,
		&m.CurrencyCode,
		&m.Description,
		&m.ExpenseDate,
		&m.ProjectCode,
		&m.BusinessPurpose,
		&m.Status,
		&m.SubmittedAt,
		&m.ApprovedAt,
		&m.RejectedAt,
		&m.RejectionReason,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	return m, err
}

func scanApproval(row pgx.Row) (models.Approval, error) {
	var m models.Approval
	err := row.Scan(
		&m.ApprovalID,
		&m.ExpenseID,
		&m.ApproverID,
		&m.Status,
		&m.Comments,
		&m.DecidedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	return m, err
}

func collectExpenses(rows pgx.Rows) ([]domain.Expense, error) {
	defer rows.Close()
	expenses := []models.Expense{}
	for rows.Next() {
		m, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		expenses = append(expenses, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense rows: %w", err)
	}
	return mapping.ToDomainExpenseSlice(expenses), nil
}

func collectApprovals(rows pgx.Rows) ([]domain.Approval, error) {
	defer rows.Close()
	approvals := []models.Approval{}
	for rows.Next() {
		m, err := scanApproval(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval row: %w", err)
		}
		approvals = append(approvals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approval rows: %w", err)
	}
	return mapping.ToDomainApprovalSlice(approvals), nil
}

func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	m := mapping.ToModelExpense(expense)
	query := `
		INSERT INTO expenses (` + expenseColumns("") + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ExpenseID,
		m.EmployeeID,
		m.CategoryID,
		m.Amount,
		m.CurrencyCode,
		m.Description,
		m.ExpenseDate,
		m.ProjectCode,
		m.BusinessPurpose,
		m.Status,
		m.SubmittedAt,
		m.ApprovedAt,
		m.RejectedAt,
		m.RejectionReason,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		return translateWriteError(err, fmt.Sprintf("expense %s", m.ExpenseID))
	}
	return nil
}

func (r *PgxExpenseRepository) findExpense(ctx context.Context, q dbtx, expenseID string, forUpdate bool) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns("") + ` FROM expenses WHERE expense_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	m, err := scanExpense(q.QueryRow(ctx, query, expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find expense %s: %w", expenseID, err)
	}
	expense := mapping.ToDomainExpense(m)
	return &expense, nil
}

func (r *PgxExpenseRepository) FindExpenseWithApprovals(ctx context.Context, expenseID string) (*domain.Expense, error) {
	var expense *domain.Expense
	err := r.readSnapshot(ctx, func(tx pgx.Tx) error {
		var err error
		if expense, err = r.findExpense(ctx, tx, expenseID, false); err != nil {
			return err
		}
		expense.Approvals, err = r.findApprovalsByExpenseID(ctx, tx, expenseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func (r *PgxExpenseRepository) FindExpenseByIDForUpdate(ctx context.Context, tx pgx.Tx, expenseID string) (*domain.Expense, error) {
	return r.findExpense(ctx, tx, expenseID, true)
}

func (r *PgxExpenseRepository) ListExpensesByEmployee(ctx context.Context, employeeID string, status *domain.ExpenseStatus, skip, limit int) ([]domain.Expense, error) {
	var statusFilter *string
	if status != nil {
		s := string(*status)
		statusFilter = &s
	}

	query := `SELECT ` + expenseColumns("") + `
		FROM expenses
		WHERE employee_id = $1 AND ($2::text IS NULL OR status = $2::text)
		ORDER BY created_at DESC, expense_id
		LIMIT $3 OFFSET $4;`
	rows, err := r.Pool.Query(ctx, query, employeeID, statusFilter, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses of employee %s: %w", employeeID, err)
	}
	return collectExpenses(rows)
}

func (r *PgxExpenseRepository) ListExpensesAwaitingApprover(ctx context.Context, approverID string) ([]domain.Expense, error) {
	query := `SELECT ` + expenseColumns("e") + `
		FROM expenses e
		JOIN approvals a ON a.expense_id = e.expense_id
		WHERE a.approver_id = $1 AND a.status = 'pending' AND e.status = 'submitted'
		ORDER BY e.submitted_at, e.expense_id;`

	var expenses []domain.Expense
	err := r.readSnapshot(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, approverID)
		if err != nil {
			return fmt.Errorf("failed to query expenses awaiting approver %s: %w", approverID, err)
		}
		if expenses, err = collectExpenses(rows); err != nil {
			return err
		}

		expenseIDs := make([]string, len(expenses))
		for i := range expenses {
			expenseIDs[i] = expenses[i].ExpenseID
		}
		grouped, err := r.findApprovalsByExpenseIDs(ctx, tx, expenseIDs)
		if err != nil {
			return err
		}
		for i := range expenses {
			expenses[i].Approvals = grouped[expenses[i].ExpenseID]
			if expenses[i].Approvals == nil {
				expenses[i].Approvals = []domain.Approval{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *PgxExpenseRepository) UpdateExpenseInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense) error {
	m := mapping.ToModelExpense(expense)
	query := `
		UPDATE expenses
		SET category_id = $2, amount = $3, currency_code = $4, description = $5, expense_date = $6,
			project_code = $7, business_purpose = $8, status = $9, submitted_at = $10, approved_at = $11,
			rejected_at = $12, rejection_reason = $13, last_updated_at = $14, last_updated_by = $15,
			version = version + 1
		WHERE expense_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.ExpenseID,
		m.CategoryID,
		m.Amount,
		m.CurrencyCode,
		m.Description,
		m.ExpenseDate,
		m.ProjectCode,
		m.BusinessPurpose,
		m.Status,
		m.SubmittedAt,
		m.ApprovedAt,
		m.RejectedAt,
		m.RejectionReason,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return translateWriteError(err, fmt.Sprintf("expense %s", m.ExpenseID))
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxExpenseRepository) FindApprovalByIDForUpdate(ctx context.Context, tx pgx.Tx, approvalID string) (*domain.Approval, error) {
	query := `SELECT ` + approvalColumns + ` FROM approvals WHERE approval_id = $1 FOR UPDATE`
	m, err := scanApproval(tx.QueryRow(ctx, query, approvalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find approval %s: %w", approvalID, err)
	}
	approval := mapping.ToDomainApproval(m)
	return &approval, nil
}

func (r *PgxExpenseRepository) findApprovalsByExpenseID(ctx context.Context, q dbtx, expenseID string) ([]domain.Approval, error) {
	query := `SELECT ` + approvalColumns + `
		FROM approvals
		WHERE expense_id = $1
		ORDER BY created_at, approval_id;`
	rows, err := q.Query(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query approvals of expense %s: %w", expenseID, err)
	}
	return collectApprovals(rows)
}

func (r *PgxExpenseRepository) findApprovalsByExpenseIDs(ctx context.Context, q dbtx, expenseIDs []string) (map[string][]domain.Approval, error) {
	grouped := make(map[string][]domain.Approval, len(expenseIDs))
	if len(expenseIDs) == 0 {
		return grouped, nil
	}

	query := `SELECT ` + approvalColumns + `
		FROM approvals
		WHERE expense_id = ANY($1)
		ORDER BY created_at, approval_id;`
	rows, err := q.Query(ctx, query, expenseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query approvals for %d expenses: %w", len(expenseIDs), err)
	}
	approvals, err := collectApprovals(rows)
	if err != nil {
		return nil, err
	}
	for _, a := range approvals {
		grouped[a.ExpenseID] = append(grouped[a.ExpenseID], a)
	}
	return grouped, nil
}

func (r *PgxExpenseRepository) SaveApprovalInTx(ctx context.Context, tx pgx.Tx, approval domain.Approval) error {
	m := mapping.ToModelApproval(approval)
	query := `
		INSERT INTO approvals (` + approvalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := tx.Exec(ctx, query,
		m.ApprovalID,
		m.ExpenseID,
		m.ApproverID,
		m.Status,
		m.Comments,
		m.DecidedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		return translateWriteError(err, fmt.Sprintf("approval for expense %s", m.ExpenseID))
	}
	return nil
}

// UpdateApprovalDecisionInTx only touches rows that are still pending, so a
// decision that lost a race affects nothing and is reported as invalid state.
func (r *PgxExpenseRepository) UpdateApprovalDecisionInTx(ctx context.Context, tx pgx.Tx, approval domain.Approval) error {
	m := mapping.ToModelApproval(approval)
	query := `
		UPDATE approvals
		SET status = $2, comments = $3, decided_at = $4, last_updated_at = $5, last_updated_by = $6,
			version = version + 1
		WHERE approval_id = $1 AND status = 'pending';
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.ApprovalID,
		m.Status,
		m.Comments,
		m.DecidedAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return translateWriteError(err, fmt.Sprintf("approval %s", m.ApprovalID))
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewInvalidStateError("approval already processed")
	}
	return nil
}
