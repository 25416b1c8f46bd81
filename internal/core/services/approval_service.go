package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
)

// approvalService implements the ApprovalSvcFacade interface
type approvalService struct {
	BaseService
	expenseRepo  portsrepo.ExpenseRepositoryWithTx
	categoryRepo portsrepo.CategoryReader
	now          func() time.Time
}

// NewApprovalService creates a new approval service with the provided dependencies
func NewApprovalService(expenseRepo portsrepo.ExpenseRepositoryWithTx, categoryRepo portsrepo.CategoryReader) portssvc.ApprovalSvcFacade {
	return &approvalService{
		expenseRepo:  expenseRepo,
		categoryRepo: categoryRepo,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Ensure approvalService implements the ApprovalSvcFacade interface
var _ portssvc.ApprovalSvcFacade = (*approvalService)(nil)

// decision mutates a locked approval and its expense in memory.
type decision func(approval *domain.Approval, expense *domain.Expense, now time.Time) error

func (s *approvalService) ListPendingApprovals(ctx context.Context, approverID string) ([]domain.Expense, error) {
	expenses, err := s.expenseRepo.ListExpensesAwaitingApprover(ctx, approverID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list expenses awaiting approval", slog.String("approver_id", approverID))
		return nil, err
	}
	if len(expenses) == 0 {
		return []domain.Expense{}, nil
	}

	if err := attachCategories(ctx, s.categoryRepo, expenses); err != nil {
		s.LogError(ctx, err, "Failed to attach categories to pending expenses")
		return nil, err
	}

	s.LogDebug(ctx, "Pending approvals listed",
		slog.String("approver_id", approverID),
		slog.Int("count", len(expenses)))
	return expenses, nil
}

func (s *approvalService) ApproveExpense(ctx context.Context, approvalID string, approverID string, comments *string) (*domain.Approval, error) {
	approval, err := s.decide(ctx, approvalID, approverID, func(a *domain.Approval, e *domain.Expense, now time.Time) error {
		if err := a.Approve(approverID, comments, now); err != nil {
			return err
		}
		return e.MarkApproved(approverID, now)
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Expense approved",
		slog.String("approval_id", approvalID),
		slog.String("expense_id", approval.ExpenseID))
	return approval, nil
}

func (s *approvalService) RejectExpense(ctx context.Context, approvalID string, approverID string, comments string) (*domain.Approval, error) {
	// Checked before any lookup so a missing reason never touches the store.
	if err := domain.ValidateRejectionComments(comments); err != nil {
		return nil, err
	}

	approval, err := s.decide(ctx, approvalID, approverID, func(a *domain.Approval, e *domain.Expense, now time.Time) error {
		if err := a.Reject(approverID, comments, now); err != nil {
			return err
		}
		return e.MarkRejected(comments, approverID, now)
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Expense rejected",
		slog.String("approval_id", approvalID),
		slog.String("expense_id", approval.ExpenseID))
	return approval, nil
}

// decide runs a decision on a pending approval and its expense inside one transaction.
// Both rows are locked, approval first, so concurrent decisions on the same
// approval serialize and the loser observes the already decided status.
func (s *approvalService) decide(ctx context.Context, approvalID, approverID string, apply decision) (*domain.Approval, error) {
	tx, err := s.expenseRepo.Begin(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to begin transaction for decision", slog.String("approval_id", approvalID))
		return nil, err
	}
	defer s.expenseRepo.Rollback(ctx, tx)

	approval, err := s.expenseRepo.FindApprovalByIDForUpdate(ctx, tx, approvalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("approval not found")
		}
		s.LogError(ctx, err, "Failed to find approval", slog.String("approval_id", approvalID))
		return nil, err
	}

	expense, err := s.expenseRepo.FindExpenseByIDForUpdate(ctx, tx, approval.ExpenseID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find expense of approval",
			slog.String("approval_id", approvalID),
			slog.String("expense_id", approval.ExpenseID))
		return nil, err
	}

	if approval.ApproverID != approverID {
		// The submitter can see the approval through their expense, anyone else cannot.
		if expense.EmployeeID == approverID {
			s.LogWarn(ctx, "Submitter attempted to decide own expense", slog.String("approval_id", approvalID))
			return nil, apperrors.NewForbiddenError("only the designated approver may decide this expense")
		}
		s.LogDebug(ctx, "Decision attempted by unrelated user", slog.String("approval_id", approvalID))
		return nil, apperrors.NewNotFoundError("approval not found")
	}

	if err := apply(approval, expense, s.now()); err != nil {
		if errors.Is(err, apperrors.ErrInvalidState) {
			s.LogInfo(ctx, "Decision on approval that is no longer pending",
				slog.String("approval_id", approvalID),
				slog.String("approval_status", string(approval.Status)),
				slog.String("expense_status", string(expense.Status)))
		}
		return nil, err
	}

	if err := s.expenseRepo.UpdateApprovalDecisionInTx(ctx, tx, *approval); err != nil {
		if !errors.Is(err, apperrors.ErrInvalidState) {
			s.LogError(ctx, err, "Failed to record decision", slog.String("approval_id", approvalID))
		}
		return nil, err
	}
	if err := s.expenseRepo.UpdateExpenseInTx(ctx, tx, *expense); err != nil {
		s.LogError(ctx, err, "Failed to update expense status", slog.String("expense_id", expense.ExpenseID))
		return nil, err
	}
	if err := s.expenseRepo.Commit(ctx, tx); err != nil {
		s.LogError(ctx, err, "Failed to commit decision", slog.String("approval_id", approvalID))
		return nil, err
	}

	approval.Version++
	return approval, nil
}
